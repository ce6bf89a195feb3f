package typath

import (
	"encoding/json"
	"time"

	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tymodel"
)

// responseWire is the JSON shadow used to persist a PathResolutionResponse.
// WasFromCache and CacheKey are never stored: they are computed fresh on
// every read by the caller that served the entry.
type responseWire struct {
	Metadata         map[string]any `json:"metadata,omitempty"`
	ResolvedPath     string         `json:"resolved_path"`
	Status           string         `json:"status"`
	PathType         string         `json:"path_type"`
	AlternativePaths []string       `json:"alternative_paths,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
	Errors           []string       `json:"errors,omitempty"`
	ResolutionTimeNS int64          `json:"resolution_time_ns"`
}

func encodeResponse(resp tymodel.PathResolutionResponse) (json.RawMessage, error) {
	return json.Marshal(responseWire{
		Metadata:         resp.Metadata,
		ResolvedPath:     resp.ResolvedPath,
		Status:           string(resp.Status),
		PathType:         string(resp.PathType),
		AlternativePaths: resp.AlternativePaths,
		Warnings:         resp.Warnings,
		Errors:           resp.Errors,
		ResolutionTimeNS: int64(resp.ResolutionTime),
	})
}

func decodeResponse(entry tycache.Entry) (tymodel.PathResolutionResponse, error) {
	var w responseWire
	if err := json.Unmarshal(entry.Payload, &w); err != nil {
		return tymodel.PathResolutionResponse{}, err
	}
	return tymodel.PathResolutionResponse{
		Metadata:         w.Metadata,
		ResolvedPath:     w.ResolvedPath,
		Status:           tymodel.ResolutionStatus(w.Status),
		PathType:         tymodel.PathType(w.PathType),
		AlternativePaths: w.AlternativePaths,
		Warnings:         w.Warnings,
		Errors:           w.Errors,
		ResolutionTime:   time.Duration(w.ResolutionTimeNS),
	}, nil
}
