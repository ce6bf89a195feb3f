package tymodel

import "encoding/json"

// RiskLevel is the closed set of risk bands derived from a numeric risk
// score.
type RiskLevel string

// Recognized risk levels.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFor bands a raw [0,10] risk score into its closed-set level.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score <= 2:
		return RiskLow
	case score <= 5:
		return RiskMedium
	case score <= 8:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// AnalysisResult is the outcome of running one analyzer against one
// Extension. Extension is a non-owning back-reference.
type AnalysisResult struct {
	Metrics         map[string]any
	AnalyzerName    string
	ErrorMessage    string
	Extension       *Extension
	Recommendations []string
	RiskScore       float64
	Successful      bool
}

// RiskLevel derives the banded risk level from RiskScore.
func (r AnalysisResult) RiskLevel() RiskLevel {
	return RiskLevelFor(r.RiskScore)
}

// analysisResultWire is the JSON-serializable shadow of AnalysisResult;
// Extension is flattened to its Key to avoid serializing the owning
// Installation graph.
type analysisResultWire struct {
	Metrics         map[string]any `json:"metrics"`
	AnalyzerName    string         `json:"analyzer_name"`
	ExtensionKey    string         `json:"extension_key"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	Recommendations []string       `json:"recommendations"`
	RiskScore       float64        `json:"risk_score"`
	Successful      bool           `json:"successful"`
}

// Serialize renders the result to its JSON wire form; DeserializeAnalysisResult
// is its inverse.
func (r AnalysisResult) Serialize() ([]byte, error) {
	var key string
	if r.Extension != nil {
		key = r.Extension.Key
	}
	return json.Marshal(analysisResultWire{
		AnalyzerName:    r.AnalyzerName,
		ExtensionKey:    key,
		Metrics:         r.Metrics,
		Recommendations: r.Recommendations,
		RiskScore:       r.RiskScore,
		Successful:      r.Successful,
		ErrorMessage:    r.ErrorMessage,
	})
}

// DeserializeAnalysisResult parses the JSON form produced by Serialize.
// The Extension back-reference is not restored (the wire form only
// carries its key); callers that need the full graph must re-attach it
// via the owning Installation.
func DeserializeAnalysisResult(data []byte) (AnalysisResult, string, error) {
	var wire analysisResultWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return AnalysisResult{}, "", err
	}
	return AnalysisResult{
		AnalyzerName:    wire.AnalyzerName,
		Metrics:         wire.Metrics,
		Recommendations: wire.Recommendations,
		RiskScore:       wire.RiskScore,
		Successful:      wire.Successful,
		ErrorMessage:    wire.ErrorMessage,
	}, wire.ExtensionKey, nil
}
