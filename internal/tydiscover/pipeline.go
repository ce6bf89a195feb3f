package tydiscover

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tyconfig"
	"github.com/cpsit/tycore/internal/tyerrors"
	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/typath"
)

const defaultDiscoveryTTL = 30 * time.Minute

// Pipeline runs the full discovery sequence for one installation path:
// detect layout, extract version, enumerate extensions, optionally run
// validation rules. Discover does not locate or parse configuration
// files; parsed configuration reaches an Installation only through
// AttachConfigFile.
type Pipeline struct {
	Detection  *DetectionRegistry
	Versions   *VersionRegistry
	Extensions *ExtensionSourceRegistry
	Resolver   *typath.Resolver
	Config     *tyconfig.Registry // nil makes AttachConfigFile a no-op
	Validators []ValidationRule   // nil disables rule execution
	Cache      *tycache.MultiLayer
}

// ValidationRule inspects a discovered Installation and appends any
// ValidationIssue it finds.
type ValidationRule interface {
	Identifier() string
	Validate(inst *tymodel.Installation) []tymodel.ValidationIssue
}

// Discover runs the pipeline against installationPath, returning a fully
// populated Installation or a tyerrors.TyError if no detection strategy
// recognizes the path at all.
func (p *Pipeline) Discover(ctx context.Context, installationPath string) (*tymodel.Installation, error) {
	mode, confidence, err := p.detectMode(ctx, installationPath)
	if err != nil {
		return nil, err
	}

	inst := &tymodel.Installation{
		Path: installationPath,
		Mode: mode,
		Metadata: tymodel.InstallationMetadata{
			FeatureFlags:     map[string]bool{},
			DatabaseEvidence: map[string]bool{},
		},
	}

	if version, ok, err := p.extractVersion(ctx, installationPath, mode); err != nil {
		inst.AddValidationIssue(tymodel.ValidationIssue{
			RuleName: "version-extraction",
			Message:  err.Error(),
			Category: "discovery",
			Severity: tymodel.SeverityWarning,
		})
	} else if ok {
		inst.Version = version
	} else {
		inst.AddValidationIssue(tymodel.ValidationIssue{
			RuleName: "version-extraction",
			Message:  "no version strategy could determine the TYPO3 core version",
			Category: "discovery",
			Severity: tymodel.SeverityWarning,
		})
	}

	if p.Config != nil {
		p.discoverConfiguration(ctx, inst)
	}

	extensions, err := p.enumerateExtensions(ctx, installationPath, mode)
	if err != nil {
		inst.AddValidationIssue(tymodel.ValidationIssue{
			RuleName: "extension-enumeration",
			Message:  err.Error(),
			Category: "discovery",
			Severity: tymodel.SeverityError,
		})
	}
	for _, ext := range extensions {
		if err := inst.AddExtension(ext); err != nil {
			inst.AddValidationIssue(tymodel.ValidationIssue{
				RuleName: "duplicate-extension-key",
				Message:  err.Error(),
				Category: "discovery",
				Severity: tymodel.SeverityWarning,
				Context:  map[string]any{"extension_key": ext.Key},
			})
		}
	}

	for _, rule := range p.Validators {
		for _, issue := range rule.Validate(inst) {
			inst.AddValidationIssue(issue)
		}
	}

	inst.Metadata.FeatureFlags["detection_confidence_above_threshold"] = confidence >= 0.5
	return inst, nil
}

func (p *Pipeline) detectMode(ctx context.Context, installationPath string) (tymodel.InstallationMode, float64, error) {
	cacheKey := tycache.Key("tydiscover.mode", installationPath)
	if p.Cache != nil {
		if entry, ok := p.Cache.Get(cacheKey); ok {
			var cached struct {
				Mode       string  `json:"mode"`
				Confidence float64 `json:"confidence"`
			}
			if json.Unmarshal(entry.Payload, &cached) == nil {
				return tymodel.InstallationMode(cached.Mode), cached.Confidence, nil
			}
		}
	}

	var best tymodel.InstallationMode
	var bestConfidence float64
	var found bool

	for _, strat := range p.Detection.Ordered() {
		mode, confidence, ok := strat.Detect(ctx, installationPath)
		if !ok {
			continue
		}
		if !found || confidence > bestConfidence {
			best, bestConfidence, found = mode, confidence, true
		}
	}

	if !found {
		return "", 0, tyerrors.PathNotFound("installation-root", installationPath)
	}

	if p.Cache != nil {
		payload, _ := json.Marshal(map[string]any{"mode": string(best), "confidence": bestConfidence})
		_ = p.Cache.Set(cacheKey, payload, defaultDiscoveryTTL)
	}
	return best, bestConfidence, nil
}

func (p *Pipeline) extractVersion(ctx context.Context, installationPath string, mode tymodel.InstallationMode) (tymodel.Version, bool, error) {
	var lastErr error
	for _, strat := range p.Versions.Ordered() {
		version, ok, err := strat.ExtractVersion(ctx, installationPath, mode)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return version, true, nil
		}
	}
	return tymodel.Version{}, false, lastErr
}

func (p *Pipeline) enumerateExtensions(ctx context.Context, installationPath string, mode tymodel.InstallationMode) ([]*tymodel.Extension, error) {
	merged := make(map[string]*tymodel.Extension)
	order := make([]string, 0)

	for _, source := range p.Extensions.Ordered() {
		exts, err := source.Enumerate(ctx, installationPath, mode)
		if err != nil {
			return nil, fmt.Errorf("tydiscover: extension source %s: %w", source.Identifier(), err)
		}
		for _, ext := range exts {
			if _, exists := merged[ext.Key]; exists {
				continue // a higher-priority source already claimed this key
			}
			merged[ext.Key] = ext
			order = append(order, ext.Key)
		}
	}

	out := make([]*tymodel.Extension, 0, len(order))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out, nil
}

func (p *Pipeline) discoverConfiguration(ctx context.Context, inst *tymodel.Installation) {
	_ = ctx
	// No configuration files are located here; parsed data is attached,
	// keyed by source path, only when a caller passes file content to
	// AttachConfigFile.
	_ = inst
}

// AttachConfigFile parses content at path using the pipeline's
// ConfigParser registry and attaches the result to inst under path as
// key, recording a validation issue instead of failing outright if the
// format is unsupported or parsing fails.
func (p *Pipeline) AttachConfigFile(inst *tymodel.Installation, path string, content []byte) {
	if p.Config == nil {
		return
	}
	data, _, err := p.Config.Parse(path, content)
	if err != nil {
		inst.AddValidationIssue(tymodel.ValidationIssue{
			RuleName: "configuration-parse",
			Message:  err.Error(),
			Category: "configuration",
			Severity: tymodel.SeverityWarning,
			Context:  map[string]any{"path": path},
		})
		return
	}
	inst.AttachConfigData(path, data)
}
