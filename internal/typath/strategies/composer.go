// Package strategies provides the concrete PathResolver strategies for the
// installation layouts tycore understands: Composer-managed (standard and
// custom web-dir), legacy non-Composer, and Docker-mounted installs.
package strategies

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cpsit/tycore/internal/secureio"
	"github.com/cpsit/tycore/internal/typath"
	"github.com/cpsit/tycore/internal/tymodel"
)

// composerLayout resolves paths for Composer-managed installations,
// standard ("public/" web root, default vendor dir) and custom
// (PathConfiguration overrides for web-dir / vendor-dir).
type composerLayout struct{}

// NewComposerLayout registers the Composer-standard/custom strategy.
func NewComposerLayout() typath.Strategy { return composerLayout{} }

func (composerLayout) Identifier() string { return "composer-layout" }

func (composerLayout) Supports(pt tymodel.PathType, it tymodel.InstallationType) bool {
	if it != tymodel.InstallComposerStandard && it != tymodel.InstallComposerCustom {
		return false
	}
	switch pt {
	case tymodel.PathTypeWebDir, tymodel.PathTypeVendorDir, tymodel.PathTypeComposerInstalled,
		tymodel.PathTypeConfigDir, tymodel.PathTypeExtension, tymodel.PathTypeSystemExtension:
		return true
	default:
		return false
	}
}

func (composerLayout) Priority(tymodel.PathType, tymodel.InstallationType) int { return 10 }

func (composerLayout) Resolve(_ context.Context, req tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error) {
	resp := tymodel.PathResolutionResponse{PathType: req.PathType}

	var candidate string
	switch req.PathType {
	case tymodel.PathTypeWebDir:
		candidate = configuredOr(req, "web-dir", filepath.Join(req.InstallationPath, "public"))
	case tymodel.PathTypeVendorDir:
		candidate = configuredOr(req, "vendor-dir", filepath.Join(req.InstallationPath, "vendor"))
	case tymodel.PathTypeComposerInstalled:
		candidate = configuredOr(req, "composer-installed", filepath.Join(req.InstallationPath, "vendor", "composer", "installed.json"))
	case tymodel.PathTypeConfigDir:
		webDir := configuredOr(req, "web-dir", filepath.Join(req.InstallationPath, "public"))
		candidate = filepath.Join(webDir, "typo3conf")
	case tymodel.PathTypeExtension, tymodel.PathTypeSystemExtension:
		vendorDir := configuredOr(req, "vendor-dir", filepath.Join(req.InstallationPath, "vendor"))
		candidate = filepath.Join(vendorDir, req.ExtensionIdentifier)
	}

	return resolveIfExists(resp, candidate, req.FollowSymlinks)
}

func configuredOr(req tymodel.PathResolutionRequest, key, fallback string) string {
	if v, ok := req.PathConfiguration[key]; ok && v != "" {
		return v
	}
	return fallback
}

// resolveIfExists stats candidate (following symlinks when requested) and
// fills in a success/not_found response accordingly.
func resolveIfExists(resp tymodel.PathResolutionResponse, candidate string, followSymlinks bool) (tymodel.PathResolutionResponse, error) {
	if err := secureio.ValidateFilePath(candidate); err != nil {
		resp.Status = tymodel.StatusError
		resp.Errors = append(resp.Errors, err.Error())
		return resp, nil
	}

	var info os.FileInfo
	var err error
	if followSymlinks {
		info, err = os.Stat(candidate)
	} else {
		info, err = os.Lstat(candidate)
	}

	if err != nil {
		resp.Status = tymodel.StatusNotFound
		return resp, nil
	}

	resp.Status = tymodel.StatusSuccess
	resp.ResolvedPath = candidate
	resp.Metadata = map[string]any{"is_dir": info.IsDir()}
	return resp, nil
}
