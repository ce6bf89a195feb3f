package strategies

import (
	"context"
	"path/filepath"

	"github.com/cpsit/tycore/internal/typath"
	"github.com/cpsit/tycore/internal/tymodel"
)

// legacyLayout resolves paths for pre-Composer installations: no vendor
// dir, no composer-installed manifest, typo3conf sitting directly under
// the installation root.
type legacyLayout struct{}

// NewLegacyLayout registers the legacy-layout strategy.
func NewLegacyLayout() typath.Strategy { return legacyLayout{} }

func (legacyLayout) Identifier() string { return "legacy-layout" }

func (legacyLayout) Supports(pt tymodel.PathType, it tymodel.InstallationType) bool {
	if it != tymodel.InstallLegacy {
		return false
	}
	switch pt {
	case tymodel.PathTypeWebDir, tymodel.PathTypeConfigDir, tymodel.PathTypeExtension, tymodel.PathTypeSystemExtension:
		return true
	default:
		return false
	}
}

func (legacyLayout) Priority(tymodel.PathType, tymodel.InstallationType) int { return 10 }

func (legacyLayout) Resolve(_ context.Context, req tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error) {
	resp := tymodel.PathResolutionResponse{PathType: req.PathType}

	var candidate string
	switch req.PathType {
	case tymodel.PathTypeWebDir:
		candidate = req.InstallationPath
	case tymodel.PathTypeConfigDir:
		candidate = filepath.Join(req.InstallationPath, "typo3conf")
	case tymodel.PathTypeExtension:
		candidate = filepath.Join(req.InstallationPath, "typo3conf", "ext", req.ExtensionIdentifier)
	case tymodel.PathTypeSystemExtension:
		candidate = filepath.Join(req.InstallationPath, "typo3", "sysext", req.ExtensionIdentifier)
	}

	return resolveIfExists(resp, candidate, req.FollowSymlinks)
}

// dockerLayout resolves paths for container-mounted installations, which
// keep the Composer on-disk shape but root it at a configurable mount
// point rather than req.InstallationPath directly.
type dockerLayout struct{}

// NewDockerLayout registers the Docker-mount strategy.
func NewDockerLayout() typath.Strategy { return dockerLayout{} }

func (dockerLayout) Identifier() string { return "docker-layout" }

func (dockerLayout) Supports(pt tymodel.PathType, it tymodel.InstallationType) bool {
	if it != tymodel.InstallDocker {
		return false
	}
	switch pt {
	case tymodel.PathTypeWebDir, tymodel.PathTypeVendorDir, tymodel.PathTypeComposerInstalled,
		tymodel.PathTypeConfigDir, tymodel.PathTypeExtension:
		return true
	default:
		return false
	}
}

func (dockerLayout) Priority(tymodel.PathType, tymodel.InstallationType) int { return 10 }

func (dockerLayout) Resolve(_ context.Context, req tymodel.PathResolutionRequest) (tymodel.PathResolutionResponse, error) {
	resp := tymodel.PathResolutionResponse{PathType: req.PathType}
	mount := configuredOr(req, "mount-root", req.InstallationPath)

	var candidate string
	switch req.PathType {
	case tymodel.PathTypeWebDir:
		candidate = configuredOr(req, "web-dir", filepath.Join(mount, "public"))
	case tymodel.PathTypeVendorDir:
		candidate = configuredOr(req, "vendor-dir", filepath.Join(mount, "vendor"))
	case tymodel.PathTypeComposerInstalled:
		candidate = filepath.Join(mount, "vendor", "composer", "installed.json")
	case tymodel.PathTypeConfigDir:
		webDir := configuredOr(req, "web-dir", filepath.Join(mount, "public"))
		candidate = filepath.Join(webDir, "typo3conf")
	case tymodel.PathTypeExtension:
		vendorDir := configuredOr(req, "vendor-dir", filepath.Join(mount, "vendor"))
		candidate = filepath.Join(vendorDir, req.ExtensionIdentifier)
	}

	return resolveIfExists(resp, candidate, req.FollowSymlinks)
}
