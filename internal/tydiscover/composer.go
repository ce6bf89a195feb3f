package tydiscover

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/typath"
)

// composerDetection identifies Composer-managed installations by the
// presence of composer.json. The mode is composer-standard when the
// vendor directory resolves through the PathResolver rather than
// hardcoded join()s, and composer-custom when it does not; the web-dir
// setting in composer.json is not read. This is the only Composer
// detector this package carries; an
// earlier inlined duplicate that bypassed PathResolver entirely was never
// ported (it could drift from the resolver's own notion of "vendor dir"
// as soon as a custom layout overrode it).
type composerDetection struct {
	resolver *typath.Resolver
}

// NewComposerDetection builds the Composer-layout detection strategy.
func NewComposerDetection(resolver *typath.Resolver) DetectionStrategy {
	return composerDetection{resolver: resolver}
}

func (composerDetection) Identifier() string { return "composer-detection" }
func (composerDetection) Priority() int      { return 10 }

func (d composerDetection) Detect(ctx context.Context, installationPath string) (tymodel.InstallationMode, float64, bool) {
	composerJSON := filepath.Join(installationPath, "composer.json")
	if _, err := os.Stat(composerJSON); err != nil {
		return "", 0, false
	}

	req, err := typath.NewRequestBuilder().
		WithPathType(tymodel.PathTypeVendorDir).
		WithInstallationPath(installationPath).
		WithInstallationType(tymodel.InstallComposerStandard).
		Build()
	if err != nil {
		return "", 0, false
	}

	resp, err := d.resolver.Resolve(ctx, req)
	if err != nil || resp.Status != tymodel.StatusSuccess {
		return tymodel.ModeComposerCustom, 0.6, true
	}
	return tymodel.ModeComposerStandard, 0.95, true
}

// legacyDetection identifies pre-Composer installations by the presence
// of a typo3conf directory with no composer.json alongside it.
type legacyDetection struct{}

// NewLegacyDetection builds the legacy-layout detection strategy.
func NewLegacyDetection() DetectionStrategy { return legacyDetection{} }

func (legacyDetection) Identifier() string { return "legacy-detection" }
func (legacyDetection) Priority() int      { return 20 }

func (legacyDetection) Detect(_ context.Context, installationPath string) (tymodel.InstallationMode, float64, bool) {
	if _, err := os.Stat(filepath.Join(installationPath, "composer.json")); err == nil {
		return "", 0, false
	}
	if _, err := os.Stat(filepath.Join(installationPath, "typo3conf")); err != nil {
		return "", 0, false
	}
	return tymodel.ModeLegacy, 0.8, true
}

// dockerDetection identifies container-mounted installations by a
// .tycore-docker marker file or a DOCKER_MOUNT environment indicator
// left by the container's entrypoint.
type dockerDetection struct{}

// NewDockerDetection builds the Docker-mount detection strategy.
func NewDockerDetection() DetectionStrategy { return dockerDetection{} }

func (dockerDetection) Identifier() string { return "docker-detection" }
func (dockerDetection) Priority() int      { return 5 }

func (dockerDetection) Detect(_ context.Context, installationPath string) (tymodel.InstallationMode, float64, bool) {
	if _, err := os.Stat(filepath.Join(installationPath, ".tycore-docker")); err != nil {
		return "", 0, false
	}
	return tymodel.ModeDocker, 0.9, true
}

// composerLockVersion extracts the TYPO3 core version from
// composer.lock's typo3/cms-core package entry — the most reliable
// source, since it reflects exactly what is installed.
type composerLockVersion struct{}

// NewComposerLockVersion builds the lock-file version-extraction strategy.
func NewComposerLockVersion() VersionStrategy { return composerLockVersion{} }

func (composerLockVersion) Identifier() string { return "composer-lock-version" }
func (composerLockVersion) Reliability() int   { return 100 }

type composerLockFile struct {
	Packages []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"packages"`
}

func (composerLockVersion) ExtractVersion(_ context.Context, installationPath string, _ tymodel.InstallationMode) (tymodel.Version, bool, error) {
	data, err := os.ReadFile(filepath.Join(installationPath, "composer.lock")) // #nosec G304 - fixed filename under a caller-supplied installation root
	if err != nil {
		return tymodel.Version{}, false, nil
	}

	var lock composerLockFile
	if err := json.Unmarshal(data, &lock); err != nil {
		return tymodel.Version{}, false, err
	}

	for _, pkg := range lock.Packages {
		if pkg.Name == "typo3/cms-core" {
			v, err := tymodel.ParseVersion(pkg.Version)
			if err != nil {
				return tymodel.Version{}, false, err
			}
			return v, true, nil
		}
	}
	return tymodel.Version{}, false, nil
}

// composerManifestVersion falls back to composer.json's own
// "require"["typo3/cms-core"] constraint, parsing out a concrete version
// if the constraint happens to be exact (less reliable than the lock
// file, since a range constraint carries no single installed version).
type composerManifestVersion struct{}

// NewComposerManifestVersion builds the manifest-fallback version-extraction strategy.
func NewComposerManifestVersion() VersionStrategy { return composerManifestVersion{} }

func (composerManifestVersion) Identifier() string { return "composer-manifest-version" }
func (composerManifestVersion) Reliability() int   { return 50 }

type composerManifestFile struct {
	Require map[string]string `json:"require"`
}

func (composerManifestVersion) ExtractVersion(_ context.Context, installationPath string, _ tymodel.InstallationMode) (tymodel.Version, bool, error) {
	data, err := os.ReadFile(filepath.Join(installationPath, "composer.json")) // #nosec G304 - fixed filename under a caller-supplied installation root
	if err != nil {
		return tymodel.Version{}, false, nil
	}

	var manifest composerManifestFile
	if err := json.Unmarshal(data, &manifest); err != nil {
		return tymodel.Version{}, false, err
	}

	constraint, ok := manifest.Require["typo3/cms-core"]
	if !ok {
		return tymodel.Version{}, false, nil
	}
	v, err := tymodel.ParseVersion(constraint)
	if err != nil {
		return tymodel.Version{}, false, nil // a range constraint, not a concrete version
	}
	return v, true, nil
}

// legacySourceVersion is the fallback for legacy installations: it checks
// for typo3/sysext/core/Classes/Information/Typo3Version.php. The file's
// contents are not read, so this strategy never reports a version.
type legacySourceVersion struct{}

// NewLegacySourceVersion builds the legacy fallback version-extraction strategy.
func NewLegacySourceVersion() VersionStrategy { return legacySourceVersion{} }

func (legacySourceVersion) Identifier() string { return "legacy-source-version" }
func (legacySourceVersion) Reliability() int   { return 10 }

func (legacySourceVersion) ExtractVersion(_ context.Context, installationPath string, mode tymodel.InstallationMode) (tymodel.Version, bool, error) {
	if mode != tymodel.ModeLegacy {
		return tymodel.Version{}, false, nil
	}
	marker := filepath.Join(installationPath, "typo3", "sysext", "core", "Classes", "Information", "Typo3Version.php")
	if _, err := os.Stat(marker); err != nil {
		return tymodel.Version{}, false, nil
	}
	// The marker is present but its version constant is not parsed; the
	// result is the same "no version" as an absent marker.
	return tymodel.Version{}, false, nil
}
