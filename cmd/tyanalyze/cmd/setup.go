package cmd

import (
	"context"
	"os"

	"github.com/cpsit/tycore/internal/tycache"
	"github.com/cpsit/tycore/internal/tyconfig"
	"github.com/cpsit/tycore/internal/tydiscover"
	"github.com/cpsit/tycore/internal/tymodel"
	"github.com/cpsit/tycore/internal/typath"
	"github.com/cpsit/tycore/internal/typath/strategies"
)

// buildDiscoveryPipeline wires the default strategy set for every
// pluggable stage of tydiscover.Pipeline: a single place where the CLI
// commits to concrete strategies, leaving the packages themselves free
// of any knowledge of which ones are "the defaults".
func buildDiscoveryPipeline(cache *tycache.MultiLayer) *tydiscover.Pipeline {
	pathRegistry := strategies.NewDefaultRegistry()
	resolver := typath.NewResolver(pathRegistry, cache)

	detection := tydiscover.NewDetectionRegistry()
	detection.Register(tydiscover.NewComposerDetection(resolver))
	detection.Register(tydiscover.NewLegacyDetection())
	detection.Register(tydiscover.NewDockerDetection())

	versions := tydiscover.NewVersionRegistry()
	versions.Register(tydiscover.NewComposerLockVersion())
	versions.Register(tydiscover.NewComposerManifestVersion())
	versions.Register(tydiscover.NewLegacySourceVersion())

	configRegistry := tyconfig.NewDefaultRegistry()

	extensions := tydiscover.NewExtensionSourceRegistry()
	extensions.Register(tydiscover.NewComposerLockExtensions())
	extensions.Register(tydiscover.NewPackageStateExtensions(packageStatesParser(resolver, configRegistry)))
	extensions.Register(tydiscover.NewDirectoryScanExtensions(extensionRoot(resolver), emconfParser(configRegistry)))

	return &tydiscover.Pipeline{
		Detection:  detection,
		Versions:   versions,
		Extensions: extensions,
		Resolver:   resolver,
		Config:     configRegistry,
		Cache:      cache,
	}
}

// configDir resolves typo3conf (or its equivalent) for installationPath,
// trying every installation type the resolver's strategies support since
// the extension-source closures here run before an InstallationMode has
// been settled on for this call.
func configDir(resolver *typath.Resolver, installationPath string) string {
	for _, it := range []tymodel.InstallationType{
		tymodel.InstallComposerStandard, tymodel.InstallComposerCustom,
		tymodel.InstallLegacy, tymodel.InstallDocker,
	} {
		req, err := typath.NewRequestBuilder().
			WithPathType(tymodel.PathTypeConfigDir).
			WithInstallationPath(installationPath).
			WithInstallationType(it).
			Build()
		if err != nil {
			continue
		}
		resp, err := resolver.Resolve(context.Background(), req)
		if err != nil || resp.Status != tymodel.StatusSuccess {
			continue
		}
		return resp.ResolvedPath
	}
	return ""
}

// packageStatesParser resolves typo3conf/PackageStates.php through the
// PathResolver and parses it through the PHP-array-literal format,
// returning nil, nil when the file is absent rather than treating that
// as a discovery error — not every installation carries one.
func packageStatesParser(resolver *typath.Resolver, configRegistry *tyconfig.Registry) func(string) (map[string]any, error) {
	return func(installationPath string) (map[string]any, error) {
		dir := configDir(resolver, installationPath)
		if dir == "" {
			return nil, nil
		}

		path := dir + "/PackageStates.php"
		data, err := os.ReadFile(path) // #nosec G304 - resolved via PathResolver against a caller-supplied installation root
		if err != nil {
			return nil, nil //nolint:nilerr
		}

		parsed, _, err := configRegistry.Parse(path, data)
		return parsed, err
	}
}

// extensionRoot resolves the directory directoryScanExtensions should
// walk: typo3conf/ext for every layout this resolver currently supports.
func extensionRoot(resolver *typath.Resolver) func(string) string {
	return func(installationPath string) string {
		dir := configDir(resolver, installationPath)
		if dir == "" {
			return ""
		}
		return dir + "/ext"
	}
}

// emconfParser reads and parses a single ext_emconf.php file through the
// same format registry configuration discovery uses.
func emconfParser(configRegistry *tyconfig.Registry) func(string) (map[string]any, error) {
	return func(path string) (map[string]any, error) {
		data, err := os.ReadFile(path) // #nosec G304 - fixed filename under a directory-scan-enumerated extension path
		if err != nil {
			return nil, err
		}
		parsed, _, err := configRegistry.Parse(path, data)
		return parsed, err
	}
}
