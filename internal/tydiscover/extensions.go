package tydiscover

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpsit/tycore/internal/tymodel"
)

// composerLockExtensions enumerates third-party extensions from
// composer.lock's typo3-cms-extension package entries — the most
// authoritative source for a Composer-managed installation.
type composerLockExtensions struct{}

// NewComposerLockExtensions builds the lock-file extension source.
func NewComposerLockExtensions() ExtensionSource { return composerLockExtensions{} }

func (composerLockExtensions) Identifier() string { return "composer-lock-extensions" }
func (composerLockExtensions) Priority() int       { return 10 }

type lockPackage struct {
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Type    string            `json:"type"`
	Extra   map[string]any    `json:"extra"`
}

func (composerLockExtensions) Enumerate(_ context.Context, installationPath string, _ tymodel.InstallationMode) ([]*tymodel.Extension, error) {
	data, err := os.ReadFile(filepath.Join(installationPath, "composer.lock")) // #nosec G304 - fixed filename under a caller-supplied installation root
	if err != nil {
		return nil, nil
	}

	var lock struct {
		Packages []lockPackage `json:"packages"`
	}
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, err
	}

	var out []*tymodel.Extension
	for _, pkg := range lock.Packages {
		if pkg.Type != "typo3-cms-extension" {
			continue
		}
		key := extensionKeyFromExtra(pkg.Extra)
		if key == "" {
			key = keyFromComposerName(pkg.Name)
		}

		version, err := tymodel.ParseVersion(pkg.Version)
		if err != nil {
			version = tymodel.Version{}
		}

		out = append(out, &tymodel.Extension{
			Key:         key,
			PackageName: pkg.Name,
			Type:        tymodel.ExtensionThirdParty,
			Version:     version,
			IsActive:    true,
		})
	}
	return out, nil
}

func extensionKeyFromExtra(extra map[string]any) string {
	typo3cms, ok := extra["typo3/cms"].(map[string]any)
	if !ok {
		return ""
	}
	key, _ := typo3cms["extension-key"].(string)
	return key
}

func keyFromComposerName(name string) string {
	parts := strings.SplitN(name, "/", 2)
	if len(parts) != 2 {
		return name
	}
	return strings.ReplaceAll(parts[1], "-", "_")
}

// packageStateExtensions enumerates extensions from the parsed
// typo3conf/PackageStates.php document supplied by the caller's parse
// function. Every entry under "packages" is included; IsActive is true
// only for entries whose state is "active".
type packageStateExtensions struct {
	parse func(installationPath string) (map[string]any, error)
}

// NewPackageStateExtensions builds the PackageStates.php-derived
// extension source, using parseFn to obtain the parsed document (wired
// by the caller through tyconfig, since PackageStates.php is a PHP
// array-literal document).
func NewPackageStateExtensions(parseFn func(installationPath string) (map[string]any, error)) ExtensionSource {
	return packageStateExtensions{parse: parseFn}
}

func (packageStateExtensions) Identifier() string { return "package-state-extensions" }
func (packageStateExtensions) Priority() int       { return 20 }

func (s packageStateExtensions) Enumerate(_ context.Context, installationPath string, _ tymodel.InstallationMode) ([]*tymodel.Extension, error) {
	if s.parse == nil {
		return nil, nil
	}
	doc, err := s.parse(installationPath)
	if err != nil || doc == nil {
		return nil, nil //nolint:nilerr // absent PackageStates.php is not a discovery failure
	}

	packages, ok := doc["packages"].(map[string]any)
	if !ok {
		return nil, nil
	}

	var out []*tymodel.Extension
	for key, raw := range packages {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		state, _ := entry["state"].(string)
		out = append(out, &tymodel.Extension{
			Key:      key,
			Type:     tymodel.ExtensionLocal,
			IsActive: state == "active",
		})
	}
	return out, nil
}

// directoryScanExtensions is the lowest-priority fallback: walk the
// directory extRoot returns (typo3conf/ext in the CLI wiring) and treat every
// top-level directory as a candidate extension, reading its
// ext_emconf.php via the caller-supplied parser when present.
type directoryScanExtensions struct {
	extRoot func(installationPath string) string
	parse   func(path string) (map[string]any, error)
}

// NewDirectoryScanExtensions builds the directory-scan fallback source.
// extRootFn resolves the extensions directory for a given installation
// (typically via PathResolver); parseFn parses an ext_emconf.php file.
func NewDirectoryScanExtensions(extRootFn func(installationPath string) string, parseFn func(path string) (map[string]any, error)) ExtensionSource {
	return directoryScanExtensions{extRoot: extRootFn, parse: parseFn}
}

func (directoryScanExtensions) Identifier() string { return "directory-scan-extensions" }
func (directoryScanExtensions) Priority() int       { return 30 }

func (s directoryScanExtensions) Enumerate(_ context.Context, installationPath string, _ tymodel.InstallationMode) ([]*tymodel.Extension, error) {
	if s.extRoot == nil {
		return nil, nil
	}
	root := s.extRoot(installationPath)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil //nolint:nilerr // an absent extensions directory is not a discovery failure
	}

	seenInSource := make(map[string]bool)
	var out []*tymodel.Extension
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key := entry.Name()
		if seenInSource[key] {
			continue // duplicate directory entries within this single source are a warning-worthy anomaly, not a hard failure
		}
		seenInSource[key] = true

		ext := &tymodel.Extension{Key: key, Type: tymodel.ExtensionLocal, Path: filepath.Join(root, key), IsActive: true}
		if s.parse != nil {
			emconfPath := filepath.Join(root, key, "ext_emconf.php")
			if data, err := s.parse(emconfPath); err == nil && data != nil {
				if title, ok := data["title"].(string); ok {
					ext.Title = title
				}
				if v, ok := data["version"].(string); ok {
					if parsed, err := tymodel.ParseVersion(v); err == nil {
						ext.Version = parsed
					}
				}
			}
		}
		out = append(out, ext)
	}
	return out, nil
}
