package tymodel

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// InstallationMode classifies the detected installation layout.
type InstallationMode string

// Recognized installation modes.
const (
	ModeComposerStandard InstallationMode = "composer-standard"
	ModeComposerCustom   InstallationMode = "composer-custom"
	ModeLegacy           InstallationMode = "legacy"
	ModeDocker           InstallationMode = "docker"
	ModeCustom           InstallationMode = "custom"
)

// InstallationMetadata carries PHP-runtime constraints, database evidence
// flags, feature flags, and the installation's last-modified timestamp.
type InstallationMetadata struct {
	FeatureFlags          map[string]bool
	DatabaseEvidence       map[string]bool
	PHPVersionConstraint   string
	LastModified           time.Time
}

// Installation is the discovered top-level unit: one deployment of the
// analyzed content-management application.
type Installation struct {
	ConfigData       map[string]any
	CustomPaths      map[string]string
	Path             string
	Version          Version
	Mode             InstallationMode
	Metadata         InstallationMetadata
	ValidationIssues []ValidationIssue
	extensions       []*Extension
	extensionIndex   map[string]*Extension
}

// Extensions returns the installation's owned extensions, in the order
// they were added.
func (in *Installation) Extensions() []*Extension {
	return in.extensions
}

// AddExtension appends ext to the installation's owned collection. It
// returns an error if ext.Key collides with an already-owned extension,
// since extension keys must stay unique within an installation.
func (in *Installation) AddExtension(ext *Extension) error {
	if in.extensionIndex == nil {
		in.extensionIndex = make(map[string]*Extension)
	}
	if _, exists := in.extensionIndex[ext.Key]; exists {
		return &DuplicateExtensionKeyError{Key: ext.Key}
	}
	ext.installation = in
	in.extensionIndex[ext.Key] = ext
	in.extensions = append(in.extensions, ext)
	return nil
}

// ExtensionByKey looks up an owned extension by key.
func (in *Installation) ExtensionByKey(key string) (*Extension, bool) {
	ext, ok := in.extensionIndex[key]
	return ext, ok
}

// AttachConfigData stores parsed configuration data under key, enriching
// the installation post-discovery.
func (in *Installation) AttachConfigData(key string, data map[string]any) {
	if in.ConfigData == nil {
		in.ConfigData = make(map[string]any)
	}
	in.ConfigData[key] = data
}

// AddValidationIssue appends an issue to the installation.
func (in *Installation) AddValidationIssue(issue ValidationIssue) {
	in.ValidationIssues = append(in.ValidationIssues, issue)
}

// HasBlockingIssues reports whether any attached ValidationIssue is
// blocking (severity Error or Critical).
func (in *Installation) HasBlockingIssues() bool {
	for _, issue := range in.ValidationIssues {
		if issue.IsBlocking() {
			return true
		}
	}
	return false
}

// Fingerprint derives a stable content hash for cache-invalidation
// purposes: the installation's canonical path, detected version, and the
// sorted set of extension key@version pairs.
func (in *Installation) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(in.Path))
	h.Write([]byte(in.Version.String()))

	keys := make([]string, 0, len(in.extensions))
	for _, ext := range in.extensions {
		keys = append(keys, ext.Key+"@"+ext.Version.String())
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Write([]byte(k))
	}

	return hex.EncodeToString(h.Sum(nil))
}

// DuplicateExtensionKeyError is returned by AddExtension when the key
// invariant is violated.
type DuplicateExtensionKeyError struct {
	Key string
}

func (e *DuplicateExtensionKeyError) Error() string {
	return "tymodel: duplicate extension key: " + e.Key
}
