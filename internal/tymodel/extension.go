package tymodel

import "strings"

// ExtensionType classifies where an extension originates from.
type ExtensionType string

// Recognized extension types.
const (
	ExtensionLocal       ExtensionType = "local"
	ExtensionSystem      ExtensionType = "system"
	ExtensionThirdParty  ExtensionType = "third-party"
)

// Extension is a discoverable add-on module within an Installation,
// uniquely identified by Key within that Installation.
type Extension struct {
	EMConfiguration map[string]any
	Key             string
	Title           string
	PackageName     string // e.g. "georgringer/news"; empty if not composer-managed
	Path            string
	Type            ExtensionType
	Version         Version
	IsActive        bool
	installation    *Installation
}

// Installation returns the non-owning back-reference to the owning
// Installation, or nil if the extension has not been attached to one yet.
func (e *Extension) Installation() *Installation {
	return e.installation
}

// ComposerName splits PackageName into its vendor and name components.
// ok is false if the extension has no composer coordinate or it is
// malformed.
func (e *Extension) ComposerName() (vendor, name string, ok bool) {
	if e.PackageName == "" {
		return "", "", false
	}
	idx := strings.IndexByte(e.PackageName, '/')
	if idx <= 0 || idx == len(e.PackageName)-1 {
		return "", "", false
	}
	return e.PackageName[:idx], e.PackageName[idx+1:], true
}

// ComposerNameOK reports whether PackageName is a well-formed
// vendor/name composer coordinate, without returning the split halves.
func (e *Extension) ComposerNameOK() bool {
	_, _, ok := e.ComposerName()
	return ok
}

// EMConfigConstraint reads the TYPO3 core version constraint out of
// EMConfiguration's "constraints"."depends"."typo3" entry, the
// ext_emconf.php shape TYPO3 extensions declare their core compatibility
// in. Returns "" if absent or malformed.
func (e *Extension) EMConfigConstraint() string {
	constraints, ok := e.EMConfiguration["constraints"].(map[string]any)
	if !ok {
		return ""
	}
	depends, ok := constraints["depends"].(map[string]any)
	if !ok {
		return ""
	}
	typo3, _ := depends["typo3"].(string)
	return typo3
}
