// tyanalyze inspects a TYPO3 installation and reports the migration risk
// of each of its extensions.
//
// Usage:
//
//	tyanalyze analyze <path>    Run the full discovery + analysis pipeline
//	tyanalyze cache clear       Clear one or more persisted cache types
package main

import (
	"os"

	"github.com/cpsit/tycore/cmd/tyanalyze/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
