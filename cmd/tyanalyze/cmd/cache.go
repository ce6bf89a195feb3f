package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cpsit/tycore/internal/tycache"
)

// cacheTypes is the closed set of persisted cache directories a clear
// operation may target, one subdirectory each under the configured cache
// root. An unrecognized --type is an invalid-invocation error, not a
// silently-ignored no-op.
var cacheTypes = []string{
	"analysis",
	"path-resolution",
	"version",
	"extension-discovery",
	"installation-discovery",
}

func isKnownCacheType(t string) bool {
	for _, known := range cacheTypes {
		if t == known {
			return true
		}
	}
	return false
}

var (
	cacheTypeFlags []string
	cacheDryRun    bool
	cacheForce     bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage tyanalyze's persisted caches",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear one or more persisted cache directories",
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().StringArrayVar(&cacheTypeFlags, "type", nil, "cache type to clear (repeatable); defaults to all known types")
	cacheClearCmd.Flags().BoolVar(&cacheDryRun, "dry-run", false, "report what would be cleared without removing anything")
	cacheClearCmd.Flags().BoolVar(&cacheForce, "force", false, "actually remove entries; without --force or --dry-run, clear refuses to run")
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	types := cacheTypeFlags
	if len(types) == 0 {
		types = cacheTypes
	}
	for _, t := range types {
		if !isKnownCacheType(t) {
			return &exitError{
				err:  fmt.Errorf("unknown cache type %q (known: %v)", t, cacheTypes),
				code: exitInvalidCacheType,
			}
		}
	}

	if !cacheDryRun && !cacheForce {
		return &exitError{
			err:  fmt.Errorf("clearing %v requires --dry-run or --force", types),
			code: exitInvalidCacheType,
		}
	}

	config := loadConfigOrDefault(logger())
	cacheRoot := config.Cache.Dir
	if cacheRoot == "" {
		cacheRoot = "./.tycore-cache"
	}

	anyFailed := false
	for _, t := range types {
		count, bytes, err := clearCacheType(cacheRoot, t, cacheDryRun)
		if err != nil {
			anyFailed = true
			fmt.Fprintf(os.Stderr, "cache clear %s: %v\n", t, err)
			continue
		}
		verb := "cleared"
		if cacheDryRun {
			verb = "would clear"
		}
		fmt.Printf("%s: %s %d entries (%d bytes)\n", t, verb, count, bytes)
	}

	if anyFailed {
		lastExitCode = exitAnalyzerErrors
		return nil
	}
	lastExitCode = exitSuccess
	return nil
}

func clearCacheType(cacheRoot, cacheType string, dryRun bool) (int, int64, error) {
	dir := filepath.Join(cacheRoot, cacheType)
	store, err := tycache.NewDiskStore(dir)
	if err != nil {
		return 0, 0, err
	}
	return store.Clear(dryRun)
}
