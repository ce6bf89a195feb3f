package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpsit/tycore/internal/version"
)

// Exit codes shared by the analyze and cache commands.
const (
	exitSuccess           = 0
	exitAnalyzerErrors    = 1
	exitBlockingIssues    = 2
	exitInvalidCacheType  = 2 // cache clear reuses the same code for an unrecognized --type
	exitInvalidInvocation = 64
)

var (
	quietFlag   bool
	verboseFlag bool
	logLevel    = slog.LevelWarn

	rootCmd = &cobra.Command{
		Use:   "tyanalyze",
		Short: "Migration-risk analyzer for TYPO3 installations",
		Long: `tyanalyze discovers a TYPO3 installation, enumerates its extensions, and
scores each extension's upgrade risk by checking package-registry
availability, counting source-transformation findings, and measuring
code size.`,
		Version:       version.Get(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quietFlag {
				logLevel = slog.LevelError
			} else if verboseFlag {
				logLevel = slog.LevelDebug
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress informational output (errors only)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose debug output")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code, ok := exitCodeOf(err); ok {
			return code
		}
		return exitInvalidInvocation
	}
	return lastExitCode
}

// logger builds the slog logger for the current verbosity level.
func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
