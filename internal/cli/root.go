// Package cli implements the cobra-based CLI commands for portreclaim.
//
// The root command accepts the historical single-dash invocation shapes
// (-p, -n, -ip, -l, -cidr) verbatim; the check and free subcommands offer
// the same operations with regular flags. Both reduce the command line to
// a model.ScanRequest and hand it to the same Driver.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/portreclaim/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command. The root
// command itself does not parse flags (its arguments are the legacy
// syntax), so they only take effect for subcommands.
var (
	// configPath overrides the config file location.
	configPath string

	// verbose enables debug-level diagnostics on stderr.
	verbose bool

	// strict turns usage errors and busy ports into non-zero exit codes.
	strict bool

	// colorMode is "auto", "always" or "never"; empty defers to the config.
	colorMode string

	// logFormat is "text" or "json"; empty defers to the config.
	logFormat string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portreclaim",
		Short: "Check TCP port availability and reclaim busy local ports",
		Long: `portreclaim reports whether TCP ports are free on this host, on a given
address, or on every address of a CIDR block, and can terminate the process
holding a busy local port.

Freeing a port kills a process this tool does not own. Only use -n / free on
ports you intend to forcibly vacate.`,

		// The historical syntax uses single-dash multi-letter flags such as
		// -ip and -cidr, which pflag would split into shorthand clusters.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors lets Execute format errors itself.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLegacy(cmd, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.portreclaim.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Exit non-zero on usage errors and busy ports")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "", "Colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Diagnostics format: text, json")

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewFreeCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError types carry their own exit codes, usage errors exit 2, and
// other errors default to exit code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
		} else {
			printError(err.Error(), nil)
		}
		os.Exit(int(exitCode(err)))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) model.ExitCode {
	var cliErr *model.CLIError
	switch {
	case err == nil:
		return model.ExitSuccess
	case errors.As(err, &cliErr):
		return cliErr.Code
	case model.IsUsageError(err):
		return model.ExitUsage
	default:
		return model.ExitGeneralError
	}
}

// printError writes "Error: <message>" to stderr.
func printError(message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
