package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the qrbatch CLI.
// It resolves the project directory, loads configuration, wires up logging,
// and registers the generate, preview, bulk, serve and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		projectDir string
	)

	cmd := &cobra.Command{
		Use:           "qrbatch",
		Short:         "Styled QR code generator",
		Long:          "qrbatch: Generate styled QR codes, one at a time or in bulk from a spreadsheet",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Past flag parsing, failures are runtime errors and usage is noise.
			cmd.SilenceUsage = true

			ctx := cmd.Context()
			cwd, err := os.Getwd()
			if err != nil {
				cwd = ""
			}
			resolved := config.ResolveProjectDir(ctx, projectDir, cwd)
			config.SetResolvedProjectDir(resolved)
			config.InitGlobalConfigWithProject(ctx, resolved)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory containing .qrbatch/config.yaml (default: search upward from the working directory)")

	cmd.AddCommand(
		NewGenerateCmd(), NewPreviewCmd(), NewBulkCmd(),
		NewServeCmd(ver), newConfigCmd(),
	)

	return cmd
}

const rootCmdExample = `  # Generate a single QR code
  qrbatch generate --data https://example.com

  # Generate a rounded, orange QR code as SVG
  qrbatch generate --data https://example.com --dots rounded --color "#ED6A33" --format svg

  # Print a QR code in the terminal
  qrbatch preview --data "WIFI:S:home;T:WPA;P:secret;;"

  # Generate one QR code per spreadsheet row into qr-codes.zip
  qrbatch bulk --file people.xlsx --out ./out

  # Serve the HTTP API
  qrbatch serve --addr 127.0.0.1:8080

  # Initialize configuration
  qrbatch config init

  # Set configuration values
  qrbatch config set style.dots rounded`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// printErr writes a line to the command's error stream.
func printErr(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
