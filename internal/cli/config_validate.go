package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file plus any project overlay).

This includes:
- Schema version compatibility
- Style colors and shape names
- Render concurrency and failure policy
- Logo file existence
- Logging format and server limits`,
		Example: `  # Validate current configuration
  qrbatch config validate

  # Validate and show detailed information
  qrbatch config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("✅ Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	st := cfg.Style.WithDefaults()

	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	if dir := config.GetResolvedProjectDir(); dir != "" {
		cmd.Printf("  Project overlay: %s\n", dir)
	}
	cmd.Printf("  Style: %s %s dots, %s/%s markers, %s\n",
		st.Color, st.Dots, st.MarkerBorder, st.MarkerCenter, st.Format)
	cmd.Printf("  Concurrency: %d\n", cfg.Render.Concurrency)
	cmd.Printf("  Failure policy: %s\n", cfg.Render.FailurePolicy)
	cmd.Printf("  Output directory: %s\n", cfg.Output.Dir)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	cmd.Printf("  Server: %s (max upload %d MiB)\n", cfg.Server.Addr, cfg.Server.MaxUploadMB)
}
