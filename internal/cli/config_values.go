package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
)

// NewConfigGetCmd creates the config get command.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Long:  "Prints the effective value of a dotted key. A section name prints the whole section as YAML.",
		Example: `  qrbatch config get style.color
  qrbatch config get render`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			cmd.Println(v)
			return nil
		},
	}
}

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Sets a dotted key and saves the file. Inside a project the project-local
file is edited unless --global is given. The new value must pass validation.`,
		Example: `  qrbatch config set style.dots rounded
  qrbatch config set render.concurrency 4
  qrbatch config set render.failure_policy skip --global`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := editableConfig(global)
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}
			cmd.Printf("Set %s = %s in %s\n", args[0], args[1], cfg.ConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "edit the global file even inside a project")
	return cmd
}

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := config.GetGlobalConfig().List()
			if err != nil {
				return err
			}
			for _, kv := range entries {
				cmd.Printf("%s = %s\n", kv[0], kv[1])
			}
			return nil
		},
	}
}

// editableConfig returns the file config set writes to, loaded without any
// overlay so that saving does not copy global values into a project file.
func editableConfig(global bool) (*config.Config, error) {
	projectDir := config.GetResolvedProjectDir()
	if projectDir == "" || global {
		return config.New(), nil
	}

	cfg := config.Defaults()
	cfg.SetConfigPath(filepath.Join(projectDir, "config.yaml"))
	if err := cfg.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return cfg, nil
}
