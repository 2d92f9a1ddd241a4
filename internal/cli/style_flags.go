package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/style"
)

//nolint:gochecknoglobals // read-only help table
var styleFlagUsage = map[string]string{
	"color":            "foreground color as hex, e.g. #1A4D8F (presets: " + strings.Join(style.PresetColors, " ") + ")",
	"background":       "background color as hex",
	"dots":             "data module shape: square, rounded or dots",
	"marker_border":    "finder pattern border: square, extra-rounded or dot",
	"marker_center":    "finder pattern center: square or dot",
	"format":           "output format: png, jpeg or svg",
	"error_correction": "error correction: low, medium, high or highest",
	"logo_ratio":       "fraction of the symbol the logo may cover",
	"logo_margin":      "modules cleared around the logo",
}

// styleFlags registers one flag per style field plus --logo. Only flags the
// user set override the configured style.
type styleFlags struct {
	values map[string]*string
	logo   string
}

func addStyleFlags(cmd *cobra.Command) *styleFlags {
	sf := &styleFlags{values: make(map[string]*string, len(style.Fields))}
	for _, field := range style.Fields {
		var v string
		sf.values[field] = &v
		cmd.Flags().StringVar(&v, flagName(field), "", styleFlagUsage[field])
	}
	cmd.Flags().StringVar(&sf.logo, "logo", "", "image placed at the center of every code (png, jpeg, gif or webp)")
	return sf
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

// resolve returns the configured style with changed flags applied and the
// logo loaded from --logo or render.logo.
func (sf *styleFlags) resolve(cmd *cobra.Command, cfg *config.Config) (style.Config, error) {
	st := cfg.Style.WithDefaults()
	for _, field := range style.Fields {
		if !cmd.Flags().Changed(flagName(field)) {
			continue
		}
		if err := st.Set(field, *sf.values[field]); err != nil {
			return st, &ExitError{Code: ExitUsage, Err: fmt.Errorf("--%s: %w", flagName(field), err)}
		}
	}

	logoPath := cfg.Render.Logo
	if sf.logo != "" {
		logoPath = sf.logo
	}
	if logoPath != "" {
		data, err := os.ReadFile(logoPath)
		if err != nil {
			return st, fmt.Errorf("reading logo: %w", err)
		}
		st.Logo = data
	}
	return st, st.Validate()
}
