package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

// NewPreviewCmd creates the preview command, which prints a QR code to the
// terminal instead of writing a file.
func NewPreviewCmd() *cobra.Command {
	var (
		data  string
		ec    string
		large bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print a QR code in the terminal",
		Example: `  qrbatch preview --data https://example.com
  qrbatch preview --data https://example.com --large`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if data == "" {
				return &ExitError{Code: ExitUsage, Err: errors.New("--data is required")}
			}

			level := config.GetGlobalConfig().Style.WithDefaults().ErrorCorrection
			if ec != "" {
				parsed, err := style.ParseErrorCorrection(ec)
				if err != nil {
					return &ExitError{Code: ExitUsage, Err: err}
				}
				level = parsed
			}

			out, err := render.Terminal(data, level, !large)
			if err != nil {
				return &ExitError{Code: ExitRender, Err: err}
			}
			cmd.Print(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&data, "data", "", "text or URL to encode")
	cmd.Flags().StringVar(&ec, "error-correction", "", "error correction: low, medium, high or highest")
	cmd.Flags().BoolVar(&large, "large", false, "use full-height blocks instead of half blocks")

	return cmd
}
