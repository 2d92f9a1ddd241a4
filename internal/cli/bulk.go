package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/engine/batch"
	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/style"
	"github.com/rshade/qrbatch/internal/tui"
)

type bulkOptions struct {
	file          string
	out           string
	concurrency   int
	failurePolicy string
	plain         bool
}

// NewBulkCmd creates the bulk command, which renders one QR code per
// spreadsheet row and writes them all to qr-codes.zip.
func NewBulkCmd() *cobra.Command {
	var opts bulkOptions

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Generate one QR code per spreadsheet row into a zip archive",
		Long: `Reads a CSV or XLSX file, skips the header row, and renders one QR code per
remaining row. The first column names the image (Record-N when empty) and the
whole row, joined with ", ", is encoded. Every image is rendered at 1000x1000
and the set is written to qr-codes.zip in the output directory.

By default the first failing row aborts the run and no archive is written.
Use --failure-policy skip to package the rows that did render.`,
		Example: `  # Bulk generate with the configured style
  qrbatch bulk --file people.xlsx

  # Rounded dots, four workers, written to ./out
  qrbatch bulk --file people.csv --dots rounded --concurrency 4 --out ./out

  # Keep going past bad rows, plain status output
  qrbatch bulk --file people.csv --failure-policy skip --plain`,
		Args: cobra.NoArgs,
	}
	sf := addStyleFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := config.GetGlobalConfig()
		applyBulkDefaults(cmd, cfg, &opts)

		st, err := sf.resolve(cmd, cfg)
		if err != nil {
			return err
		}
		return runBulk(cmd, opts, st)
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV or XLSX file to read")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "directory qr-codes.zip is written to")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", batch.DefaultConcurrency,
		fmt.Sprintf("records rendered at once (%d-%d)", batch.MinConcurrency, batch.MaxConcurrency))
	cmd.Flags().StringVar(&opts.failurePolicy, "failure-policy", string(pipeline.FailureAbort),
		"what a failing row does: abort or skip")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print status lines instead of the interactive progress view")

	return cmd
}

// applyBulkDefaults fills options the user did not set from the config file.
func applyBulkDefaults(cmd *cobra.Command, cfg *config.Config, opts *bulkOptions) {
	if !cmd.Flags().Changed("concurrency") {
		opts.concurrency = cfg.Render.Concurrency
	}
	if !cmd.Flags().Changed("failure-policy") && cfg.Render.FailurePolicy != "" {
		opts.failurePolicy = cfg.Render.FailurePolicy
	}
	if !cmd.Flags().Changed("plain") {
		opts.plain = cfg.Output.Plain
	}
	if opts.out == "" {
		opts.out = config.GetOutputDir()
	}
}

func runBulk(cmd *cobra.Command, opts bulkOptions, st style.Config) error {
	ctx := cmd.Context()
	log := logger.With().Str("operation", "bulk").Logger()

	if opts.file == "" {
		printErr(cmd, "%s", pipeline.MsgNoFile)
		return reported(pipeline.ErrNoFileSelected)
	}

	policy, err := pipeline.ParseFailurePolicy(opts.failurePolicy)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	deliverer := pipeline.DirDeliverer{Dir: opts.out}
	archivePath := deliverer.Path(pipeline.ArchiveName)
	src := pipeline.FileSource(opts.file)

	runner := func(
		ctx context.Context,
		onStatus func(pipeline.StatusEvent),
		onProgress func(batch.ProgressSnapshot),
	) (*pipeline.Run, error) {
		p, newErr := pipeline.New(pipeline.Options{
			Concurrency:   opts.concurrency,
			FailurePolicy: policy,
			Deliverer:     deliverer,
			OnStatus:      onStatus,
			OnProgress:    onProgress,
		})
		if newErr != nil {
			return nil, &ExitError{Code: ExitUsage, Err: newErr}
		}
		return p.Execute(ctx, src, st)
	}

	var run *pipeline.Run
	if opts.plain || !tui.IsTTY() {
		run, err = runBulkPlain(cmd, runner, archivePath)
	} else {
		run, err = tui.RunBulkProgram(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), src.Name(), archivePath, runner)
	}

	if err != nil {
		log.Error().Ctx(ctx).Err(err).Msg("bulk run failed")
		if run != nil {
			// The failure status line has already been shown.
			return reported(err)
		}
		return err
	}
	return nil
}

// runBulkPlain prints each status line as it happens and a short summary.
func runBulkPlain(cmd *cobra.Command, runner tui.BulkRunner, archivePath string) (*pipeline.Run, error) {
	run, err := runner(cmd.Context(), func(e pipeline.StatusEvent) {
		if e.State == pipeline.StateFailed {
			printErr(cmd, "%s", e.Status)
			return
		}
		cmd.Println(e.Status)
	}, nil)
	if err != nil {
		return run, err
	}

	cmd.Printf("Wrote %s QR codes to %s (%s)\n",
		tui.FormatCount(len(run.Artifacts)), archivePath,
		humanize.Bytes(uint64(run.ArchiveSize))) //nolint:gosec // sizes are non-negative.
	for _, f := range run.Failures {
		printErr(cmd, "skipped row %d (%s): %v", f.Index, f.Name, f.Err)
	}
	return run, nil
}
