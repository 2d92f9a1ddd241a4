package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/qrbatch/internal/config"
	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/web"
)

// NewServeCmd creates the serve command, which exposes single and bulk
// generation over HTTP until interrupted.
func NewServeCmd(ver string) *cobra.Command {
	var (
		addr          string
		maxUploadMB   int
		concurrency   int
		failurePolicy string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the QR generation HTTP API",
		Long: `Starts an HTTP server with these endpoints:

  GET  /healthz       liveness and version
  POST /api/v1/qr     JSON {data, style, size} -> image
  POST /api/v1/bulk   multipart file (+ logo, style fields) -> qr-codes.zip

Style flags set the base style; request fields override it. Only one bulk run
executes at a time.`,
		Example: `  qrbatch serve
  qrbatch serve --addr :9000 --dots rounded --max-upload-mb 25`,
		Args: cobra.NoArgs,
	}
	sf := addStyleFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := config.GetGlobalConfig()
		if !cmd.Flags().Changed("addr") {
			addr = cfg.Server.Addr
		}
		if !cmd.Flags().Changed("max-upload-mb") {
			maxUploadMB = cfg.Server.MaxUploadMB
		}
		if !cmd.Flags().Changed("concurrency") {
			concurrency = cfg.Render.Concurrency
		}
		if !cmd.Flags().Changed("failure-policy") {
			failurePolicy = cfg.Render.FailurePolicy
		}

		policy, err := pipeline.ParseFailurePolicy(failurePolicy)
		if err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
		st, err := sf.resolve(cmd, cfg)
		if err != nil {
			return err
		}

		srv := web.NewServer(web.Options{
			Addr:           addr,
			Style:          st,
			Concurrency:    concurrency,
			FailurePolicy:  policy,
			MaxUploadMB:    maxUploadMB,
			SingleRenderer: newSingleRenderer(cfg),
			Version:        ver,
		}, logger)

		cmd.Printf("Listening on http://%s\n", addr)
		return srv.Run(cmd.Context())
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().IntVar(&maxUploadMB, "max-upload-mb", 0, "maximum request body size in MiB")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "records rendered at once per bulk run")
	cmd.Flags().StringVar(&failurePolicy, "failure-policy", "", "what a failing row does: abort or skip")

	return cmd
}
