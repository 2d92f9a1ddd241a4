package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/qrbatch/internal/archive"
	"github.com/rshade/qrbatch/internal/engine/batch"
	"github.com/rshade/qrbatch/internal/logging"
	"github.com/rshade/qrbatch/internal/records"
	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

// ArchiveName is the file name of every delivered archive.
const ArchiveName = "qr-codes.zip"

// FailurePolicy decides what a render failure does to the rest of the run.
type FailurePolicy string

const (
	// FailureAbort fails the whole run on the first render error.
	FailureAbort FailurePolicy = "abort"

	// FailureSkip records the failure and continues with the next record.
	FailureSkip FailurePolicy = "skip"
)

// ParseFailurePolicy accepts "abort" or "skip". Empty means abort.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", FailureAbort:
		return FailureAbort, nil
	case FailureSkip:
		return FailureSkip, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want abort or skip)", s)
	}
}

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	// Concurrency bounds how many records render at once. Default 1.
	Concurrency int

	FailurePolicy FailurePolicy

	// Renderer defaults to render.New().
	Renderer render.Renderer

	// NewArchive returns a fresh archive per run. Defaults to archive.NewZip.
	NewArchive func() archive.Writer

	// Deliverer receives the finished archive. Required.
	Deliverer Deliverer

	// OnStatus is called on every state transition.
	OnStatus func(StatusEvent)

	// OnProgress is called after each record renders or fails.
	OnProgress func(batch.ProgressSnapshot)
}

// Artifact is one rendered record.
type Artifact struct {
	Name string
	Data []byte
}

// Run is the record of one bulk generation.
type Run struct {
	ID         string
	SourceName string
	Style      style.Config
	Records    []records.InputRecord
	Artifacts  []Artifact

	// Failures is only populated under FailureSkip.
	Failures []*RenderError

	State  State
	Status string

	ArchiveSize int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Pipeline executes bulk runs. It holds no per-run state and can be reused.
type Pipeline struct {
	opts Options
}

// New returns a Pipeline with defaults applied to opts.
func New(opts Options) (*Pipeline, error) {
	if opts.Concurrency == 0 {
		opts.Concurrency = batch.DefaultConcurrency
	}
	if opts.Concurrency < batch.MinConcurrency || opts.Concurrency > batch.MaxConcurrency {
		return nil, fmt.Errorf("%w: got %d", batch.ErrInvalidConcurrency, opts.Concurrency)
	}
	policy, err := ParseFailurePolicy(string(opts.FailurePolicy))
	if err != nil {
		return nil, err
	}
	opts.FailurePolicy = policy
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.NewArchive == nil {
		opts.NewArchive = func() archive.Writer { return archive.NewZip() }
	}
	if opts.Deliverer == nil {
		return nil, errors.New("pipeline deliverer is required")
	}
	return &Pipeline{opts: opts}, nil
}

// Execute runs src through every phase with st applied to each record.
// A nil src returns ErrNoFileSelected without emitting any status. Otherwise
// the returned Run is always non-nil and ends in StateDone or StateFailed.
func (p *Pipeline) Execute(ctx context.Context, src Source, st style.Config) (*Run, error) {
	if src == nil {
		return nil, ErrNoFileSelected
	}

	run := &Run{
		ID:         logging.GetOrGenerateTraceID(ctx),
		SourceName: src.Name(),
		Style:      st,
		State:      StateIdle,
		StartedAt:  time.Now(),
	}
	ctx = logging.ContextWithTraceID(ctx, run.ID)
	log := logging.FromContext(ctx).With().
		Str("component", "pipeline").
		Str("run_id", run.ID).
		Str("source", run.SourceName).
		Logger()

	err := p.execute(ctx, &log, run, src)
	run.FinishedAt = time.Now()
	if err != nil {
		if run.State != StateFailed {
			p.fail(run, FailureStatus(err.Error()))
		}
		log.Error().Err(err).Str("state", run.State.String()).Msg("bulk run failed")
		return run, err
	}

	log.Info().
		Int("records", len(run.Records)).
		Int("artifacts", len(run.Artifacts)).
		Int("skipped", len(run.Failures)).
		Int("archive_bytes", run.ArchiveSize).
		Dur("duration", run.FinishedAt.Sub(run.StartedAt)).
		Msg("bulk run complete")
	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, log *zerolog.Logger, run *Run, src Source) error {
	p.transition(run, StateReadingFile, StatusReadingFile)
	data, err := readSource(ctx, run.SourceName, src)
	if err != nil {
		return err
	}
	log.Debug().Int("bytes", len(data)).Msg("input read")

	p.transition(run, StateParsing, StatusParsing)
	recs, err := records.Resolve(run.SourceName, data)
	if errors.Is(err, records.ErrEmptyInput) {
		p.fail(run, StatusNoRecords)
		return err
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", run.SourceName, err)
	}
	run.Records = recs
	log.Debug().Int("records", len(recs)).Msg("records resolved")

	p.transition(run, StateRendering, StatusRendering)
	if err := p.renderAll(ctx, run); err != nil {
		return err
	}

	p.transition(run, StatePackaging, StatusPackaging)
	zipped, err := p.pack(run.Artifacts)
	if err != nil {
		return err
	}
	run.ArchiveSize = len(zipped)

	if err := p.opts.Deliverer.Deliver(ctx, ArchiveName, zipped); err != nil {
		return &DeliveryError{Name: ArchiveName, Err: err}
	}

	status := StatusDone
	if len(run.Failures) > 0 {
		status = PartialStatus(len(run.Artifacts), len(run.Failures))
	}
	p.transition(run, StateDone, status)
	return nil
}

func readSource(ctx context.Context, name string, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func (p *Pipeline) renderAll(ctx context.Context, run *Run) error {
	proc, err := batch.NewProcessor[records.InputRecord](p.opts.Concurrency)
	if err != nil {
		return err
	}
	skip := p.opts.FailurePolicy == FailureSkip
	proc.ContinueOnError(skip)
	if p.opts.OnProgress != nil {
		proc.WithProgressCallback(p.opts.OnProgress)
	}

	ext := run.Style.WithDefaults().Extension()
	rendered := make([][]byte, len(run.Records))
	failures := make([]*RenderError, len(run.Records))

	err = proc.Process(ctx, run.Records, func(ctx context.Context, rec records.InputRecord, i int) error {
		data, err := p.opts.Renderer.Render(ctx, render.Request{
			Data:   rec.Payload,
			Style:  run.Style,
			Width:  style.BatchSize,
			Height: style.BatchSize,
		})
		if err != nil {
			failures[i] = &RenderError{Index: rec.Index, Name: rec.Name, Err: err}
			return failures[i]
		}
		rendered[i] = data
		return nil
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil && !skip {
		var renderErr *RenderError
		if errors.As(err, &renderErr) {
			return renderErr
		}
		return err
	}

	for i, rec := range run.Records {
		if failures[i] != nil {
			run.Failures = append(run.Failures, failures[i])
			continue
		}
		run.Artifacts = append(run.Artifacts, Artifact{
			Name: rec.Name + "." + ext,
			Data: rendered[i],
		})
	}
	if len(run.Artifacts) == 0 {
		return fmt.Errorf("%w: %w", ErrAllFailed, run.Failures[0])
	}
	return nil
}

func (p *Pipeline) pack(artifacts []Artifact) ([]byte, error) {
	w := p.opts.NewArchive()
	for _, a := range artifacts {
		w.Add(a.Name, a.Data)
	}
	data, err := w.Bytes()
	if err != nil {
		return nil, &PackagingError{Err: err}
	}
	return data, nil
}

func (p *Pipeline) transition(run *Run, s State, status string) {
	run.State = s
	run.Status = status
	if p.opts.OnStatus != nil {
		p.opts.OnStatus(StatusEvent{RunID: run.ID, State: s, Status: status})
	}
}

func (p *Pipeline) fail(run *Run, status string) {
	p.transition(run, StateFailed, status)
}
