package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/qrbatch/internal/engine/batch"
	"github.com/rshade/qrbatch/internal/logging"
	"github.com/rshade/qrbatch/internal/pipeline"
)

const progressBarWidth = 40

// BulkStatusMsg carries a pipeline state transition.
type BulkStatusMsg pipeline.StatusEvent

// BulkProgressMsg is sent after each record renders.
type BulkProgressMsg struct {
	Processed int
	Failed    int
	Total     int
}

// BulkDoneMsg is sent once the run has finished, successfully or not.
type BulkDoneMsg struct {
	Run *pipeline.Run
	Err error
}

// BulkModel is the Bubble Tea model shown while a bulk run is in progress.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BulkModel struct {
	spinner  spinner.Model
	progress progress.Model

	source      string
	archivePath string
	status      string
	state       pipeline.State

	processed int
	failed    int
	total     int

	cancel     context.CancelFunc
	cancelling bool

	done bool
	run  *pipeline.Run
	err  error
}

// NewBulkModel creates the progress view for a run over source. cancel is
// invoked when the user presses Ctrl+C or q; the view then waits for the run
// to stop before exiting.
func NewBulkModel(source, archivePath string, cancel context.CancelFunc) BulkModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = HeaderStyle

	return BulkModel{
		spinner:     s,
		progress:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressBarWidth)),
		source:      source,
		archivePath: archivePath,
		status:      pipeline.StatusReadingFile,
		cancel:      cancel,
	}
}

// Init starts the spinner.
func (m BulkModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles pipeline messages and key presses.
func (m BulkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case BulkStatusMsg:
		m.state = msg.State
		m.status = msg.Status
		return m, nil

	case BulkProgressMsg:
		m.processed = msg.Processed
		m.failed = msg.Failed
		m.total = msg.Total
		return m, nil

	case BulkDoneMsg:
		m.done = true
		m.run = msg.Run
		m.err = msg.Err
		if msg.Run != nil {
			m.state = msg.Run.State
			m.status = msg.Run.Status
		}
		return m, tea.Quit

	case tea.WindowSizeMsg:
		width := msg.Width - len("100%") - 2
		if width > progressBarWidth {
			width = progressBarWidth
		}
		if width > 0 {
			m.progress.Width = width
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancelling = true
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the spinner, status and progress bar, or the final summary.
func (m BulkModel) View() string {
	if m.done {
		if m.run == nil && m.err != nil {
			return ErrorStyle.Render(pipeline.FailureStatus(m.err.Error())) + "\n"
		}
		return RenderSummary(m.run, m.archivePath) + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", m.spinner.View(), ValueStyle.Render(m.status), MutedStyle.Render(m.source))

	if m.total > 0 {
		ratio := float64(m.processed) / float64(m.total)
		fmt.Fprintf(&b, "%s %s/%s", m.progress.ViewAs(ratio), FormatCount(m.processed), FormatCount(m.total))
		if m.failed > 0 {
			fmt.Fprintf(&b, " %s", ErrorStyle.Render(fmt.Sprintf("(%d failed)", m.failed)))
		}
		b.WriteString("\n")
	}

	if m.cancelling {
		b.WriteString(MutedStyle.Render("Cancelling after the current record...") + "\n")
	} else {
		b.WriteString(MutedStyle.Render("Press q to cancel") + "\n")
	}
	return b.String()
}

// Result returns the finished run and its error.
func (m BulkModel) Result() (*pipeline.Run, error) {
	return m.run, m.err
}

// BulkRunner executes a run, reporting through the given callbacks.
type BulkRunner func(
	ctx context.Context,
	onStatus func(pipeline.StatusEvent),
	onProgress func(batch.ProgressSnapshot),
) (*pipeline.Run, error)

// RunBulkProgram runs runner in the background while showing BulkModel on
// out. It returns the runner's result once the run finishes.
func RunBulkProgram(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	source, archivePath string,
	runner BulkRunner,
) (*pipeline.Run, error) {
	log := logging.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewBulkModel(source, archivePath, cancel)
	p := tea.NewProgram(model, tea.WithInput(in), tea.WithOutput(out))

	go func() {
		run, err := runner(ctx,
			func(e pipeline.StatusEvent) { p.Send(BulkStatusMsg(e)) },
			func(s batch.ProgressSnapshot) {
				p.Send(BulkProgressMsg{Processed: s.Processed, Failed: s.Failed, Total: s.Total})
			},
		)
		p.Send(BulkDoneMsg{Run: run, Err: err})
	}()

	final, err := p.Run()
	if err != nil {
		log.Error().Ctx(ctx).Str("component", "tui").Err(err).Msg("progress view failed")
		return nil, fmt.Errorf("running TUI: %w", err)
	}

	bm, ok := final.(BulkModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return bm.Result()
}
