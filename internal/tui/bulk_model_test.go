package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/qrbatch/internal/engine/batch"
	"github.com/rshade/qrbatch/internal/pipeline"
)

func update(t *testing.T, m BulkModel, msg tea.Msg) (BulkModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	bm, ok := next.(BulkModel)
	require.True(t, ok)
	return bm, cmd
}

func TestBulkModel_StatusAndProgress(t *testing.T) {
	m := NewBulkModel("people.csv", "out/qr-codes.zip", nil)
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), pipeline.StatusReadingFile)

	m, _ = update(t, m, BulkStatusMsg{State: pipeline.StateRendering, Status: pipeline.StatusRendering})
	m, _ = update(t, m, BulkProgressMsg{Processed: 1200, Total: 2500, Failed: 2})

	view := m.View()
	assert.Contains(t, view, "Generating QR codes...")
	assert.Contains(t, view, "people.csv")
	assert.Contains(t, view, "1,200/2,500")
	assert.Contains(t, view, "(2 failed)")
}

func TestBulkModel_Cancel(t *testing.T) {
	cancelled := 0
	m := NewBulkModel("in.csv", "", func() { cancelled++ })

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "waits for the run to stop before quitting")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, 1, cancelled)
	assert.Contains(t, m.View(), "Cancelling")
}

func TestBulkModel_Done(t *testing.T) {
	run := &pipeline.Run{
		State:       pipeline.StateDone,
		Status:      pipeline.StatusDone,
		Artifacts:   make([]pipeline.Artifact, 3),
		ArchiveSize: 2048,
	}
	m := NewBulkModel("in.csv", "out/qr-codes.zip", nil)

	m, cmd := update(t, m, BulkDoneMsg{Run: run})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	view := m.View()
	assert.Contains(t, view, pipeline.StatusDone)
	assert.Contains(t, view, "out/qr-codes.zip")
	assert.Contains(t, view, "2.0 kB")

	got, err := m.Result()
	require.NoError(t, err)
	assert.Same(t, run, got)
}

func TestBulkModel_DoneWithoutRun(t *testing.T) {
	m := NewBulkModel("in.csv", "", nil)
	m, _ = update(t, m, BulkDoneMsg{Err: pipeline.ErrNoFileSelected})
	assert.Contains(t, m.View(), "❌ no file selected")
}

func TestRenderSummary(t *testing.T) {
	assert.Empty(t, RenderSummary(nil, ""))

	failed := &pipeline.Run{State: pipeline.StateFailed, Status: pipeline.StatusNoRecords}
	assert.Contains(t, RenderSummary(failed, "x.zip"), "No records found in file.")

	failures := make([]*pipeline.RenderError, 7)
	for i := range failures {
		failures[i] = &pipeline.RenderError{Index: i + 1, Name: "r", Err: errors.New("too long")}
	}
	partial := &pipeline.Run{
		State:     pipeline.StateDone,
		Status:    pipeline.PartialStatus(1, 7),
		Artifacts: make([]pipeline.Artifact, 1),
		Failures:  failures,
	}
	out := RenderSummary(partial, "")
	assert.Contains(t, out, "Skipped 7 records")
	assert.Contains(t, out, "row 1 (r): too long")
	assert.Contains(t, out, "and 2 more")
	assert.NotContains(t, out, "Archive")
}

func TestRunBulkProgram(t *testing.T) {
	want := &pipeline.Run{State: pipeline.StateDone, Status: pipeline.StatusDone}
	var out bytes.Buffer

	run, err := RunBulkProgram(context.Background(), strings.NewReader(""), &out, "in.csv", "qr-codes.zip",
		func(_ context.Context, onStatus func(pipeline.StatusEvent), onProgress func(batch.ProgressSnapshot)) (*pipeline.Run, error) {
			onStatus(pipeline.StatusEvent{State: pipeline.StateRendering, Status: pipeline.StatusRendering})
			onProgress(batch.ProgressSnapshot{Processed: 1, Total: 1})
			return want, nil
		})
	require.NoError(t, err)
	assert.Same(t, want, run)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", FormatCount(7))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}
