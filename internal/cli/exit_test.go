package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/records"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitFailure},
		{"no file", pipeline.ErrNoFileSelected, ExitUsage},
		{"empty input", fmt.Errorf("parsing: %w", records.ErrEmptyInput), ExitEmptyInput},
		{"render", &pipeline.RenderError{Index: 2, Name: "Bob", Err: errors.New("x")}, ExitRender},
		{"all failed", fmt.Errorf("%w: x", pipeline.ErrAllFailed), ExitRender},
		{"explicit", &ExitError{Code: 42, Err: errors.New("x")}, 42},
		{"wrapped explicit", errors.Join(errors.New("outer"), &ExitError{Code: 3}), 3},
		{"reported keeps mapping", reported(records.ErrEmptyInput), ExitEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	err := &ExitError{Code: ExitUsage, Err: pipeline.ErrNoFileSelected}
	assert.Equal(t, "no file selected", err.Error())
	assert.ErrorIs(t, err, pipeline.ErrNoFileSelected)
	assert.False(t, IsReported(err))

	assert.Equal(t, "exit status 4", (&ExitError{Code: 4}).Error())
	assert.True(t, IsReported(fmt.Errorf("wrap: %w", reported(errors.New("x")))))
}
