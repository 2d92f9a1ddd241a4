package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rshade/qrbatch/internal/pipeline"
)

// maxListedFailures caps how many skipped records the summary names.
const maxListedFailures = 5

// RenderSummary describes a finished run. archivePath may be empty when the
// archive was not written to disk.
func RenderSummary(run *pipeline.Run, archivePath string) string {
	if run == nil {
		return ""
	}

	var b strings.Builder
	if run.State == pipeline.StateFailed {
		b.WriteString(ErrorStyle.Render(run.Status))
		return b.String()
	}

	b.WriteString(SuccessStyle.Render(run.Status))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("QR codes:"),
		ValueStyle.Render(FormatCount(len(run.Artifacts))))
	if archivePath != "" {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Archive: "), ValueStyle.Render(archivePath))
	}
	fmt.Fprintf(&b, "%s %s", LabelStyle.Render("Size:    "),
		ValueStyle.Render(humanize.Bytes(uint64(run.ArchiveSize)))) //nolint:gosec // sizes are non-negative.

	if len(run.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(MutedStyle.Render(fmt.Sprintf("Skipped %s records:", FormatCount(len(run.Failures)))))
		for i, f := range run.Failures {
			if i == maxListedFailures {
				fmt.Fprintf(&b, "\n  … and %d more", len(run.Failures)-maxListedFailures)
				break
			}
			fmt.Fprintf(&b, "\n  - row %d (%s): %v", f.Index, f.Name, f.Err)
		}
	}

	return SummaryBoxStyle.Render(b.String())
}
