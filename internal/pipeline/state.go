package pipeline

import "fmt"

// State is the phase a Run is in.
type State int

// Run states in the order a successful run visits them.
const (
	StateIdle State = iota
	StateReadingFile
	StateParsing
	StateRendering
	StatePackaging
	StateDone
	StateFailed
)

// Status lines reported on each transition.
const (
	StatusReadingFile = "Reading file..."
	StatusParsing     = "Parsing records..."
	StatusRendering   = "Generating QR codes..."
	StatusPackaging   = "Zipping files..."
	StatusDone        = "✅ All QR Codes Generated!"
	StatusNoRecords   = "No records found in file."

	// MsgNoFile is shown when a run is requested without an input file.
	MsgNoFile = "Please upload a file first."
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReadingFile:
		return "reading_file"
	case StateParsing:
		return "parsing"
	case StateRendering:
		return "rendering"
	case StatePackaging:
		return "packaging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// FailureStatus formats the status line for a failed run.
func FailureStatus(reason string) string {
	return "❌ " + reason
}

// PartialStatus formats the completion line when some records were skipped.
func PartialStatus(generated, skipped int) string {
	return fmt.Sprintf("✅ Generated %d QR codes (%d skipped)", generated, skipped)
}

// StatusEvent is passed to Options.OnStatus on every transition.
type StatusEvent struct {
	RunID  string
	State  State
	Status string
}
