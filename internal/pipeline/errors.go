package pipeline

import "fmt"

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrNoFileSelected is returned when a run is started without an input file.
	ErrNoFileSelected = constError("no file selected")

	// ErrRender matches every *RenderError.
	ErrRender = constError("render failed")

	// ErrPackaging matches every *PackagingError.
	ErrPackaging = constError("packaging failed")

	// ErrDelivery matches every *DeliveryError.
	ErrDelivery = constError("delivery failed")

	// ErrAllFailed is returned under FailureSkip when no record rendered.
	ErrAllFailed = constError("every record failed to render")
)

// RenderError reports the record whose render failed.
type RenderError struct {
	// Index is the record's 1-based data-row position.
	Index int
	Name  string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is reports whether target is ErrRender.
func (e *RenderError) Is(target error) bool { return target == ErrRender }

// PackagingError wraps a failure to serialize the archive.
type PackagingError struct {
	Err error
}

func (e *PackagingError) Error() string { return fmt.Sprintf("packaging archive: %v", e.Err) }

func (e *PackagingError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPackaging.
func (e *PackagingError) Is(target error) bool { return target == ErrPackaging }

// DeliveryError wraps a failure to hand the archive to its destination.
type DeliveryError struct {
	Name string
	Err  error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("delivering %s: %v", e.Name, e.Err) }

func (e *DeliveryError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDelivery.
func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }
