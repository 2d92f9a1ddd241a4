// Package pipeline turns an uploaded spreadsheet into a zip archive of styled
// QR codes.
//
// A Pipeline drives one Run through a fixed sequence of states:
//
//	Idle -> ReadingFile -> Parsing -> Rendering -> Packaging -> Done
//
// Any phase may end in Failed. Every transition is reported through
// Options.OnStatus with the human-readable status line shown to the user.
// By default a single render failure aborts the whole run and nothing is
// delivered; FailureSkip keeps going and archives whatever rendered.
package pipeline
