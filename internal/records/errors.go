package records

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by the resolver. Compare with errors.Is.
var (
	// ErrEmptyInput means the sheet had no data rows below the header.
	ErrEmptyInput = constError("no records found in file")

	// ErrUnsupportedFormat means the file is neither CSV nor XLSX.
	ErrUnsupportedFormat = constError("unsupported spreadsheet format")
)
