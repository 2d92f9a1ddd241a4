package records

import (
	"fmt"
	"strings"
)

// PayloadSeparator joins the cells of a row into the QR payload.
const PayloadSeparator = ", "

// InputRecord is one data row reduced to what a QR render needs.
type InputRecord struct {
	// Index is the 1-based position among data rows (header excluded).
	Index   int
	Name    string
	Payload string
}

// FallbackName is the name given to a record whose first cell is falsy.
func FallbackName(index int) string {
	return fmt.Sprintf("Record-%d", index)
}

// Resolve parses a spreadsheet file and returns its data rows as records.
// The file name only guides format detection.
func Resolve(name string, data []byte) ([]InputRecord, error) {
	p, err := ParserFor(name, data)
	if err != nil {
		return nil, err
	}
	return ResolveWith(p, data)
}

// ResolveWith is Resolve with an explicit parser.
func ResolveWith(p Parser, data []byte) ([]InputRecord, error) {
	grid, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	return FromGrid(grid)
}

// FromGrid converts a parsed grid to records. Row 0 is always the header.
// A grid with no rows, or with only the header, yields ErrEmptyInput.
func FromGrid(grid Grid) ([]InputRecord, error) {
	if len(grid) < 2 {
		return nil, ErrEmptyInput
	}

	rows := grid[1:]
	out := make([]InputRecord, 0, len(rows))
	for i, row := range rows {
		index := i + 1
		name := FallbackName(index)
		if len(row) > 0 && !row[0].Falsy() {
			name = row[0].Text
		}
		out = append(out, InputRecord{
			Index:   index,
			Name:    name,
			Payload: joinRow(row),
		})
	}
	return out, nil
}

func joinRow(row Row) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = c.Text
	}
	return strings.Join(parts, PayloadSeparator)
}
