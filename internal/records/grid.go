package records

// CellKind is the value type reported by the spreadsheet parser.
type CellKind int

// Cell kinds.
const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
)

// Cell is one raw grid value. Text is what the payload shows for the cell;
// Value holds the numeric value of number cells and 1/0 for booleans.
type Cell struct {
	Text  string
	Kind  CellKind
	Value float64
}

// StringCell returns a text cell, or an empty cell for "".
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Text: s, Kind: CellString}
}

// Falsy reports whether the cell counts as absent when picking a record name:
// empty text, numeric zero and boolean false.
func (c Cell) Falsy() bool {
	switch c.Kind {
	case CellEmpty:
		return true
	case CellNumber, CellBool:
		return c.Value == 0
	default:
		return c.Text == ""
	}
}

// Row is one sheet row. Trailing empty cells are never stored.
type Row []Cell

// Grid is the 2-D cell matrix of the first sheet, row 0 first.
type Grid []Row

// trimRow drops trailing empty cells so every parser yields the same row shape.
func trimRow(r Row) Row {
	end := len(r)
	for end > 0 && r[end-1].Kind == CellEmpty {
		end--
	}
	return r[:end]
}
