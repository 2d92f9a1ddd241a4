package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"
)

// Parser turns raw spreadsheet bytes into the grid of the first sheet.
type Parser interface {
	Parse(data []byte) (Grid, error)
}

// ParserFunc adapts a function to Parser.
type ParserFunc func(data []byte) (Grid, error)

// Parse calls f(data).
func (f ParserFunc) Parse(data []byte) (Grid, error) { return f(data) }

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
)

// ParserFor picks a parser from the file name, falling back to content
// sniffing when the extension is missing or unknown.
func ParserFor(name string, data []byte) (Parser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return CSVParser{}, nil
	case ".xlsx", ".xlsm":
		return XLSXParser{}, nil
	case ".xls":
		if !bytes.HasPrefix(data, zipMagic) {
			return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", ErrUnsupportedFormat)
		}
		return XLSXParser{}, nil
	}

	switch {
	case bytes.HasPrefix(data, zipMagic):
		return XLSXParser{}, nil
	case bytes.HasPrefix(data, oleMagic):
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", ErrUnsupportedFormat)
	default:
		return CSVParser{}, nil
	}
}

// CSVParser reads comma-separated text. Rows may have differing field counts.
type CSVParser struct {
	// Comma overrides the field separator; zero means ','.
	Comma rune
}

// Parse implements Parser.
func (p CSVParser) Parse(data []byte) (Grid, error) {
	src := bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(src))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if p.Comma != 0 {
		r.Comma = p.Comma
	}

	// encoding/csv skips empty lines. nextLine is the line a record would
	// start on if none were skipped; the gap before each record is restored
	// as blank rows so row positions match the file.
	var grid Grid
	nextLine := 1
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}

		line, _ := r.FieldPos(0)
		if len(grid) > 0 {
			for ; nextLine < line; nextLine++ {
				grid = append(grid, Row{})
			}
		}
		nextLine = linesConsumed(r, src) + 1

		row := make(Row, len(fields))
		for i, f := range fields {
			row[i] = csvCell(f)
		}
		grid = append(grid, trimRow(row))
	}
	return grid, nil
}

// csvCell types a CSV field the way spreadsheet software does on import:
// TRUE/FALSE become booleans and finite numbers become number cells. Text is
// kept verbatim so "007" still encodes as written.
func csvCell(s string) Cell {
	c := StringCell(s)
	if c.Kind == CellEmpty {
		return c
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRUE":
		return Cell{Text: s, Kind: CellBool, Value: 1}
	case "FALSE":
		return Cell{Text: s, Kind: CellBool}
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
		return Cell{Text: s, Kind: CellNumber, Value: n}
	}
	return c
}

// linesConsumed counts the line breaks the reader has read past.
func linesConsumed(r *csv.Reader, src []byte) int {
	off := int(r.InputOffset())
	if off > len(src) {
		off = len(src)
	}
	n := bytes.Count(src[:off], []byte{'\n'})
	if off == len(src) && off > 0 && src[off-1] != '\n' {
		n++
	}
	return n
}

// XLSXParser reads the first worksheet of an Office Open XML workbook.
type XLSXParser struct{}

// Parse implements Parser. The grid starts at the first row and column that
// hold a value; gaps inside that range become empty cells.
func (XLSXParser) Parse(data []byte) (Grid, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}

	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, nil
	}
	sheet := sheets[0]

	type located struct {
		row, col int
		cell     Cell
	}

	var cells []located
	minRow, minCol := -1, -1
	maxRow := -1
	for _, row := range sheet.Rows() {
		rowIdx := int(row.RowNumber()) - 1
		for _, c := range row.Cells() {
			colName, colErr := c.Column()
			if colErr != nil {
				continue
			}
			v := convertCell(c)
			if v.Kind == CellEmpty {
				continue
			}
			colIdx := int(reference.ColumnToIndex(colName))
			cells = append(cells, located{row: rowIdx, col: colIdx, cell: v})

			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if rowIdx > maxRow {
				maxRow = rowIdx
			}
		}
	}

	if len(cells) == 0 {
		return nil, nil
	}

	grid := make(Grid, maxRow-minRow+1)
	for _, lc := range cells {
		r := lc.row - minRow
		c := lc.col - minCol
		if c >= len(grid[r]) {
			grown := make(Row, c+1)
			copy(grown, grid[r])
			grid[r] = grown
		}
		grid[r][c] = lc.cell
	}
	return grid, nil
}

// convertCell maps a unioffice cell to a grid cell. Numbers and booleans use
// the stored value, so number formats and date styles do not leak into the
// payload; everything else uses the display text.
func convertCell(c spreadsheet.Cell) Cell {
	if c.IsEmpty() {
		return Cell{}
	}
	text := c.GetFormattedValue()

	switch {
	case c.IsBool():
		b, err := c.GetValueAsBool()
		if err != nil {
			return StringCell(text)
		}
		v := 0.0
		if b {
			v = 1
		}
		return Cell{Text: strconv.FormatBool(b), Kind: CellBool, Value: v}
	case c.IsNumber():
		n, err := c.GetValueAsNumber()
		if err != nil {
			return StringCell(text)
		}
		return Cell{Text: formatNumber(n), Kind: CellNumber, Value: n}
	default:
		return StringCell(text)
	}
}

// formatNumber prints n in its shortest exact decimal form, switching to an
// exponent only for magnitudes of 1e21 and above.
func formatNumber(n float64) string {
	if a := math.Abs(n); a >= 1e21 {
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
