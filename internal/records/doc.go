// Package records turns an uploaded spreadsheet into the ordered list of
// name/payload pairs that a bulk run renders.
//
// Parsing produces a Grid of raw cells from the first sheet of a CSV or XLSX
// file. Resolve then drops the header row and reduces every remaining row to
// an InputRecord:
//   - Name is the first cell, or "Record-{k}" (k = 1-based data-row position)
//     when the first cell is empty, numeric zero or boolean false
//   - Payload is every cell of the row joined with ", "
//
// No row is ever dropped, and payload length is not checked against QR
// capacity; oversized payloads fail later at render time.
package records
