// Package archive collects named files in memory and serializes them into a
// single zip archive.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// Writer is the archive-writing capability used by bulk runs.
type Writer interface {
	// Add stores data under name. Adding an existing name replaces its data.
	Add(name string, data []byte)
	// Bytes serializes every entry into one archive.
	Bytes() ([]byte, error)
}

type entry struct {
	name string
	data []byte
}

// Zip is an in-memory zip Writer. Entries keep the position of their first
// Add; a later Add with the same name only replaces the content. The zero
// value is ready to use. Zip is not safe for concurrent use.
type Zip struct {
	entries []entry
	index   map[string]int

	// Modified is stamped on every entry. Zero means the time of Bytes().
	Modified time.Time
}

// NewZip returns an empty zip writer.
func NewZip() *Zip {
	return &Zip{}
}

// Add implements Writer.
func (z *Zip) Add(name string, data []byte) {
	if z.index == nil {
		z.index = make(map[string]int)
	}
	if i, ok := z.index[name]; ok {
		z.entries[i].data = data
		return
	}
	z.index[name] = len(z.entries)
	z.entries = append(z.entries, entry{name: name, data: data})
}

// Len returns the number of distinct entries.
func (z *Zip) Len() int {
	return len(z.entries)
}

// Names returns entry names in archive order.
func (z *Zip) Names() []string {
	names := make([]string, len(z.entries))
	for i, e := range z.entries {
		names[i] = e.name
	}
	return names
}

// Bytes implements Writer.
func (z *Zip) Bytes() ([]byte, error) {
	modified := z.Modified
	if modified.IsZero() {
		modified = time.Now()
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range z.entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("adding %q: %w", e.name, err)
		}
		if _, err = w.Write(e.data); err != nil {
			return nil, fmt.Errorf("writing %q: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}
	return buf.Bytes(), nil
}
