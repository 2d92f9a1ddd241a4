package pipeline

import (
	"bytes"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Source is the user-selected input file.
type Source interface {
	// Name is used for format detection and logging.
	Name() string
	Open() (io.ReadCloser, error)
}

type fileSource string

// FileSource reads the input from a path on disk.
func FileSource(path string) Source { return fileSource(path) }

func (f fileSource) Name() string { return filepath.Base(string(f)) }

func (f fileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

type bytesSource struct {
	name string
	data []byte
}

// BytesSource serves an input already held in memory.
func BytesSource(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (b bytesSource) Name() string { return b.name }

func (b bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

type multipartSource struct {
	fh *multipart.FileHeader
}

// MultipartSource adapts an uploaded form file.
func MultipartSource(fh *multipart.FileHeader) Source {
	return multipartSource{fh: fh}
}

func (m multipartSource) Name() string { return m.fh.Filename }

func (m multipartSource) Open() (io.ReadCloser, error) { return m.fh.Open() }
