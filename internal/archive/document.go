// Package archive opens OSIS documents that may be stored compressed.
// A version named kjv can live in kjv.xml, kjv.xml.xz or kjv.xml.gz.
package archive

import (
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// Extensions lists the recognized document suffixes in lookup order.
var Extensions = []string{".xml", ".xml.xz", ".xml.gz"}

// Document is an open, decompressing document reader.
type Document struct {
	io.Reader
	file         *os.File
	decompressor io.Closer
}

// Open opens the document at path, decompressing by suffix. Files with an
// unrecognized suffix are read as plain XML.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	d := &Document{Reader: f, file: f}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		d.Reader = xzr
	case ".gz":
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		d.Reader = gzr
		d.decompressor = gzr
	}
	return d, nil
}

// Close closes the decompressor and the underlying file.
func (d *Document) Close() error {
	var first error
	if d.decompressor != nil {
		first = d.decompressor.Close()
	}
	if err := d.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// ReadAll returns the decompressed contents of the document at path.
func ReadAll(path string) ([]byte, error) {
	d, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	data, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

// Find returns the path of the first document for name in dir, trying each
// of Extensions. The error wraps fs.ErrNotExist when none exists.
func Find(dir, name string) (string, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, name+ext)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("stat document: %w", err)
		}
	}
	return "", fmt.Errorf("no document for %q in %s: %w", name, dir, fs.ErrNotExist)
}

// Name strips a recognized document suffix from a file name.
func Name(file string) (string, bool) {
	lower := strings.ToLower(file)
	// Longest suffixes first so kjv.xml.xz is not read as "kjv.xml".
	for i := len(Extensions) - 1; i >= 0; i-- {
		if strings.HasSuffix(lower, Extensions[i]) {
			return file[:len(file)-len(Extensions[i])], true
		}
	}
	return "", false
}
