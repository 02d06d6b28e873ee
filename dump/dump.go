// Package dump writes captured icon frames to disk for debugging. Every
// frame is stored as a PNG for viewing and as a TIFF copy that keeps the
// exact pixel values.
package dump

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/tiff"
)

// ErrInvalidKey is returned for keys that would leave the dump directory.
var ErrInvalidKey = errors.New("dump: invalid key")

// Format selects which files a Dir writes.
type Format uint8

const (
	// PNG writes <key>.png.
	PNG Format = 1 << iota
	// TIFF writes <key>.tiff, deflate compressed.
	TIFF

	// All writes both files.
	All = PNG | TIFF
)

// Dir writes frames below a root directory. Item keys are category paths
// and map onto subdirectories. Dir implements iconstage.Dumper and is safe
// for concurrent use.
type Dir struct {
	root   string
	format Format

	mu      sync.Mutex
	written int
}

// New returns a Dir writing both formats below root.
func New(root string) *Dir {
	return NewFormat(root, All)
}

// NewFormat returns a Dir writing the given formats below root.
func NewFormat(root string, format Format) *Dir {
	if format == 0 {
		format = All
	}
	return &Dir{root: root, format: format}
}

// Root returns the dump directory.
func (d *Dir) Root() string {
	return d.root
}

// Written returns how many frames were dumped.
func (d *Dir) Written() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.written
}

// Path returns the file path for key without extension.
func (d *Dir) Path(key string) (string, error) {
	rel := filepath.FromSlash(strings.Trim(key, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.root, rel), nil
}

// Dump implements iconstage.Dumper.
func (d *Dir) Dump(key string, img image.Image) error {
	base, err := d.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o750); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	if d.format&PNG != 0 {
		if err := writeFile(base+".png", func(w io.Writer) error { return png.Encode(w, img) }); err != nil {
			return err
		}
	}
	if d.format&TIFF != 0 {
		opts := &tiff.Options{Compression: tiff.Deflate}
		if err := writeFile(base+".tiff", func(w io.Writer) error { return tiff.Encode(w, img, opts) }); err != nil {
			return err
		}
	}
	d.mu.Lock()
	d.written++
	d.mu.Unlock()
	return nil
}

func writeFile(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path) //nolint:gosec // path is confined to the dump root
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("dump: %w", cerr)
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("dump: encode %s: %w", filepath.Base(path), err)
	}
	return nil
}
