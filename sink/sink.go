// Package sink provides the destinations that handlers write rendered lines
// to.
//
// A [Sink] accepts one line of text at a time and is flushed after every
// record. [Writer] adapts any [io.Writer] and serializes writes with a mutex
// so lines from concurrent loggers never interleave. [Stdout] and [Stderr]
// are console sinks and [Create] opens a truncating file sink; [CheckPath]
// vets a file sink path without touching it. [Publisher] is an [EntrySink]:
// it receives each line with its record metadata and queues it for
// in-process subscribers.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// ErrWrite indicates a failure writing to or flushing a sink.
var ErrWrite = errors.New("sink write")

// Sink receives fully rendered lines.
type Sink interface {
	// WriteLine writes line followed by a newline. A single call is atomic
	// with respect to other calls on the same sink.
	WriteLine(line string) error
	// Flush pushes buffered output to the underlying destination.
	Flush() error
}

// Writer is a [Sink] backed by an [io.Writer]. Safe for concurrent use.
//
// Create instances with [NewWriter].
type Writer struct {
	dst    io.Writer
	buf    *bufio.Writer
	closer io.Closer
	mu     sync.Mutex
}

// NewWriter creates a [Writer] that buffers lines for w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{dst: w, buf: bufio.NewWriter(w)}
}

// WriteLine implements [Sink].
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, err := w.buf.WriteString(line)
	if err == nil {
		err = w.buf.WriteByte('\n')
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

// Flush implements [Sink].
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	err := w.buf.Flush()
	if err != nil {
		return fmt.Errorf("%w: flush: %w", ErrWrite, err)
	}

	return nil
}

// Close flushes w and closes the underlying writer if w owns it.
func (w *Writer) Close() error {
	err := w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closer != nil {
		closeErr := w.closer.Close()
		w.closer = nil

		if closeErr != nil {
			return errors.Join(err, fmt.Errorf("%w: close: %w", ErrWrite, closeErr))
		}
	}

	return err
}

// Unwrap returns the underlying writer.
func (w *Writer) Unwrap() io.Writer { return w.dst }

// Stdout returns a console sink for standard output.
func Stdout() *Writer { return NewWriter(os.Stdout) }

// Stderr returns a console sink for standard error.
func Stderr() *Writer { return NewWriter(os.Stderr) }

// Create opens path in truncate mode and returns a sink owning the file.
// The file is closed by [Writer.Close].
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrWrite, path, err)
	}

	w := NewWriter(f)
	w.closer = f

	return w, nil
}

// CheckPath reports whether [Create] could open path, without creating or
// truncating anything: the parent directory must exist and path must not be
// a directory.
func CheckPath(path string) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: check %s: %w", ErrWrite, path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: check %s: %s is not a directory", ErrWrite, path, dir)
	}

	info, err = os.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("%w: check %s: %w", ErrWrite, path, err)
	case info.IsDir():
		return fmt.Errorf("%w: check %s: is a directory", ErrWrite, path)
	}

	return nil
}

type discard struct{}

func (discard) WriteLine(string) error { return nil }
func (discard) Flush() error           { return nil }

// Discard is a [Sink] that drops every line.
var Discard Sink = discard{}

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w (or the writer underlying a [Writer]) is a
// terminal.
func IsTerminal(w any) bool {
	if sw, ok := w.(*Writer); ok {
		w = sw.dst
	}

	f, ok := w.(fder)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// ColorEnabled reports whether colored output should be written to w: it
// must be a terminal, NO_COLOR must be unset, and color must not have been
// disabled globally through [color.NoColor].
func ColorEnabled(w any) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}

	if color.NoColor {
		return false
	}

	return IsTerminal(w)
}
