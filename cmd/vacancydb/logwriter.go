package main

import (
	"bytes"
	"io"
	"sync"
)

// heldWriter buffers writes until Release, then writes through to out.
// Loggers built on it stay usable after the spinner is gone.
type heldWriter struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	out      io.Writer
	released bool
}

func newHeldWriter(out io.Writer) *heldWriter {
	return &heldWriter{out: out}
}

func (w *heldWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return w.out.Write(p)
	}
	return w.buf.Write(p)
}

// Release flushes everything held so far and switches to pass-through.
func (w *heldWriter) Release() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.released {
		return nil
	}
	w.released = true
	_, err := w.buf.WriteTo(w.out)
	return err
}
