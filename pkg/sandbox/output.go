package sandbox

import (
	"bytes"
	"io"
	"sync"
)

// cappedOutput collects stdout and stderr of one child under a shared byte
// budget. Writes past the budget are discarded but reported as consumed so
// the child never sees a broken pipe.
type cappedOutput struct {
	mu        sync.Mutex
	remaining int
	truncated bool
	stdout    bytes.Buffer
	stderr    bytes.Buffer
}

func newCappedOutput(limit int) *cappedOutput {
	return &cappedOutput{remaining: limit}
}

func (o *cappedOutput) Stdout() io.Writer { return streamWriter{o: o, buf: &o.stdout} }
func (o *cappedOutput) Stderr() io.Writer { return streamWriter{o: o, buf: &o.stderr} }

func (o *cappedOutput) snapshot() (stdout, stderr string, truncated bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stdout.String(), o.stderr.String(), o.truncated
}

type streamWriter struct {
	o   *cappedOutput
	buf *bytes.Buffer
}

func (w streamWriter) Write(p []byte) (int, error) {
	w.o.mu.Lock()
	defer w.o.mu.Unlock()

	n := len(p)
	if n > w.o.remaining {
		p = p[:w.o.remaining]
		w.o.truncated = true
	}
	w.buf.Write(p)
	w.o.remaining -= len(p)
	return n, nil
}
