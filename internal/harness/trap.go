package harness

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// Trapper captures what is written to os.Stdout or os.Stderr while it is
// held. Messages is filled in by Release.
type Trapper struct {
	Messages []string

	target   **os.File
	saved    *os.File
	r, w     *os.File
	buf      bytes.Buffer
	done     chan struct{}
	released bool
}

// TrapStdout redirects os.Stdout until Release.
func TrapStdout() (*Trapper, error) { return trap(&os.Stdout) }

// TrapStderr redirects os.Stderr until Release.
func TrapStderr() (*Trapper, error) { return trap(&os.Stderr) }

func trap(target **os.File) (*Trapper, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	tr := &Trapper{target: target, saved: *target, r: r, w: w, done: make(chan struct{})}
	go func() {
		io.Copy(&tr.buf, r) //nolint:errcheck
		close(tr.done)
	}()
	*target = w
	return tr, nil
}

// Release restores the stream and collects the captured output into
// Messages, one entry per line with trailing whitespace removed. Calls after
// the first do nothing.
func (tr *Trapper) Release() error {
	if tr.released {
		return nil
	}
	tr.released = true
	*tr.target = tr.saved
	err := tr.w.Close()
	<-tr.done
	tr.r.Close()
	tr.Messages = splitMessages(tr.buf.String())
	return err
}

func splitMessages(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return []string{}
	}
	lines := strings.Split(out, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return lines
}

// CaptureStdout runs fn with os.Stdout trapped and returns the lines it
// wrote. The stream is restored even when fn panics.
func CaptureStdout(fn func()) ([]string, error) { return capture(&os.Stdout, fn) }

// CaptureStderr is CaptureStdout for os.Stderr.
func CaptureStderr(fn func()) ([]string, error) { return capture(&os.Stderr, fn) }

func capture(target **os.File, fn func()) (lines []string, err error) {
	tr, err := trap(target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := tr.Release(); err == nil {
			err = rerr
		}
		lines = tr.Messages
	}()
	fn()
	return nil, nil
}

// TrapStdout traps os.Stdout for the rest of the test. The stream is
// restored on teardown if the test has not released it.
func (c *Case) TrapStdout() (*Trapper, error) { return c.trap(TrapStdout) }

// TrapStderr is TrapStdout for os.Stderr.
func (c *Case) TrapStderr() (*Trapper, error) { return c.trap(TrapStderr) }

func (c *Case) trap(open func() (*Trapper, error)) (*Trapper, error) {
	tr, err := open()
	if err != nil {
		return nil, err
	}
	c.AddCleanup(tr.Release)
	return tr, nil
}
