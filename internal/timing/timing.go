// Package timing runs a script repeatedly and reports how long each run
// took.
package timing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// Report holds the durations of a timed run.
type Report struct {
	File  string          `json:"file"`
	Loops []time.Duration `json:"loops"`
	Total time.Duration   `json:"total"`
}

// Mean returns the average loop duration.
func (r *Report) Mean() time.Duration {
	if len(r.Loops) == 0 {
		return 0
	}
	return r.Total / time.Duration(len(r.Loops))
}

// Timer executes files. Interpreter, when set, is invoked with the file as
// its first argument; otherwise the file is executed directly.
type Timer struct {
	Interpreter string
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (t *Timer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Timer) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return t.Logger
}

// Run executes file loops times, stopping at the first failing run. A
// loops value below 1 means 1.
func (t *Timer) Run(ctx context.Context, file string, loops int) (*Report, error) {
	if loops < 1 {
		loops = 1
	}
	r := &Report{File: file}
	for i := 0; i < loops; i++ {
		cmd := t.command(ctx, file)
		start := t.now()
		err := cmd.Run()
		elapsed := t.now().Sub(start)
		if err != nil {
			return r, fmt.Errorf("loop %d of %s: %w", i+1, file, err)
		}
		r.Loops = append(r.Loops, elapsed)
		r.Total += elapsed
		t.logger().Debug("timed run", "file", file, "loop", i+1, "elapsed", elapsed)
	}
	return r, nil
}

func (t *Timer) command(ctx context.Context, file string) *exec.Cmd {
	var cmd *exec.Cmd
	if t.Interpreter != "" {
		cmd = exec.CommandContext(ctx, t.Interpreter, file)
	} else {
		cmd = exec.CommandContext(ctx, file)
	}
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr
	return cmd
}

// Run times file with a default Timer.
func Run(ctx context.Context, file string, loops int) (*Report, error) {
	return (&Timer{}).Run(ctx, file, loops)
}

// WriteText prints one line per loop and a total.
func (r *Report) WriteText(w io.Writer) error {
	for i, d := range r.Loops {
		if _, err := fmt.Fprintf(w, "loop %d: %s\n", i+1, d); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "total: %s (%d loops, mean %s)\n", r.Total, len(r.Loops), r.Mean())
	return err
}
