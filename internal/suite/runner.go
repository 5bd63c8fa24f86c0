package suite

import (
	"io"
	"log/slog"
)

// Runner executes tests sequentially. It installs no timeouts; an outer
// runner may impose its own.
type Runner struct {
	Logger *slog.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{Logger: logger}
}

// Run executes test and returns the collected result.
func (r *Runner) Run(test Test) *Result {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	result := NewResult()
	logger.Debug("running tests", "suite", test.ID())
	test.Run(result)

	for _, o := range result.Outcomes {
		switch o.Status {
		case StatusFail, StatusError, StatusUnexpectedSuccess:
			logger.Info("test finished", "id", o.ID, "status", string(o.Status), "detail", o.Detail)
		default:
			logger.Debug("test finished", "id", o.ID, "status", string(o.Status))
		}
	}

	c := result.Counts()
	logger.Debug("run complete",
		"suite", test.ID(),
		"ran", c.Run,
		"failures", c.Failures,
		"errors", c.Errors,
		"success", result.WasSuccessful(),
	)
	return result
}
