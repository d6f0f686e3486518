package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// NonRetriableError signals that re-running the pipeline cannot succeed,
// typically because a referenced entity vanished between enqueue and
// processing. The queue distinguishes it from generic failures and drops the
// message instead of redelivering.
type NonRetriableError struct {
	Message string
	Err     error
}

func (e *NonRetriableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *NonRetriableError) Unwrap() error {
	return e.Err
}

// NonRetriable marks the error for the queue's ack-and-drop path.
func (e *NonRetriableError) NonRetriable() bool {
	return true
}

// NewNonRetriable wraps err as a terminal pipeline failure.
func NewNonRetriable(message string, err error) *NonRetriableError {
	return &NonRetriableError{Message: message, Err: err}
}

// Result is the pipeline's success/failure signal. The pipeline never lets a
// step's error escape; the caller's retry policy decides what to do with a
// failed run, using NonRetriable to tell "give up" from "retry from the top".
type Result struct {
	Success      bool
	NonRetriable bool
	Err          error
}

// runner executes named steps sequentially, recording the current step for
// observability only. Every step must tolerate being re-run after a prior
// partial completion; no partial-step resumption is attempted.
type runner struct {
	pipeline string
	logger   *zap.Logger
}

func (r *runner) step(name string, fn func() error) error {
	r.logger.Debug("pipeline step",
		zap.String("pipeline", r.pipeline),
		zap.String("step", name))
	if err := fn(); err != nil {
		return fmt.Errorf("step %s: %w", name, err)
	}
	return nil
}

func (r *runner) fail(err error) Result {
	var nr *NonRetriableError
	nonRetriable := errors.As(err, &nr)
	r.logger.Error("pipeline run failed",
		zap.String("pipeline", r.pipeline),
		zap.Bool("non_retriable", nonRetriable),
		zap.Error(err))
	return Result{Success: false, NonRetriable: nonRetriable, Err: err}
}
