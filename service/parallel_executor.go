package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/ludo-technologies/crev/domain"
	"github.com/ludo-technologies/crev/internal/config"
	"golang.org/x/sync/errgroup"
)

// Fallbacks when the performance configuration carries no usable values
const (
	FallbackMaxConcurrency = 4
	FallbackTimeout        = 5 * time.Minute
)

// TaskError is one task's failure, tagged with the task name so an
// aggregated report stays attributable.
type TaskError struct {
	TaskName string
	Err      error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("[%s] %v", e.TaskName, e.Err)
}

func (e TaskError) Unwrap() error { return e.Err }

// AggregatedError reports every task that failed in one Execute call,
// so callers see all failures at once instead of only the first.
type AggregatedError struct {
	Errors []TaskError
}

func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d tasks failed:\n", len(e.Errors))
	for i, te := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, te.Error())
	}
	return sb.String()
}

// Unwrap exposes the first failure to errors.Is and errors.As
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0].Err
}

// ParallelExecutorImpl implements domain.ParallelExecutor for the file
// fan-out and the provider health probes. It bounds how many tasks run
// at once and cuts the whole batch off at a deadline; one failed task
// never stops its siblings.
type ParallelExecutorImpl struct {
	mu             sync.RWMutex
	maxConcurrency int
	timeout        time.Duration
}

// NewParallelExecutor creates an executor sized to the host CPU count
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: runtime.NumCPU(),
		timeout:        FallbackTimeout,
	}
}

// NewParallelExecutorFromConfig sizes the executor from the performance
// section of the configuration file
func NewParallelExecutorFromConfig(cfg *config.PerformanceConfig) *ParallelExecutorImpl {
	e := &ParallelExecutorImpl{
		maxConcurrency: cfg.MaxGoroutines,
		timeout:        time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if e.maxConcurrency <= 0 {
		e.maxConcurrency = FallbackMaxConcurrency
	}
	if e.timeout <= 0 {
		e.timeout = FallbackTimeout
	}
	return e
}

// SetMaxConcurrency overrides the concurrency bound. Non-positive
// values are ignored.
func (e *ParallelExecutorImpl) SetMaxConcurrency(n int) {
	if n <= 0 {
		return
	}
	e.mu.Lock()
	e.maxConcurrency = n
	e.mu.Unlock()
}

// SetTimeout overrides the batch deadline. Non-positive values are
// ignored.
func (e *ParallelExecutorImpl) SetTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Execute runs the enabled tasks under the concurrency bound and the
// batch deadline. Failures are collected, not propagated mid-flight;
// when any task failed the returned error is an *AggregatedError
// naming each one.
func (e *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	e.mu.RLock()
	limit := e.maxConcurrency
	timeout := e.timeout
	e.mu.RUnlock()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.SetLimit(limit)

	var failedMu sync.Mutex
	var failed []TaskError

	for _, t := range tasks {
		if !t.IsEnabled() {
			continue
		}
		g.Go(func() error {
			if gCtx.Err() != nil {
				return gCtx.Err()
			}
			if _, err := t.Execute(gCtx); err != nil {
				failedMu.Lock()
				failed = append(failed, TaskError{TaskName: t.Name(), Err: err})
				failedMu.Unlock()
			}
			// Failures are data here; returning one would cancel the
			// remaining tasks.
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) > 0 {
		return &AggregatedError{Errors: failed}
	}
	return nil
}
