// SPDX-License-Identifier: AGPL-3.0-or-later

// Package runner executes report tasks concurrently and persists their
// results.
package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/bartekus/projreport/internal/logging"
)

// Runner dispatches tasks against shared dependencies.
type Runner struct {
	deps *Deps
}

// NewRunner returns a Runner. A nil logger in deps is replaced by a
// discarding one.
func NewRunner(deps *Deps) *Runner {
	if deps == nil {
		deps = &Deps{}
	}
	deps.Logger = logging.OrDiscard(deps.Logger)
	return &Runner{deps: deps}
}

// RunConcurrent starts one goroutine per task and returns only after every
// one of them has finished. Results are in task order. A task that panics is
// recorded as failed; it never takes down its siblings.
func (r *Runner) RunConcurrent(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = r.runOne(ctx, task)
		}()
	}
	wg.Wait()

	return results
}

func (r *Runner) runOne(ctx context.Context, task Task) (res Result) {
	id := task.ID()
	log := r.deps.Logger.With("task", id)
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			log.Error("task panicked", "panic", p, "stack", string(debug.Stack()))
			res = Result{Status: StatusFail, Note: fmt.Sprintf("panic: %v", p)}
		}
		res.Task = id
		res.Duration = time.Since(start)
		if res.Status == "" {
			res.Status = StatusPass
		}
		if r.deps.Metrics != nil {
			r.deps.Metrics.ObserveTask(id, string(res.Status), res.Duration)
		}
		log.Info("task finished", "status", res.Status, "duration", res.Duration.Round(time.Millisecond))
	}()

	log.Info("task started")
	return task.Run(ctx, r.deps)
}
