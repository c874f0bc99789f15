// Package exec provides the executors that run actor message loops and other
// background work of the runtime.
package exec

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codewandler/actr-go/core/metrics"
)

// Executor runs units of work to completion. Every function passed to Go is
// eventually run exactly once.
type Executor interface {
	Go(f func())
	// Wait blocks until all submitted work has completed.
	Wait()
}

// Metrics observes executor activity.
type Metrics interface {
	Inflight(count int)
	TaskDuration() metrics.Timer
	TaskCompleted(success bool)
}

type nopMetrics struct{}

func (nopMetrics) Inflight(int)                {}
func (nopMetrics) TaskDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) TaskCompleted(bool)          {}

// NopMetrics returns Metrics that discard everything.
func NopMetrics() Metrics { return nopMetrics{} }

type Options struct {
	Logger  *slog.Logger
	Metrics Metrics
}

type executor struct {
	log      *slog.Logger
	metrics  Metrics
	sem      chan struct{}
	inflight atomic.Int32
	wg       sync.WaitGroup
}

// Goroutines returns an executor that starts one goroutine per task.
func Goroutines() Executor {
	return New(0, Options{})
}

// New creates an executor running at most max tasks at once. Tasks beyond
// the limit wait for a free slot. If max <= 0, concurrency is unlimited.
//
// An actor's message loop occupies its slot for the actor's whole lifetime,
// so a bounded executor also bounds the number of live actors using it.
func New(max int, opts Options) Executor {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics()
	}
	var sem chan struct{}
	if max > 0 {
		sem = make(chan struct{}, max)
	}
	return &executor{log: opts.Logger, metrics: opts.Metrics, sem: sem}
}

func (e *executor) Go(f func()) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if e.sem != nil {
			e.sem <- struct{}{}
			defer func() { <-e.sem }()
		}

		e.metrics.Inflight(int(e.inflight.Add(1)))
		defer func() {
			e.metrics.Inflight(int(e.inflight.Add(-1)))
		}()
		e.run(f)
	}()
}

func (e *executor) run(f func()) {
	defer e.metrics.TaskDuration().ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			e.metrics.TaskCompleted(false)
			// log the panic but don't re-panic
			e.log.Error("task panicked", slog.Any("recovered", r))
		}
	}()

	f()
	e.metrics.TaskCompleted(true)
}

func (e *executor) Wait() {
	e.wg.Wait()
}
