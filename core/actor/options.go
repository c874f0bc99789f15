package actor

import (
	"context"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/actr-go/core/clock"
	"github.com/codewandler/actr-go/core/exec"
	"github.com/codewandler/actr-go/core/mailbox"
)

// BackpressurePolicy selects what DoSend does when the mailbox is full.
type BackpressurePolicy uint8

const (
	// BackpressureBlock waits for room, like Send.
	BackpressureBlock BackpressurePolicy = iota
	// BackpressureDrop discards the message and reports success.
	BackpressureDrop
)

func (p BackpressurePolicy) String() string {
	switch p {
	case BackpressureBlock:
		return "block"
	case BackpressureDrop:
		return "drop"
	default:
		return "unknown"
	}
}

var defaultExecutor = exec.Goroutines()

type Options struct {
	// ID names the actor in logs and metrics. Generated if empty.
	ID string
	// Capacity of the mailbox; 0 selects mailbox.DefaultCapacity,
	// mailbox.Unbounded disables backpressure.
	Capacity int
	// KeepAlive keeps the actor running after its last Addr was released.
	// It then stops only through Context.Stop, Addr.Stop or a failure.
	KeepAlive    bool
	DoSendPolicy BackpressurePolicy
	// Context bounds the actor's lifetime; its cancellation stops the actor.
	Context  context.Context
	Logger   *slog.Logger
	Executor exec.Executor
	Clock    clock.Clock
	Metrics  Metrics
}

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = "actor-" + gonanoid.Must(8)
	}
	if o.Capacity == 0 {
		o.Capacity = mailbox.DefaultCapacity
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Executor == nil {
		o.Executor = defaultExecutor
	}
	if o.Clock == nil {
		o.Clock = clock.Real()
	}
	if o.Metrics == nil {
		o.Metrics = NopMetrics()
	}
	return o
}
