package actor

import "github.com/codewandler/actr-go/core/metrics"

// Metrics observes the runtime. All methods must be safe for concurrent use.
type Metrics interface {
	// Message handling
	MessageDuration(msgType string) metrics.Timer
	MessageProcessed(msgType string, success bool)
	MessagePanic(msgType string)
	MessageDropped(actorID string)

	// Mailbox
	MailboxDepth(actorID string, depth int)

	// Lifecycle
	ActorStarted(actorID string)
	ActorStopped(actorID string, failed bool)
	ActorRestarted(actorID string)
}

type nopMetrics struct{}

func (nopMetrics) MessageDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) MessageProcessed(string, bool)        {}
func (nopMetrics) MessagePanic(string)                  {}
func (nopMetrics) MessageDropped(string)                {}

func (nopMetrics) MailboxDepth(string, int) {}

func (nopMetrics) ActorStarted(string)       {}
func (nopMetrics) ActorStopped(string, bool) {}
func (nopMetrics) ActorRestarted(string)     {}

// NopMetrics returns Metrics that discard everything.
func NopMetrics() Metrics { return nopMetrics{} }
