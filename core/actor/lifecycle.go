package actor

// State is the lifecycle position of one actor instance. Instances move
// strictly forward; a failure jumps straight to StateStopping.
type State int32

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Starter is implemented by actors that need to run code before their first
// message. A returned error fails the instance.
type Starter[A any] interface {
	OnStart(c *Context[A]) error
}

// Stopper is implemented by actors that want to observe the transition to
// StateStopping. Returning true keeps the actor running, but only when the
// stop was requested through Context.Stop.
type Stopper[A any] interface {
	OnStop(c *Context[A]) bool
}

// Finalizer is implemented by actors that release resources once the
// mailbox is closed.
type Finalizer[A any] interface {
	OnStopped(c *Context[A])
}
