package actor

import "github.com/codewandler/actr-go/core/reflector"

// Message is a request an actor of type A can handle, producing an R. The
// message type carries its own handler, so the set of messages an actor
// accepts is checked by the compiler:
//
//	type Inc struct{ By int }
//
//	func (m Inc) Handle(c *Counter, _ *actor.Context[*Counter]) (int, error) {
//	    c.n += m.By
//	    return c.n, nil
//	}
//
// A returned error is delivered to the sender and does not stop the actor.
// A panic does.
type Message[A any, R any] interface {
	Handle(act A, c *Context[A]) (R, error)
}

// Func adapts a closure into a Message.
type Func[A any, R any] func(act A, c *Context[A]) (R, error)

func (f Func[A, R]) Handle(act A, c *Context[A]) (R, error) { return f(act, c) }

// Typed lets a message choose its name in logs and metrics.
type Typed interface{ MsgType() string }

func msgTypeOf(x any) string {
	if mt, ok := x.(Typed); ok {
		return mt.MsgType()
	}
	return reflector.NameOf(x)
}
