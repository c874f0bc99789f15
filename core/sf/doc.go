// Package sf deduplicates concurrent calls that share a key.
//
// While a call for a key is in flight, later callers with the same key wait
// for it and receive its result instead of running their own:
//
//	g := sf.New[*actor.Addr[*Session]]()
//	addr, err := g.Do("session:42", func() (*actor.Addr[*Session], error) {
//	    return spawnSession("42"), nil
//	})
//
// The registry uses it so a named actor is spawned once even when many
// goroutines ask for it at the same moment.
package sf
