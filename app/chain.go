package app

import (
	"reflect"

	"github.com/iov-one/lockswap"
)

// Decorators holds a chain of decorators, not yet resolved by a Handler
type Decorators struct {
	chain []lockswap.Decorator
}

/*
ChainDecorators takes a chain of decorators,
and upon adding a final Handler (often a Router),
returns a Handler that will execute this whole stack.

	app.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	  sigs.NewDecorator(),
	  utils.NewSavepoint().OnDeliver(),
	).WithHandler(
	  router,
	)
*/
func ChainDecorators(chain ...lockswap.Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain
func (d Decorators) Chain(chain ...lockswap.Decorator) Decorators {
	next := make([]lockswap.Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, c := range chain {
		if !isNil(c) {
			next = append(next, c)
		}
	}
	return Decorators{chain: next}
}

func isNil(d lockswap.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler resolves the stack and returns a concrete Handler
// that will pass through the chain of decorators before calling
// the final Handler.
func (d Decorators) WithHandler(h lockswap.Handler) lockswap.Handler {
	// The first decorator of the chain is executed first.
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = step{d: d.chain[i], next: h}
	}
	return h
}

// step captures one step executing a decorator around a
// specific Handler.
type step struct {
	d    lockswap.Decorator
	next lockswap.Handler
}

var _ lockswap.Handler = step{}

func (s step) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s step) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}
