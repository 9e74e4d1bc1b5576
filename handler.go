package lockswap

import (
	"bytes"
	"encoding/json"

	"github.com/iov-one/lockswap/errors"
)

// Handler is a core engine that can process a few specific messages.
// Escrow make, take and refund are all handlers.
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	Handle(path string, h Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: %s", key, err)
	}
	return nil
}

// Stream expects an array of json elements and allows to process them
// sequentially.
// This helps when one needs to parse a large json without having any memory
// leaks. Returns ErrEmpty on empty input and ErrIteratorDone after the
// last element was read.
func (o Options) Stream(key string) func(obj interface{}) error {
	msg := o[key]
	dec := json.NewDecoder(bytes.NewReader(msg))
	opened := false
	return func(obj interface{}) error {
		if len(msg) == 0 {
			return errors.ErrEmpty
		}
		if !opened {
			tok, err := dec.Token()
			if err != nil {
				return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: %s", key, err)
			}
			if tok != json.Delim('[') {
				return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: expected an array", key)
			}
			opened = true
		}
		if !dec.More() {
			return errors.ErrIteratorDone
		}
		if err := dec.Decode(obj); err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "genesis %q: %s", key, err)
		}
		return nil
	}
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions at once
type ChainInitializers []Initializer

var _ Initializer = ChainInitializers{}

// FromGenesis passes the options to every initializer in order.
func (c ChainInitializers) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
