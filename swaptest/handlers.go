package swaptest

import "github.com/iov-one/lockswap"

// Handler is a mock implementation of the lockswap.Handler interface that
// returns configured results and counts calls.
type Handler struct {
	checkCall   int
	CheckResult lockswap.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult lockswap.DeliverResult
	DeliverErr    error
}

var _ lockswap.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	h.checkCall++
	if h.CheckErr != nil {
		return nil, h.CheckErr
	}
	res := h.CheckResult
	return &res, nil
}

func (h *Handler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes Key and Value to the store and then returns Err.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ lockswap.Handler = WriteHandler{}

func (h WriteHandler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &lockswap.CheckResult{}, nil
}

func (h WriteHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return &lockswap.DeliverResult{}, nil
}

// PanicHandler panics with Msg on every call.
type PanicHandler struct {
	Msg string
}

func (h PanicHandler) Check(lockswap.Context, lockswap.KVStore, lockswap.Tx) (*lockswap.CheckResult, error) {
	panic(h.Msg)
}

func (h PanicHandler) Deliver(lockswap.Context, lockswap.KVStore, lockswap.Tx) (*lockswap.DeliverResult, error) {
	panic(h.Msg)
}

// Decorator is a mock implementation of the lockswap.Decorator interface.
//
// Set CheckErr or DeliverErr to force error response for corresponding
// method. If error attributes are not set then wrapped handler method is
// called and its result returned.
type Decorator struct {
	checkCall int
	CheckErr  error

	deliverCall int
	DeliverErr  error
}

var _ lockswap.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Checker) (*lockswap.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx, next lockswap.Deliverer) (*lockswap.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CallCount() int {
	return d.checkCall + d.deliverCall
}

// Decorate returns a handler that calls the decorator wrapping h.
func Decorate(h lockswap.Handler, d lockswap.Decorator) lockswap.Handler {
	return &decoratedHandler{hn: h, dc: d}
}

type decoratedHandler struct {
	hn lockswap.Handler
	dc lockswap.Decorator
}

func (d *decoratedHandler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	return d.dc.Check(ctx, db, tx, d.hn)
}

func (d *decoratedHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	return d.dc.Deliver(ctx, db, tx, d.hn)
}
