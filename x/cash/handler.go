package cash

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
	"github.com/iov-one/lockswap/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r lockswap.Registry, auth x.Authenticator, control Controller) {
	r.Handle(pathSendMsg, NewSendHandler(auth, control))
	r.Handle(pathCloseMsg, NewCloseHandler(auth, control))
	r.Handle(pathUpdateConfigurationMsg, NewConfigHandler(auth))
}

// RegisterQuery will register the holdings bucket as "/holdings"
func RegisterQuery(qr lockswap.QueryRouter) {
	NewHoldingBucket().Register("holdings", qr)
	NewReserveBucket().Register("reserves", qr)
}

// SendHandler will handle sending tokens
type SendHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ lockswap.Handler = SendHandler{}

// NewSendHandler creates a handler for SendMsg
func NewSendHandler(auth x.Authenticator, control Controller) SendHandler {
	return SendHandler{
		auth:    auth,
		control: control,
	}
}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h SendHandler) Check(ctx lockswap.Context, store lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if _, err := h.validate(ctx, store, tx); err != nil {
		return nil, err
	}
	return lockswap.NewCheck(sendTxCost, ""), nil
}

// Deliver moves the tokens from source to destination if
// all preconditions are met. A missing destination holding is opened and
// paid for by the sender.
func (h SendHandler) Deliver(ctx lockswap.Context, store lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	msg, err := h.validate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.control.Ensure(store, msg.Destination, msg.Asset, msg.Source); err != nil {
		return nil, errors.Wrap(err, "destination holding")
	}
	if err := h.control.Transfer(store, msg.Source, msg.Destination, msg.Asset, msg.Amount); err != nil {
		return nil, err
	}
	return &lockswap.DeliverResult{}, nil
}

func (h SendHandler) validate(ctx lockswap.Context, store lockswap.ReadOnlyKVStore, tx lockswap.Tx) (*SendMsg, error) {
	var msg SendMsg
	if err := lockswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Source) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source signature missing")
	}
	// Nobody can sign for a derived address, so a holding opened for one
	// could never be closed.
	if !lockswap.OnCurve(msg.Destination) {
		switch _, err := h.control.Balance(store, msg.Destination, msg.Asset); {
		case errors.ErrNotFound.Is(err):
			return nil, errors.Wrapf(errors.ErrInvalidInput, "destination %s cannot open a holding", msg.Destination)
		case err != nil:
			return nil, err
		}
	}
	return &msg, nil
}

// CloseHandler deletes empty holdings and refunds their reserve to the
// owner.
type CloseHandler struct {
	auth    x.Authenticator
	control Controller
}

var _ lockswap.Handler = CloseHandler{}

// NewCloseHandler creates a handler for CloseMsg
func NewCloseHandler(auth x.Authenticator, control Controller) CloseHandler {
	return CloseHandler{
		auth:    auth,
		control: control,
	}
}

func (h CloseHandler) Check(ctx lockswap.Context, store lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &lockswap.CheckResult{}, nil
}

func (h CloseHandler) Deliver(ctx lockswap.Context, store lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.control.Close(store, msg.Owner, msg.Asset, msg.Owner); err != nil {
		return nil, err
	}
	return &lockswap.DeliverResult{}, nil
}

func (h CloseHandler) validate(ctx lockswap.Context, tx lockswap.Tx) (*CloseMsg, error) {
	var msg CloseMsg
	if err := lockswap.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature missing")
	}
	return &msg, nil
}

// NewConfigHandler returns a handler that updates the cash configuration.
func NewConfigHandler(auth x.Authenticator) lockswap.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(packageName, &conf, auth)
}
