package escrow

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
	"github.com/iov-one/lockswap/orm"
	"github.com/iov-one/lockswap/x"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	tagEscrow = "escrow"
	tagAction = "escrow.action"
)

// RegisterRoutes will instantiate and register all handlers in this
// package. Lock periods are measured with given clock.
func RegisterRoutes(r lockswap.Registry, auth x.Authenticator, bank cash.Controller, clock lockswap.Clock) {
	bucket := NewBucket()
	r.Handle(pathMakeMsg, MakeHandler{auth: auth, bucket: bucket, bank: bank, clock: clock})
	r.Handle(pathTakeMsg, TakeHandler{auth: auth, bucket: bucket, bank: bank, clock: clock})
	r.Handle(pathRefundMsg, RefundHandler{auth: auth, bucket: bucket, bank: bank})
	r.Handle(pathUpdateConfigurationMsg, NewConfigHandler(auth))
}

// RegisterQuery will register the escrow bucket as "/escrows".
func RegisterQuery(qr lockswap.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// NewConfigHandler returns a handler that updates the escrow
// configuration.
func NewConfigHandler(auth x.Authenticator) lockswap.Handler {
	var conf Configuration
	return gconf.NewUpdateConfigurationHandler(packageName, &conf, auth)
}

// MakeHandler creates an escrow and moves the deposit into its vault.
type MakeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
	clock  lockswap.Clock
}

var _ lockswap.Handler = MakeHandler{}

// Check does all the validation a Deliver would do, without any state
// change.
func (h MakeHandler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return lockswap.NewCheck(makeCost, ""), nil
}

func (h MakeHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	msg, addr, salt, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := h.clock.Height(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "clock")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}

	e := Escrow{
		Seed:           msg.Seed,
		Maker:          msg.Maker,
		AssetA:         msg.AssetA,
		AssetB:         msg.AssetB,
		Receive:        msg.Receive,
		DerivationSalt: uint32(salt),
		StartTime:      now,
		LockPeriod:     msg.LockPeriod,
	}
	if err := h.bucket.Put(db, addr, &e); err != nil {
		return nil, errors.Wrap(err, "store escrow")
	}
	if err := h.bank.Reserve(db, addr, msg.Maker, conf.RecordReserve); err != nil {
		return nil, errors.Wrap(err, "escrow reserve")
	}
	if _, err := h.bank.Open(db, addr, msg.AssetA, msg.Maker); err != nil {
		return nil, errors.Wrap(err, "open vault")
	}
	if err := h.bank.Transfer(db, msg.Maker, addr, msg.AssetA, msg.Deposit); err != nil {
		return nil, errors.Wrap(err, "deposit")
	}

	lockswap.GetLogger(ctx).Info("escrow made",
		"escrow", addr, "maker", msg.Maker, "deposit", msg.Deposit, "receive", msg.Receive, "unlock", e.UnlockTime())
	return &lockswap.DeliverResult{
		Data: addr,
		Tags: escrowTags(addr, "make"),
	}, nil
}

func (h MakeHandler) validate(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*MakeMsg, lockswap.Address, uint8, error) {
	var msg MakeMsg
	if err := lockswap.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Maker) {
		return nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}

	addr, salt, err := RecordAddress(msg.Maker, msg.Seed)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "escrow address")
	}
	switch ok, err := h.bucket.Has(db, addr); {
	case err != nil:
		return nil, nil, 0, err
	case ok:
		return nil, nil, 0, errors.Wrapf(errors.ErrDuplicate, "escrow %s", addr)
	}
	vault, err := vaultAddress(addr, msg.AssetA)
	if err != nil {
		return nil, nil, 0, errors.Wrap(err, "vault address")
	}
	switch _, err := h.bank.Balance(db, addr, msg.AssetA); {
	case err == nil:
		return nil, nil, 0, errors.Wrapf(errors.ErrDuplicate, "vault %s", vault)
	case !errors.ErrNotFound.Is(err):
		return nil, nil, 0, err
	}

	if err := requireFunds(db, h.bank, msg.Maker, msg.AssetA, msg.Deposit); err != nil {
		return nil, nil, 0, errors.Wrap(err, "maker")
	}
	return &msg, addr, salt, nil
}

// TakeHandler settles an unlocked escrow. The taker pays the requested
// amount to the maker and receives the deposit.
type TakeHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
	clock  lockswap.Clock
}

var _ lockswap.Handler = TakeHandler{}

func (h TakeHandler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return lockswap.NewCheck(takeCost, ""), nil
}

func (h TakeHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	msg, addr, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if _, err := h.bank.Ensure(db, e.Maker, e.AssetB, msg.Taker); err != nil {
		return nil, errors.Wrap(err, "maker holding")
	}
	if err := h.bank.Transfer(db, msg.Taker, e.Maker, e.AssetB, e.Receive); err != nil {
		return nil, errors.Wrap(err, "payment")
	}
	if _, err := h.bank.Ensure(db, msg.Taker, e.AssetA, msg.Taker); err != nil {
		return nil, errors.Wrap(err, "taker holding")
	}
	amount, err := destroy(db, h.bucket, h.bank, addr, e, msg.Taker)
	if err != nil {
		return nil, err
	}

	lockswap.GetLogger(ctx).Info("escrow taken",
		"escrow", addr, "maker", e.Maker, "taker", msg.Taker, "deposit", amount, "receive", e.Receive)
	return &lockswap.DeliverResult{
		Data: addr,
		Tags: escrowTags(addr, "take"),
	}, nil
}

func (h TakeHandler) validate(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*TakeMsg, lockswap.Address, *Escrow, error) {
	var msg TakeMsg
	if err := lockswap.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Taker) {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "taker signature missing")
	}
	addr, err := msg.Escrow()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "escrow address")
	}
	e, err := loadEscrow(db, h.bucket, addr)
	if err != nil {
		return nil, nil, nil, err
	}

	now, err := h.clock.Height(ctx)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "clock")
	}
	if e.Locked(now) {
		return nil, nil, nil, errors.Wrapf(ErrEscrowLocked, "unlocks at %d, now %d", e.UnlockTime(), now)
	}

	if err := requireFunds(db, h.bank, msg.Taker, e.AssetB, e.Receive); err != nil {
		return nil, nil, nil, errors.Wrap(err, "taker")
	}
	return &msg, addr, e, nil
}

// RefundHandler cancels an escrow and returns the deposit to the maker.
// It is available at any time.
type RefundHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	bank   cash.Controller
}

var _ lockswap.Handler = RefundHandler{}

func (h RefundHandler) Check(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return lockswap.NewCheck(refundCost, ""), nil
}

func (h RefundHandler) Deliver(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (*lockswap.DeliverResult, error) {
	addr, e, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.bank.Ensure(db, e.Maker, e.AssetA, e.Maker); err != nil {
		return nil, errors.Wrap(err, "maker holding")
	}
	amount, err := destroy(db, h.bucket, h.bank, addr, e, e.Maker)
	if err != nil {
		return nil, err
	}

	lockswap.GetLogger(ctx).Info("escrow refunded",
		"escrow", addr, "maker", e.Maker, "deposit", amount)
	return &lockswap.DeliverResult{
		Data: addr,
		Tags: escrowTags(addr, "refund"),
	}, nil
}

func (h RefundHandler) validate(ctx lockswap.Context, db lockswap.KVStore, tx lockswap.Tx) (lockswap.Address, *Escrow, error) {
	var msg RefundMsg
	if err := lockswap.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	addr, err := msg.Escrow()
	if err != nil {
		return nil, nil, errors.Wrap(err, "escrow address")
	}
	e, err := loadEscrow(db, h.bucket, addr)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, e.Maker) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "maker signature missing")
	}
	return addr, e, nil
}

// requireFunds fails unless owner holds at least amount of asset.
func requireFunds(db lockswap.ReadOnlyKVStore, bank cash.Controller, owner, asset lockswap.Address, amount uint64) error {
	switch balance, err := bank.Balance(db, owner, asset); {
	case errors.ErrNotFound.Is(err):
		return errors.Wrap(errors.ErrInsufficientAmount, "no holding")
	case err != nil:
		return err
	case balance < amount:
		return errors.Wrapf(errors.ErrInsufficientAmount, "have %d, need %d", balance, amount)
	}
	return nil
}

func escrowTags(addr lockswap.Address, action string) []common.KVPair {
	return []common.KVPair{
		{Key: []byte(tagEscrow), Value: []byte(addr.String())},
		{Key: []byte(tagAction), Value: []byte(action)},
	}
}
