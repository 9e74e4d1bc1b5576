package escrow

import (
	"context"
	"sync"
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/stretchr/testify/require"
)

type registry map[string]lockswap.Handler

func (r registry) Handle(path string, h lockswap.Handler) { r[path] = h }

var meta = &lockswap.Metadata{Schema: 1}

// swapEnv runs escrow messages against an in memory store. Every message
// is delivered in its own cache wrap that is written only on success.
// Deliveries are serialized the same way the application does.
type swapEnv struct {
	t      testing.TB
	db     lockswap.CacheableKVStore
	bank   cash.BaseController
	auth   *swaptest.CtxAuth
	routes registry

	mu  sync.Mutex
	now int64
}

func newSwapEnv(t testing.TB) *swapEnv {
	env := &swapEnv{
		t:      t,
		db:     store.MemStore(),
		bank:   cash.NewController(),
		auth:   &swaptest.CtxAuth{Key: "escrow-test"},
		routes: make(registry),
	}
	clock := lockswap.ClockFunc(func(lockswap.Context) (int64, error) {
		return env.now, nil
	})
	RegisterRoutes(env.routes, env.auth, env.bank, clock)
	return env
}

func (e *swapEnv) mint(owner, asset lockswap.Address, amount uint64) {
	require.NoError(e.t, e.bank.Mint(e.db, owner, asset, amount))
}

func (e *swapEnv) check(signer lockswap.Address, msg lockswap.Msg) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := e.auth.SetSigners(context.Background(), signer)
	_, err := e.routes[msg.Path()].Check(ctx, e.db.CacheWrap(), &swaptest.Tx{Msg: msg})
	return err
}

func (e *swapEnv) deliver(signer lockswap.Address, msg lockswap.Msg) (*lockswap.DeliverResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx := e.auth.SetSigners(context.Background(), signer)
	cache := e.db.CacheWrap()
	res, err := e.routes[msg.Path()].Deliver(ctx, cache, &swaptest.Tx{Msg: msg})
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, err
	}
	return res, nil
}

// makeEscrow creates an escrow and returns its address.
func (e *swapEnv) makeEscrow(msg *MakeMsg) lockswap.Address {
	res, err := e.deliver(msg.Maker, msg)
	require.NoError(e.t, err)
	return res.Data
}

// balance returns the amount held and whether the holding exists.
func (e *swapEnv) balance(owner, asset lockswap.Address) (uint64, bool) {
	amount, err := e.bank.Balance(e.db, owner, asset)
	if errors.ErrNotFound.Is(err) {
		return 0, false
	}
	require.NoError(e.t, err)
	return amount, true
}

func (e *swapEnv) requireBalance(owner, asset lockswap.Address, want uint64) {
	got, ok := e.balance(owner, asset)
	require.True(e.t, ok, "holding of %s missing", owner)
	require.Equal(e.t, want, got, "balance of %s", owner)
}

// requireGone ensures neither the record nor its vault exists.
func (e *swapEnv) requireGone(addr, assetA lockswap.Address) {
	ok, err := NewBucket().Has(e.db, addr)
	require.NoError(e.t, err)
	require.False(e.t, ok, "escrow record must be deleted")
	_, ok = e.balance(addr, assetA)
	require.False(e.t, ok, "vault must be deleted")
}

func (e *swapEnv) escrow(addr lockswap.Address) *Escrow {
	var rec Escrow
	require.NoError(e.t, NewBucket().One(e.db, addr, &rec))
	return &rec
}
