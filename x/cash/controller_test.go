package cash

import (
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/stretchr/testify/require"
)

func TestHoldingAddress(t *testing.T) {
	alice := swaptest.NewAddress()
	bob := swaptest.NewAddress()
	asset := swaptest.NewAsset()

	a1, err := HoldingAddress(alice, asset)
	require.NoError(t, err)
	a2, err := HoldingAddress(alice, asset)
	require.NoError(t, err)
	require.Equal(t, a1, a2)
	require.False(t, lockswap.OnCurve(a1), "holding address must not be signable")

	b, err := HoldingAddress(bob, asset)
	require.NoError(t, err)
	require.NotEqual(t, a1, b)
}

func TestTransfer(t *testing.T) {
	alice := swaptest.NewAddress()
	bob := swaptest.NewAddress()
	gold := swaptest.NewAsset()
	silver := swaptest.NewAsset()

	cases := map[string]struct {
		amount      uint64
		asset       lockswap.Address
		openBob     bool
		wantErr     *errors.Error
		wantAlice   uint64
		wantBob     uint64
		wantBobMiss bool
	}{
		"move part": {
			amount: 30, asset: gold, openBob: true,
			wantAlice: 70, wantBob: 30,
		},
		"move all": {
			amount: 100, asset: gold, openBob: true,
			wantAlice: 0, wantBob: 100,
		},
		"insufficient": {
			amount: 101, asset: gold, openBob: true,
			wantErr: errors.ErrInsufficientAmount, wantAlice: 100,
		},
		"zero amount": {
			amount: 0, asset: gold, openBob: true,
			wantErr: errors.ErrInvalidAmount, wantAlice: 100,
		},
		"destination missing": {
			amount: 10, asset: gold,
			wantErr: errors.ErrNotFound, wantAlice: 100, wantBobMiss: true,
		},
		"source has no holding of the asset": {
			amount: 10, asset: silver, openBob: true,
			wantErr: errors.ErrNotFound, wantAlice: 100, wantBobMiss: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			c := NewController()
			require.NoError(t, c.Mint(db, alice, gold, 100))
			if tc.openBob {
				_, err := c.Open(db, bob, tc.asset, bob)
				require.NoError(t, err)
			}

			cache := db.CacheWrap()
			err := c.Transfer(cache, alice, bob, tc.asset, tc.amount)
			require.True(t, tc.wantErr.Is(err), "want %v, got %+v", tc.wantErr, err)
			if err == nil {
				require.NoError(t, cache.Write())
			} else {
				cache.Discard()
			}

			got, err := c.Balance(db, alice, gold)
			require.NoError(t, err)
			require.Equal(t, tc.wantAlice, got)

			got, err = c.Balance(db, bob, gold)
			if tc.wantBobMiss {
				require.True(t, errors.ErrNotFound.Is(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantBob, got)
		})
	}
}

func TestTransferToSelf(t *testing.T) {
	alice := swaptest.NewAddress()
	gold := swaptest.NewAsset()
	db := store.MemStore()
	c := NewController()

	require.NoError(t, c.Mint(db, alice, gold, 10))
	require.NoError(t, c.Transfer(db, alice, alice, gold, 10))
	got, err := c.Balance(db, alice, gold)
	require.NoError(t, err)
	require.EqualValues(t, 10, got)
}

func TestOpenCloseWithReserve(t *testing.T) {
	alice := swaptest.NewAddress()
	bob := swaptest.NewAddress()
	native := swaptest.NewAsset()
	gold := swaptest.NewAsset()

	db := store.MemStore()
	conf := &Configuration{
		Metadata:       &lockswap.Metadata{Schema: 1},
		NativeAsset:    native,
		AccountReserve: 5,
	}
	require.NoError(t, gconf.Save(db, packageName, conf))

	c := NewController()
	require.NoError(t, c.Mint(db, alice, native, 12))

	// alice pays for a holding of bob
	key, err := c.Open(db, bob, gold, alice)
	require.NoError(t, err)
	want, err := HoldingAddress(bob, gold)
	require.NoError(t, err)
	require.Equal(t, want, key)
	balance, err := c.Balance(db, alice, native)
	require.NoError(t, err)
	require.EqualValues(t, 7, balance)

	_, err = c.Open(db, bob, gold, alice)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	// ensure of an existing holding is free
	_, err = c.Ensure(db, bob, gold, alice)
	require.NoError(t, err)
	balance, err = c.Balance(db, alice, native)
	require.NoError(t, err)
	require.EqualValues(t, 7, balance)

	// reserve for the third holding cannot be paid
	require.NoError(t, c.Mint(db, bob, gold, 1))
	cache := db.CacheWrap()
	_, err = c.Open(cache, alice, gold, bob)
	require.True(t, errors.ErrNotFound.Is(err), "bob has no native holding: %+v", err)
	cache.Discard()

	// non empty holding cannot be closed
	err = c.Close(db, bob, gold, bob)
	require.True(t, errors.ErrInvalidState.Is(err), "%+v", err)

	require.NoError(t, c.Mint(db, alice, gold, 0))
	require.NoError(t, c.Transfer(db, bob, alice, gold, 1))

	// reserve goes to bob, his native holding is created for free
	require.NoError(t, c.Close(db, bob, gold, bob))
	balance, err = c.Balance(db, bob, native)
	require.NoError(t, err)
	require.EqualValues(t, 5, balance)
	_, err = c.Balance(db, bob, gold)
	require.True(t, errors.ErrNotFound.Is(err))

	// the refunded holding can be closed as well once empty
	require.NoError(t, c.Transfer(db, bob, alice, native, 5))
	require.NoError(t, c.Close(db, bob, native, bob))
}

func TestReserveRelease(t *testing.T) {
	alice := swaptest.NewAddress()
	native := swaptest.NewAsset()
	account := swaptest.NewAsset()

	db := store.MemStore()
	require.NoError(t, gconf.Save(db, packageName, &Configuration{
		Metadata:    &lockswap.Metadata{Schema: 1},
		NativeAsset: native,
	}))
	c := NewController()
	require.NoError(t, c.Mint(db, alice, native, 3))

	require.NoError(t, c.Reserve(db, account, alice, 2))
	err := c.Reserve(db, account, alice, 1)
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)
	err = c.Reserve(db, swaptest.NewAsset(), alice, 2)
	require.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	require.NoError(t, c.Release(db, account, alice))
	balance, err := c.Balance(db, alice, native)
	require.NoError(t, err)
	require.EqualValues(t, 3, balance)

	err = c.Release(db, account, alice)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}
