package utils

import (
	"context"
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepoint(t *testing.T) {
	// written before the handler is called
	ok, ov := []byte("demo"), []byte("data")
	// written by the handler
	nk, nv := []byte{1, 2, 3}, []byte{4, 5, 6}
	failure := errors.Wrap(errors.ErrInsufficientAmount, "too poor")

	cases := map[string]struct {
		save    Savepoint
		err     error
		check   bool
		written [][]byte
		missing [][]byte
	}{
		"disabled keeps partial writes": {
			save:    NewSavepoint(),
			err:     failure,
			check:   true,
			written: [][]byte{ok, nk},
		},
		"check failure is rolled back": {
			save:    NewSavepoint().OnCheck(),
			err:     failure,
			check:   true,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"deliver failure is rolled back": {
			save:    NewSavepoint().OnDeliver(),
			err:     failure,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"check savepoint does not affect deliver": {
			save:    NewSavepoint().OnCheck(),
			err:     failure,
			written: [][]byte{ok, nk},
		},
		"both enabled": {
			save:    NewSavepoint().OnCheck().OnDeliver(),
			err:     failure,
			written: [][]byte{ok},
			missing: [][]byte{nk},
		},
		"success is written": {
			save:    NewSavepoint().OnDeliver(),
			written: [][]byte{ok, nk},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			ctx := context.Background()
			db := store.MemStore()
			require.NoError(t, db.Set(ok, ov))

			h := swaptest.WriteHandler{Key: nk, Value: nv, Err: tc.err}
			var err error
			if tc.check {
				_, err = tc.save.Check(ctx, db, nil, h)
			} else {
				_, err = tc.save.Deliver(ctx, db, nil, h)
			}
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)
			}

			for _, k := range tc.written {
				v, err := db.Get(k)
				require.NoError(t, err)
				assert.NotNil(t, v, "missing %X", k)
			}
			for _, k := range tc.missing {
				v, err := db.Get(k)
				require.NoError(t, err)
				assert.Nil(t, v, "unexpected %X", k)
			}
		})
	}
}

// A store that cannot be cache wrapped is passed through.
func TestSavepointPlainStore(t *testing.T) {
	db := plainStore{store.MemStore()}
	h := swaptest.WriteHandler{Key: []byte("k"), Value: []byte("v"), Err: errors.ErrHuman}

	_, err := NewSavepoint().OnDeliver().Deliver(context.Background(), db, nil, h)
	require.True(t, errors.ErrHuman.Is(err))
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

type plainStore struct {
	lockswap.KVStore
}
