package sigs

import (
	"context"
	"testing"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/iov-one/lockswap/swaptest/assert"
)

type registry map[string]lockswap.Handler

func (r registry) Handle(path string, h lockswap.Handler) { r[path] = h }

func TestBumpSequence(t *testing.T) {
	key := swaptest.NewKey()
	addr := key.PublicKey().Address()

	cases := map[string]struct {
		initSeq   int64
		noAccount bool
		signer    lockswap.Address
		msg       *BumpSequenceMsg
		wantErr   *errors.Error
		wantSeq   int64
	}{
		"increment by one is a no-op": {
			initSeq: 4,
			signer:  addr,
			msg:     &BumpSequenceMsg{Metadata: &lockswap.Metadata{Schema: 1}, Increment: 1},
			wantSeq: 4,
		},
		"increment by many": {
			initSeq: 4,
			signer:  addr,
			msg:     &BumpSequenceMsg{Metadata: &lockswap.Metadata{Schema: 1}, Increment: 10},
			wantSeq: 13,
		},
		"increment too big": {
			signer:  addr,
			msg:     &BumpSequenceMsg{Metadata: &lockswap.Metadata{Schema: 1}, Increment: 1001},
			wantErr: errors.ErrInvalidMsg,
		},
		"missing signer": {
			msg:     &BumpSequenceMsg{Metadata: &lockswap.Metadata{Schema: 1}, Increment: 2},
			wantErr: errors.ErrUnauthorized,
		},
		"unknown account": {
			noAccount: true,
			signer:    addr,
			msg:       &BumpSequenceMsg{Metadata: &lockswap.Metadata{Schema: 1}, Increment: 2},
			wantErr:   errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			b := NewBucket()
			if !tc.noAccount {
				user := &UserData{Metadata: &lockswap.Metadata{Schema: 1}, Pubkey: key.PublicKey(), Sequence: tc.initSeq}
				assert.Nil(t, b.Save(db, user))
			}

			auth := &swaptest.CtxAuth{Key: "sig"}
			ctx := context.Background()
			if tc.signer != nil {
				ctx = auth.SetSigners(ctx, tc.signer)
			}
			r := registry{}
			RegisterRoutes(r, auth)
			h := r[pathBumpSequenceMsg]

			tx := &swaptest.Tx{Msg: tc.msg}
			_, err := h.Deliver(ctx, db, tx)
			if !tc.wantErr.Is(err) {
				t.Fatalf("want %q error, got %+v", tc.wantErr, err)
			}
			if tc.wantErr != nil {
				return
			}
			nonce, err := NextNonce(db, addr)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantSeq, nonce)
		})
	}
}
