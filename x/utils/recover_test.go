package utils

import (
	"context"
	"testing"

	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/store"
	"github.com/iov-one/lockswap/swaptest"
	"github.com/stretchr/testify/assert"
)

func TestRecovery(t *testing.T) {
	h := swaptest.PanicHandler{Msg: "boom"}
	r := NewRecovery()

	ctx := context.Background()
	db := store.MemStore()

	assert.Panics(t, func() { _, _ = h.Check(ctx, db, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, db, nil) })

	_, err := r.Check(ctx, db, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, db, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))
}
