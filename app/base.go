package app

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage and query
// functionality of StoreApp.
type BaseApp struct {
	*StoreApp
	decoder lockswap.TxDecoder
	handler lockswap.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(store *StoreApp, decoder lockswap.TxDecoder, handler lockswap.Handler, debug bool) BaseApp {
	return BaseApp{
		StoreApp: store.WithDebug(debug),
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler. Changes are applied to the
// deliver store only if the handler succeeds.
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.loadTx(txBytes)
	if err != nil {
		return lockswap.DeliverTxError(err, b.debug)
	}

	ctx := lockswap.WithLogInfo(b.blockContext,
		"call", "deliver_tx",
		"path", lockswap.GetPath(tx))

	cache := b.DeliverStore().CacheWrap()
	res, err := b.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return lockswap.DeliverTxError(err, b.debug)
	}
	if err := cache.Write(); err != nil {
		return lockswap.DeliverTxError(errors.Wrap(err, "write deliver cache"), b.debug)
	}
	return res.ToABCI()
}

// CheckTx - ABCI - dispatches to the handler. Changes are kept in the check
// store only if the handler succeeds.
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.loadTx(txBytes)
	if err != nil {
		return lockswap.CheckTxError(err, b.debug)
	}

	ctx := lockswap.WithLogInfo(b.blockContext,
		"call", "check_tx",
		"path", lockswap.GetPath(tx))

	cache := b.CheckStore().CacheWrap()
	res, err := b.handler.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return lockswap.CheckTxError(err, b.debug)
	}
	if err := cache.Write(); err != nil {
		return lockswap.CheckTxError(errors.Wrap(err, "write check cache"), b.debug)
	}
	return res.ToABCI()
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx lockswap.Tx, err error) {
	defer errors.Recover(&err)
	return b.decoder(txBytes)
}
