/*
Package app links together all the various components
to construct the lockswapd application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/app"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
	"github.com/iov-one/lockswap/store/iavl"
	"github.com/iov-one/lockswap/x"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/iov-one/lockswap/x/escrow"
	"github.com/iov-one/lockswap/x/sigs"
	"github.com/iov-one/lockswap/x/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery.
func Chain(metrics utils.Metrics) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		metrics,
		utils.NewRecovery(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnDeliver(),
		utils.NewActionTagger(),
	)
}

// Router returns the router with all message handlers registered.
// Escrow lock periods are measured in blocks.
func Router(authFn x.Authenticator, clock lockswap.Clock) *app.Router {
	r := app.NewRouter()
	bank := cash.NewController()
	sigs.RegisterRoutes(r, authFn)
	cash.RegisterRoutes(r, authFn, bank)
	escrow.RegisterRoutes(r, authFn, bank, clock)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/holdings", "/reserves", "/escrows", "/auth" and "/"
func QueryRouter() lockswap.QueryRouter {
	r := lockswap.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		escrow.RegisterQuery,
		sigs.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp. Metrics are registered with
// given registerer.
func Stack(reg prometheus.Registerer) (lockswap.Handler, error) {
	metrics, err := utils.NewMetrics(reg)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}
	return Chain(metrics).WithHandler(Router(Authenticator(), lockswap.BlockClock{})), nil
}

// Initializers returns the genesis loaders of all extensions.
func Initializers() lockswap.Initializer {
	return lockswap.ChainInitializers{
		cash.Initializer{},
		escrow.Initializer{},
	}
}

// Application constructs a basic ABCI application with
// the given arguments. If you are not sure what to use
// for the Handler, just use Stack().
func Application(name string, h lockswap.Handler, tx lockswap.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store, err := app.NewStoreApp(name, kv, QueryRouter(), context.Background())
	if err != nil {
		return app.BaseApp{}, errors.Wrap(err, "store")
	}
	store.WithInit(Initializers())
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (lockswap.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "database name %q", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name), nil
}
