package escrow

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
)

// Initializer stores the escrow configuration found in genesis. Without
// one escrows are created without a record reserve.
type Initializer struct{}

var _ lockswap.Initializer = Initializer{}

func (Initializer) FromGenesis(opts lockswap.Options, db lockswap.KVStore) error {
	err := gconf.InitConfig(db, opts, packageName, &Configuration{})
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}
	return nil
}
