package cash

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
)

const optKey = "cash"

// GenesisAccount is used to parse the json from genesis file.
// Addresses are hex encoded, not base64.
type GenesisAccount struct {
	Address  lockswap.Address `json:"address"`
	Holdings []GenesisHolding `json:"holdings"`
}

// GenesisHolding is an initial balance of one asset.
type GenesisHolding struct {
	Asset  lockswap.Address `json:"asset"`
	Amount uint64           `json:"amount"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ lockswap.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts lockswap.Options, db lockswap.KVStore) error {
	if err := gconf.InitConfig(db, opts, packageName, &Configuration{}); err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "init config")
	}

	var accts []GenesisAccount
	if err := opts.ReadOptions(optKey, &accts); err != nil {
		return err
	}
	control := NewController()
	for i, acct := range accts {
		if err := acct.Address.Validate(); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
		for _, h := range acct.Holdings {
			if err := h.Asset.Validate(); err != nil {
				return errors.Wrapf(err, "account %d asset", i)
			}
			if err := control.Mint(db, acct.Address, h.Asset, h.Amount); err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
		}
	}
	return nil
}
