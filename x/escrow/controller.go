package escrow

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
	"github.com/iov-one/lockswap/x/cash"
)

// loadEscrow returns the record stored under given address. The stored
// salt must reproduce that address.
func loadEscrow(db lockswap.ReadOnlyKVStore, bucket orm.ModelBucket, addr lockswap.Address) (*Escrow, error) {
	var e Escrow
	if err := bucket.One(db, addr, &e); err != nil {
		return nil, errors.Wrap(err, "escrow")
	}
	derived, err := e.Address()
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidState, err.Error())
	}
	if !derived.Equals(addr) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "salt %d derives %s", e.DerivationSalt, derived)
	}
	return &e, nil
}

// vaultAddress returns the holding that keeps the deposit of given escrow.
func vaultAddress(addr, assetA lockswap.Address) (lockswap.Address, error) {
	return cash.HoldingAddress(addr, assetA)
}

// destroy empties the vault into the asset A holding of recipient and
// removes both the vault and the record. All reserves go back to the
// maker. Recipient holding must exist.
func destroy(db lockswap.KVStore, bucket orm.ModelBucket, bank cash.Controller, addr lockswap.Address, e *Escrow, recipient lockswap.Address) (uint64, error) {
	amount, err := bank.Balance(db, addr, e.AssetA)
	if err != nil {
		return 0, errors.Wrap(err, "vault")
	}
	if amount > 0 {
		if err := bank.Transfer(db, addr, recipient, e.AssetA, amount); err != nil {
			return 0, errors.Wrap(err, "empty vault")
		}
	}
	if err := bank.Close(db, addr, e.AssetA, e.Maker); err != nil {
		return 0, errors.Wrap(err, "close vault")
	}
	if err := bucket.Delete(db, addr); err != nil {
		return 0, errors.Wrap(err, "delete escrow")
	}
	if err := bank.Release(db, addr, e.Maker); err != nil {
		return 0, errors.Wrap(err, "release escrow reserve")
	}
	return amount, nil
}
