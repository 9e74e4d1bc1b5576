package cash

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
)

// Controller is the functionality needed by cash.Handler and other
// extensions, like escrow, that move tokens.
type Controller interface {
	// Balance returns the amount held. ErrNotFound is returned if the
	// owner has no holding of given asset.
	Balance(db lockswap.ReadOnlyKVStore, owner, asset lockswap.Address) (uint64, error)

	// Open creates an empty holding, charging the account reserve to
	// payer. It fails with ErrDuplicate if the holding exists.
	Open(db lockswap.KVStore, owner, asset, payer lockswap.Address) (lockswap.Address, error)

	// Ensure opens the holding unless it already exists.
	Ensure(db lockswap.KVStore, owner, asset, payer lockswap.Address) (lockswap.Address, error)

	// Transfer moves amount of asset between the holdings of two
	// owners. Both holdings must exist.
	Transfer(db lockswap.KVStore, src, dest, asset lockswap.Address, amount uint64) error

	// Close deletes an empty holding and refunds its reserve.
	Close(db lockswap.KVStore, owner, asset, refundTo lockswap.Address) error

	// Reserve charges a storage deposit for account to payer.
	Reserve(db lockswap.KVStore, account, payer lockswap.Address, amount uint64) error

	// Release deletes the storage deposit of account and pays it back.
	Release(db lockswap.KVStore, account, refundTo lockswap.Address) error

	// Mint issues new tokens. Only genesis and tests create tokens.
	Mint(db lockswap.KVStore, owner, asset lockswap.Address, amount uint64) error
}

// BaseController is the default Controller implementation.
type BaseController struct {
	holdings orm.ModelBucket
	reserves orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller using the default buckets.
func NewController() BaseController {
	return BaseController{
		holdings: NewHoldingBucket(),
		reserves: NewReserveBucket(),
	}
}

func (c BaseController) load(db lockswap.ReadOnlyKVStore, owner, asset lockswap.Address) (lockswap.Address, *Holding, error) {
	key, err := HoldingAddress(owner, asset)
	if err != nil {
		return nil, nil, err
	}
	var h Holding
	if err := c.holdings.One(db, key, &h); err != nil {
		return key, nil, errors.Wrapf(err, "holding of %s", owner)
	}
	return key, &h, nil
}

func (c BaseController) Balance(db lockswap.ReadOnlyKVStore, owner, asset lockswap.Address) (uint64, error) {
	_, h, err := c.load(db, owner, asset)
	if err != nil {
		return 0, err
	}
	return h.Amount, nil
}

func (c BaseController) Open(db lockswap.KVStore, owner, asset, payer lockswap.Address) (lockswap.Address, error) {
	key, err := c.create(db, owner, asset)
	if err != nil {
		return nil, err
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, err
	}
	if err := c.Reserve(db, key, payer, conf.AccountReserve); err != nil {
		return nil, errors.Wrap(err, "account reserve")
	}
	return key, nil
}

// create stores an empty holding without charging any reserve.
func (c BaseController) create(db lockswap.KVStore, owner, asset lockswap.Address) (lockswap.Address, error) {
	key, err := HoldingAddress(owner, asset)
	if err != nil {
		return nil, err
	}
	switch ok, err := c.holdings.Has(db, key); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "holding %s", key)
	}
	h := Holding{
		Metadata: &lockswap.Metadata{Schema: 1},
		Owner:    owner,
		Asset:    asset,
	}
	if err := c.holdings.Put(db, key, &h); err != nil {
		return nil, err
	}
	return key, nil
}

func (c BaseController) Ensure(db lockswap.KVStore, owner, asset, payer lockswap.Address) (lockswap.Address, error) {
	key, err := HoldingAddress(owner, asset)
	if err != nil {
		return nil, err
	}
	ok, err := c.holdings.Has(db, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return key, nil
	}
	return c.Open(db, owner, asset, payer)
}

func (c BaseController) Transfer(db lockswap.KVStore, src, dest, asset lockswap.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "zero transfer")
	}
	if _, _, err := c.load(db, dest, asset); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := c.debit(db, src, asset, amount); err != nil {
		return errors.Wrap(err, "source")
	}
	return c.credit(db, dest, asset, amount)
}

func (c BaseController) debit(db lockswap.KVStore, owner, asset lockswap.Address, amount uint64) error {
	key, h, err := c.load(db, owner, asset)
	if err != nil {
		return err
	}
	if h.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "has %d, needs %d", h.Amount, amount)
	}
	h.Amount -= amount
	return c.holdings.Put(db, key, h)
}

func (c BaseController) credit(db lockswap.KVStore, owner, asset lockswap.Address, amount uint64) error {
	key, h, err := c.load(db, owner, asset)
	if err != nil {
		return err
	}
	if h.Amount+amount < h.Amount {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	h.Amount += amount
	return c.holdings.Put(db, key, h)
}

func (c BaseController) Close(db lockswap.KVStore, owner, asset, refundTo lockswap.Address) error {
	key, h, err := c.load(db, owner, asset)
	if err != nil {
		return err
	}
	if h.Amount != 0 {
		return errors.Wrapf(errors.ErrInvalidState, "holding still has %d", h.Amount)
	}
	if err := c.holdings.Delete(db, key); err != nil {
		return err
	}
	if err := c.Release(db, key, refundTo); err != nil {
		return errors.Wrap(err, "account reserve")
	}
	return nil
}

func (c BaseController) Reserve(db lockswap.KVStore, account, payer lockswap.Address, amount uint64) error {
	switch ok, err := c.reserves.Has(db, account); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "reserve of %s", account)
	}
	if amount > 0 {
		conf, err := LoadConfiguration(db)
		if err != nil {
			return err
		}
		if err := c.debit(db, payer, conf.NativeAsset, amount); err != nil {
			return err
		}
	}
	r := Reserve{
		Metadata: &lockswap.Metadata{Schema: 1},
		Payer:    payer,
		Amount:   amount,
	}
	return c.reserves.Put(db, account, &r)
}

func (c BaseController) Release(db lockswap.KVStore, account, refundTo lockswap.Address) error {
	var r Reserve
	if err := c.reserves.One(db, account, &r); err != nil {
		return err
	}
	if err := c.reserves.Delete(db, account); err != nil {
		return err
	}
	if r.Amount == 0 {
		return nil
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return err
	}
	// A refund never charges another reserve.
	if err := c.ensureFree(db, refundTo, conf.NativeAsset); err != nil {
		return err
	}
	return c.credit(db, refundTo, conf.NativeAsset, r.Amount)
}

func (c BaseController) Mint(db lockswap.KVStore, owner, asset lockswap.Address, amount uint64) error {
	if err := c.ensureFree(db, owner, asset); err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}
	return c.credit(db, owner, asset, amount)
}

// ensureFree opens the holding unless it exists, with an empty reserve.
func (c BaseController) ensureFree(db lockswap.KVStore, owner, asset lockswap.Address) error {
	key, err := c.create(db, owner, asset)
	switch {
	case errors.ErrDuplicate.Is(err):
		return nil
	case err != nil:
		return err
	}
	return c.Reserve(db, key, owner, 0)
}
