package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
)

const packageName = "cash"

// Configuration of the cash extension.
type Configuration struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Owner may update this configuration.
	Owner lockswap.Address `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/lockswap.Address" json:"owner,omitempty"`
	// NativeAsset is the asset reserves are paid in.
	NativeAsset lockswap.Address `protobuf:"bytes,3,opt,name=native_asset,json=nativeAsset,proto3,casttype=github.com/iov-one/lockswap.Address" json:"native_asset,omitempty"`
	// AccountReserve is charged for every new holding.
	AccountReserve uint64 `protobuf:"varint,4,opt,name=account_reserve,json=accountReserve,proto3" json:"account_reserve,omitempty"`
}

func (m *Configuration) Reset()         { *m = Configuration{} }
func (m *Configuration) String() string { return proto.CompactTextString(m) }
func (*Configuration) ProtoMessage()    {}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() lockswap.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	// owner is optional, without one the configuration is immutable
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	if len(c.NativeAsset) != 0 {
		if err := c.NativeAsset.Validate(); err != nil {
			return errors.Wrap(err, "native asset")
		}
	} else if c.AccountReserve != 0 {
		return errors.Wrap(errors.ErrInvalidState, "reserve requires a native asset")
	}
	return nil
}

// LoadConfiguration returns the stored configuration. A chain that never
// configured the cash extension charges no reserves.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, packageName, &conf); {
	case err == nil:
		return &conf, nil
	case errors.ErrNotFound.Is(err):
		return &Configuration{Metadata: &lockswap.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "load configuration")
	}
}
