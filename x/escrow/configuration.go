package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/gconf"
)

const packageName = "escrow"

// Configuration of the escrow extension.
type Configuration struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    lockswap.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/lockswap.Address" json:"owner,omitempty"`
	// RecordReserve is the storage deposit, in the native asset, charged
	// to the maker for every escrow record.
	RecordReserve uint64 `protobuf:"varint,3,opt,name=record_reserve,json=recordReserve,proto3" json:"record_reserve,omitempty"`
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
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner")
		}
	}
	return nil
}

// LoadConfiguration returns the stored configuration or the default one,
// without any reserve, if none was stored.
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
