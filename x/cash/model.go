package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
)

const (
	holdingBucketName = "hold"
	reserveBucketName = "rsv"
)

// Holding is the balance of a single asset held by an owner. The owner can
// be a person or a derived address, like an escrow vault.
type Holding struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    lockswap.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/lockswap.Address" json:"owner,omitempty"`
	Asset    lockswap.Address   `protobuf:"bytes,3,opt,name=asset,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset,omitempty"`
	Amount   uint64             `protobuf:"varint,4,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *Holding) Reset()         { *m = Holding{} }
func (m *Holding) String() string { return proto.CompactTextString(m) }
func (*Holding) ProtoMessage()    {}

var _ orm.Model = (*Holding)(nil)

func (h *Holding) Validate() error {
	if err := h.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := h.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := h.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	return nil
}

// Reserve is the storage deposit paid for an account. It is keyed by the
// address of the account it funds.
type Reserve struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Payer    lockswap.Address   `protobuf:"bytes,2,opt,name=payer,proto3,casttype=github.com/iov-one/lockswap.Address" json:"payer,omitempty"`
	Amount   uint64             `protobuf:"varint,3,opt,name=amount,proto3" json:"amount,omitempty"`
}

func (m *Reserve) Reset()         { *m = Reserve{} }
func (m *Reserve) String() string { return proto.CompactTextString(m) }
func (*Reserve) ProtoMessage()    {}

var _ orm.Model = (*Reserve)(nil)

func (r *Reserve) Validate() error {
	if err := r.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := r.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	return nil
}

// HoldingCondition returns the condition the holding address of given
// owner and asset is derived from.
func HoldingCondition(owner, asset lockswap.Address) lockswap.Condition {
	data := make([]byte, 0, len(owner)+len(asset))
	data = append(data, owner...)
	data = append(data, asset...)
	return lockswap.NewCondition("cash", "holding", data)
}

// HoldingAddress returns the key the holding of given owner and asset is
// stored under.
func HoldingAddress(owner, asset lockswap.Address) (lockswap.Address, error) {
	addr, _, err := HoldingCondition(owner, asset).Derive()
	return addr, err
}

func ownerIndex(m orm.Model) ([]byte, error) {
	h, ok := m.(*Holding)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	return h.Owner, nil
}

// NewHoldingBucket returns a bucket of holdings indexed by owner.
func NewHoldingBucket() orm.ModelBucket {
	return orm.NewModelBucket(holdingBucketName, &Holding{},
		orm.WithIndex("owner", ownerIndex, false))
}

// NewReserveBucket returns a bucket of storage reserves.
func NewReserveBucket() orm.ModelBucket {
	return orm.NewModelBucket(reserveBucketName, &Reserve{})
}
