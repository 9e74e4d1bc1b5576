package escrow

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

const (
	pathMakeMsg                = "escrow/make"
	pathTakeMsg                = "escrow/take"
	pathRefundMsg              = "escrow/refund"
	pathUpdateConfigurationMsg = "escrow/update_configuration"

	makeCost   int64 = 300
	takeCost   int64 = 100
	refundCost int64 = 0
)

// MakeMsg opens a new escrow. Deposit of asset A is moved from the maker
// into the custody vault.
type MakeMsg struct {
	Metadata   *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Maker      lockswap.Address   `protobuf:"bytes,2,opt,name=maker,proto3,casttype=github.com/iov-one/lockswap.Address" json:"maker,omitempty"`
	AssetA     lockswap.Address   `protobuf:"bytes,3,opt,name=asset_a,json=assetA,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset_a,omitempty"`
	AssetB     lockswap.Address   `protobuf:"bytes,4,opt,name=asset_b,json=assetB,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset_b,omitempty"`
	Deposit    uint64             `protobuf:"varint,5,opt,name=deposit,proto3" json:"deposit,omitempty"`
	Receive    uint64             `protobuf:"varint,6,opt,name=receive,proto3" json:"receive,omitempty"`
	Seed       uint64             `protobuf:"varint,7,opt,name=seed,proto3" json:"seed,omitempty"`
	LockPeriod int64              `protobuf:"varint,8,opt,name=lock_period,json=lockPeriod,proto3" json:"lock_period,omitempty"`
}

func (m *MakeMsg) Reset()         { *m = MakeMsg{} }
func (m *MakeMsg) String() string { return proto.CompactTextString(m) }
func (*MakeMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*MakeMsg)(nil)

// Path returns the routing path for this message
func (MakeMsg) Path() string {
	return pathMakeMsg
}

// Validate makes sure that this is sensible
func (m *MakeMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validIdentity("maker", m.Maker); err != nil {
		return err
	}
	if err := validIdentity("asset a", m.AssetA); err != nil {
		return err
	}
	if err := validIdentity("asset b", m.AssetB); err != nil {
		return err
	}
	if m.Deposit == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "deposit must be positive")
	}
	if m.Receive == 0 {
		return errors.Wrap(errors.ErrInvalidInput, "receive must be positive")
	}
	if m.LockPeriod < 0 {
		return errors.Wrap(errors.ErrInvalidInput, "negative lock period")
	}
	return nil
}

// TakeMsg settles an escrow. The escrow is referenced either by its
// address or by the maker and seed it was created with.
type TakeMsg struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Taker    lockswap.Address   `protobuf:"bytes,2,opt,name=taker,proto3,casttype=github.com/iov-one/lockswap.Address" json:"taker,omitempty"`
	EscrowID lockswap.Address   `protobuf:"bytes,3,opt,name=escrow_id,json=escrowId,proto3,casttype=github.com/iov-one/lockswap.Address" json:"escrow_id,omitempty"`
	Maker    lockswap.Address   `protobuf:"bytes,4,opt,name=maker,proto3,casttype=github.com/iov-one/lockswap.Address" json:"maker,omitempty"`
	Seed     uint64             `protobuf:"varint,5,opt,name=seed,proto3" json:"seed,omitempty"`
}

func (m *TakeMsg) Reset()         { *m = TakeMsg{} }
func (m *TakeMsg) String() string { return proto.CompactTextString(m) }
func (*TakeMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*TakeMsg)(nil)

func (TakeMsg) Path() string {
	return pathTakeMsg
}

func (m *TakeMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := validIdentity("taker", m.Taker); err != nil {
		return err
	}
	return validReference(m.EscrowID, m.Maker, m.Seed)
}

// Escrow returns the address of the referenced escrow record.
func (m *TakeMsg) Escrow() (lockswap.Address, error) {
	return reference(m.EscrowID, m.Maker, m.Seed)
}

// RefundMsg cancels an escrow and returns the deposit to the maker. The
// escrow is referenced either by its address or by the maker and seed.
type RefundMsg struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	EscrowID lockswap.Address   `protobuf:"bytes,2,opt,name=escrow_id,json=escrowId,proto3,casttype=github.com/iov-one/lockswap.Address" json:"escrow_id,omitempty"`
	Maker    lockswap.Address   `protobuf:"bytes,3,opt,name=maker,proto3,casttype=github.com/iov-one/lockswap.Address" json:"maker,omitempty"`
	Seed     uint64             `protobuf:"varint,4,opt,name=seed,proto3" json:"seed,omitempty"`
}

func (m *RefundMsg) Reset()         { *m = RefundMsg{} }
func (m *RefundMsg) String() string { return proto.CompactTextString(m) }
func (*RefundMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*RefundMsg)(nil)

func (RefundMsg) Path() string {
	return pathRefundMsg
}

func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return validReference(m.EscrowID, m.Maker, m.Seed)
}

// Escrow returns the address of the referenced escrow record.
func (m *RefundMsg) Escrow() (lockswap.Address, error) {
	return reference(m.EscrowID, m.Maker, m.Seed)
}

// UpdateConfigurationMsg changes the escrow configuration. Only the
// configuration owner may sign it.
type UpdateConfigurationMsg struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Patch    *Configuration     `protobuf:"bytes,2,opt,name=patch,proto3" json:"patch,omitempty"`
}

func (m *UpdateConfigurationMsg) Reset()         { *m = UpdateConfigurationMsg{} }
func (m *UpdateConfigurationMsg) String() string { return proto.CompactTextString(m) }
func (*UpdateConfigurationMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*UpdateConfigurationMsg)(nil)

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

func validIdentity(name string, a lockswap.Address) error {
	if err := a.Validate(); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "%s: %s", name, err)
	}
	return nil
}

// validReference requires exactly one way of referencing an escrow.
func validReference(id, maker lockswap.Address, seed uint64) error {
	switch {
	case len(id) != 0 && len(maker) != 0:
		return errors.Wrap(errors.ErrInvalidInput, "both escrow id and maker given")
	case len(id) != 0:
		return validIdentity("escrow id", id)
	case len(maker) != 0:
		return validIdentity("maker", maker)
	default:
		return errors.Wrap(errors.ErrInvalidInput, "escrow id or maker required")
	}
}

func reference(id, maker lockswap.Address, seed uint64) (lockswap.Address, error) {
	if len(id) != 0 {
		return id, nil
	}
	addr, _, err := RecordAddress(maker, seed)
	return addr, err
}
