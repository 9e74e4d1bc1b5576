package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

const (
	pathSendMsg                = "cash/send"
	pathCloseMsg               = "cash/close"
	pathUpdateConfigurationMsg = "cash/update_configuration"

	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg moves tokens between two holdings of the same asset.
type SendMsg struct {
	Metadata    *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Source      lockswap.Address   `protobuf:"bytes,2,opt,name=source,proto3,casttype=github.com/iov-one/lockswap.Address" json:"source,omitempty"`
	Destination lockswap.Address   `protobuf:"bytes,3,opt,name=destination,proto3,casttype=github.com/iov-one/lockswap.Address" json:"destination,omitempty"`
	Asset       lockswap.Address   `protobuf:"bytes,4,opt,name=asset,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset,omitempty"`
	Amount      uint64             `protobuf:"varint,5,opt,name=amount,proto3" json:"amount,omitempty"`
	Memo        string             `protobuf:"bytes,6,opt,name=memo,proto3" json:"memo,omitempty"`
}

func (m *SendMsg) Reset()         { *m = SendMsg{} }
func (m *SendMsg) String() string { return proto.CompactTextString(m) }
func (*SendMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (m *SendMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "non-positive amount")
	}
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if err := m.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	if len(m.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrInvalidInput, "memo too long")
	}
	return nil
}

// CloseMsg deletes an empty holding of the signer.
type CloseMsg struct {
	Metadata *lockswap.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Owner    lockswap.Address   `protobuf:"bytes,2,opt,name=owner,proto3,casttype=github.com/iov-one/lockswap.Address" json:"owner,omitempty"`
	Asset    lockswap.Address   `protobuf:"bytes,3,opt,name=asset,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset,omitempty"`
}

func (m *CloseMsg) Reset()         { *m = CloseMsg{} }
func (m *CloseMsg) String() string { return proto.CompactTextString(m) }
func (*CloseMsg) ProtoMessage()    {}

var _ lockswap.Msg = (*CloseMsg)(nil)

func (CloseMsg) Path() string {
	return pathCloseMsg
}

func (m *CloseMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	if err := m.Asset.Validate(); err != nil {
		return errors.Wrap(err, "asset")
	}
	return nil
}

// UpdateConfigurationMsg patches the cash configuration.
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
