package app

import (
	"reflect"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/x/cash"
	"github.com/iov-one/lockswap/x/escrow"
	"github.com/iov-one/lockswap/x/sigs"
)

// Tx is the transaction accepted by lockswapd. Exactly one of the message
// fields must be set.
type Tx struct {
	Signatures []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`

	SendMsg                      *cash.SendMsg                  `protobuf:"bytes,51,opt,name=send_msg,json=sendMsg,proto3" json:"send_msg,omitempty"`
	CloseMsg                     *cash.CloseMsg                 `protobuf:"bytes,52,opt,name=close_msg,json=closeMsg,proto3" json:"close_msg,omitempty"`
	CashUpdateConfigurationMsg   *cash.UpdateConfigurationMsg   `protobuf:"bytes,53,opt,name=cash_update_configuration_msg,json=cashUpdateConfigurationMsg,proto3" json:"cash_update_configuration_msg,omitempty"`
	MakeMsg                      *escrow.MakeMsg                `protobuf:"bytes,61,opt,name=make_msg,json=makeMsg,proto3" json:"make_msg,omitempty"`
	TakeMsg                      *escrow.TakeMsg                `protobuf:"bytes,62,opt,name=take_msg,json=takeMsg,proto3" json:"take_msg,omitempty"`
	RefundMsg                    *escrow.RefundMsg              `protobuf:"bytes,63,opt,name=refund_msg,json=refundMsg,proto3" json:"refund_msg,omitempty"`
	EscrowUpdateConfigurationMsg *escrow.UpdateConfigurationMsg `protobuf:"bytes,64,opt,name=escrow_update_configuration_msg,json=escrowUpdateConfigurationMsg,proto3" json:"escrow_update_configuration_msg,omitempty"`
	BumpSequenceMsg              *sigs.BumpSequenceMsg          `protobuf:"bytes,71,opt,name=bump_sequence_msg,json=bumpSequenceMsg,proto3" json:"bump_sequence_msg,omitempty"`
}

func (m *Tx) Reset()         { *m = Tx{} }
func (m *Tx) String() string { return proto.CompactTextString(m) }
func (*Tx) ProtoMessage()    {}

// make sure tx fulfills all interfaces
var _ lockswap.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (lockswap.Tx, error) {
	tx := new(Tx)
	if err := proto.Unmarshal(bz, tx); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	return tx, nil
}

// GetMsg returns the single message carried by this transaction.
func (tx *Tx) GetMsg() (lockswap.Msg, error) {
	var found []lockswap.Msg
	for _, m := range []lockswap.Msg{
		tx.SendMsg,
		tx.CloseMsg,
		tx.CashUpdateConfigurationMsg,
		tx.MakeMsg,
		tx.TakeMsg,
		tx.RefundMsg,
		tx.EscrowUpdateConfigurationMsg,
		tx.BumpSequenceMsg,
	} {
		if !isNilMsg(m) {
			found = append(found, m)
		}
	}
	switch len(found) {
	case 0:
		return nil, errors.Wrap(errors.ErrInvalidMsg, "no message")
	case 1:
		return found[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidMsg, "%d messages", len(found))
	}
}

// SetMsg puts given message into its field, clearing any other message.
func (tx *Tx) SetMsg(msg lockswap.Msg) error {
	signatures := tx.Signatures
	*tx = Tx{Signatures: signatures}
	switch m := msg.(type) {
	case *cash.SendMsg:
		tx.SendMsg = m
	case *cash.CloseMsg:
		tx.CloseMsg = m
	case *cash.UpdateConfigurationMsg:
		tx.CashUpdateConfigurationMsg = m
	case *escrow.MakeMsg:
		tx.MakeMsg = m
	case *escrow.TakeMsg:
		tx.TakeMsg = m
	case *escrow.RefundMsg:
		tx.RefundMsg = m
	case *escrow.UpdateConfigurationMsg:
		tx.EscrowUpdateConfigurationMsg = m
	case *sigs.BumpSequenceMsg:
		tx.BumpSequenceMsg = m
	default:
		return errors.Wrapf(errors.ErrInvalidType, "%T", msg)
	}
	return nil
}

// isNilMsg tells if the interface holds a typed nil pointer.
func isNilMsg(m lockswap.Msg) bool {
	return m == nil || reflect.ValueOf(m).IsNil()
}

// GetSignatures returns the signatures of this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// GetSignBytes returns the bytes to sign. Signatures are not part of
// the signed data.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	// temporarily unset the signatures, as the sign bytes
	// should only come from the data itself, not previous signatures
	signatures := tx.Signatures
	tx.Signatures = nil

	bz, err := proto.Marshal(tx)

	// reset the signatures after calculating the bytes
	tx.Signatures = signatures
	return bz, err
}
