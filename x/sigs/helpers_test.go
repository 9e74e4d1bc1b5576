package sigs

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/swaptest"
)

// signedTx is a swaptest.Tx carrying signatures over a fixed payload.
type signedTx struct {
	swaptest.Tx
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*signedTx)(nil)
var _ lockswap.Tx = (*signedTx)(nil)

func newSignedTx(payload []byte, msg lockswap.Msg) *signedTx {
	return &signedTx{Tx: swaptest.Tx{Msg: msg}, Payload: payload}
}

func (tx *signedTx) Reset()         { *tx = signedTx{} }
func (tx *signedTx) String() string { return "signedTx" }
func (*signedTx) ProtoMessage()     {}

func (tx *signedTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *signedTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}
