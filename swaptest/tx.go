package swaptest

import (
	"github.com/iov-one/lockswap"
)

// Tx represents a lockswap transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg lockswap.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ lockswap.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (lockswap.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) Reset()         { *tx = Tx{} }
func (tx *Tx) String() string { return "swaptest.Tx" }
func (*Tx) ProtoMessage()     {}

// Msg represents a lockswap message.
type Msg struct {
	// RoutePath is returned by the Path method, consumed by the router.
	RoutePath string
	// Err if set is returned by Validate.
	Err error
}

var _ lockswap.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

func (m *Msg) Reset()         { *m = Msg{} }
func (m *Msg) String() string { return "swaptest.Msg " + m.RoutePath }
func (*Msg) ProtoMessage()    {}
