package lockswap

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap/errors"
)

// Metadata is carried by every message and model. Schema is the version of
// the serialization format and must be 1.
type Metadata struct {
	Schema uint32 `protobuf:"varint,1,opt,name=schema,proto3" json:"schema,omitempty"`
}

func (m *Metadata) Reset()         { *m = Metadata{} }
func (m *Metadata) String() string { return proto.CompactTextString(m) }
func (*Metadata) ProtoMessage()    {}

// Validate returns an error if this metadata cannot be processed.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "metadata")
	}
	if m.Schema != 1 {
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported schema %d", m.Schema)
	}
	return nil
}

// Copy returns a copy of this object.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}
