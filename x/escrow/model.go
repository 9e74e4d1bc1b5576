package escrow

import (
	"encoding/binary"
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/orm"
)

// BucketName is where escrow records are stored.
const BucketName = "escrow"

// Escrow is a pending trade. It is stored under the address derived from
// maker and seed. The deposited amount is the balance of the custody vault.
type Escrow struct {
	Seed           uint64           `protobuf:"varint,1,opt,name=seed,proto3" json:"seed,omitempty"`
	Maker          lockswap.Address `protobuf:"bytes,2,opt,name=maker,proto3,casttype=github.com/iov-one/lockswap.Address" json:"maker,omitempty"`
	AssetA         lockswap.Address `protobuf:"bytes,3,opt,name=asset_a,json=assetA,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset_a,omitempty"`
	AssetB         lockswap.Address `protobuf:"bytes,4,opt,name=asset_b,json=assetB,proto3,casttype=github.com/iov-one/lockswap.Address" json:"asset_b,omitempty"`
	Receive        uint64           `protobuf:"varint,5,opt,name=receive,proto3" json:"receive,omitempty"`
	DerivationSalt uint32           `protobuf:"varint,6,opt,name=derivation_salt,json=derivationSalt,proto3" json:"derivation_salt,omitempty"`
	StartTime      int64            `protobuf:"varint,7,opt,name=start_time,json=startTime,proto3" json:"start_time,omitempty"`
	LockPeriod     int64            `protobuf:"varint,8,opt,name=lock_period,json=lockPeriod,proto3" json:"lock_period,omitempty"`
}

func (m *Escrow) Reset()         { *m = Escrow{} }
func (m *Escrow) String() string { return proto.CompactTextString(m) }
func (*Escrow) ProtoMessage()    {}

var _ orm.Model = (*Escrow)(nil)

// Validate ensures the escrow is valid
func (e *Escrow) Validate() error {
	if err := e.Maker.Validate(); err != nil {
		return errors.Wrap(err, "maker")
	}
	if err := e.AssetA.Validate(); err != nil {
		return errors.Wrap(err, "asset a")
	}
	if err := e.AssetB.Validate(); err != nil {
		return errors.Wrap(err, "asset b")
	}
	if e.Receive == 0 {
		return errors.Wrap(errors.ErrInvalidModel, "receive must be positive")
	}
	if e.DerivationSalt > lockswap.MaxSalt {
		return errors.Wrapf(errors.ErrInvalidModel, "salt %d", e.DerivationSalt)
	}
	if e.StartTime < 0 {
		return errors.Wrap(errors.ErrInvalidModel, "negative start time")
	}
	if e.LockPeriod < 0 {
		return errors.Wrap(errors.ErrInvalidModel, "negative lock period")
	}
	return nil
}

// Locked returns true if the escrow cannot be taken at given clock value.
// An escrow unlocks at exactly start time plus lock period.
func (e *Escrow) Locked(now int64) bool {
	if now < e.StartTime {
		return true
	}
	return now-e.StartTime < e.LockPeriod
}

// UnlockTime returns the first clock value at which the escrow can be
// taken. It saturates at math.MaxInt64.
func (e *Escrow) UnlockTime() int64 {
	if e.LockPeriod > 0 && e.StartTime > math.MaxInt64-e.LockPeriod {
		return math.MaxInt64
	}
	return e.StartTime + e.LockPeriod
}

// Address returns the address of this record, recomputed with the stored
// salt. It fails if the stored salt does not produce a valid address.
func (e *Escrow) Address() (lockswap.Address, error) {
	if e.DerivationSalt > lockswap.MaxSalt {
		return nil, errors.Wrapf(errors.ErrInvalidState, "salt %d", e.DerivationSalt)
	}
	return RecordCondition(e.Maker, e.Seed).DeriveWithSalt(uint8(e.DerivationSalt))
}

// RecordCondition returns the condition an escrow record address is
// derived from.
func RecordCondition(maker lockswap.Address, seed uint64) lockswap.Condition {
	data := make([]byte, len(maker)+8)
	copy(data, maker)
	binary.BigEndian.PutUint64(data[len(maker):], seed)
	return lockswap.NewCondition("escrow", "record", data)
}

// RecordAddress returns the address of the escrow of given maker and seed
// together with the salt that produced it.
func RecordAddress(maker lockswap.Address, seed uint64) (lockswap.Address, uint8, error) {
	return RecordCondition(maker, seed).Derive()
}

func makerIndex(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidType, "%T", m)
	}
	return e.Maker, nil
}

// NewBucket returns a bucket of escrow records, indexed by maker.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Escrow{},
		orm.WithIndex("maker", makerIndex, false))
}
