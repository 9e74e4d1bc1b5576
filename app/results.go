package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

// ResultSet contains a list of keys or values returned by a query.
type ResultSet struct {
	Results [][]byte `protobuf:"bytes,1,rep,name=results,proto3" json:"results,omitempty"`
}

func (m *ResultSet) Reset()         { *m = ResultSet{} }
func (m *ResultSet) String() string { return proto.CompactTextString(m) }
func (*ResultSet) ProtoMessage()    {}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []lockswap.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []lockswap.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]lockswap.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "%d keys and %d values", len(kref), len(vref))
	}
	mods := make([]lockswap.Model, len(kref))
	for i := range mods {
		mods[i] = lockswap.Pair(kref[i], vref[i])
	}
	return mods, nil
}

// UnmarshalOneResult will parse a result set and, if it is not empty,
// unmarshal the first result into dest. It returns ErrNotFound for an
// empty set.
func UnmarshalOneResult(raw []byte, dest proto.Message) error {
	var res ResultSet
	if err := proto.Unmarshal(raw, &res); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "result set: %s", err)
	}
	if len(res.Results) == 0 {
		return errors.ErrNotFound
	}
	if err := proto.Unmarshal(res.Results[0], dest); err != nil {
		return errors.Wrapf(errors.ErrInvalidInput, "result: %s", err)
	}
	return nil
}
