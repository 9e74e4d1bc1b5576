package app

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// abciStore exposes the raw store query ("/") of an ABCI application as a
// ReadOnlyKVStore.
type abciStore struct {
	app abci.Application
}

var _ lockswap.ReadOnlyKVStore = (*abciStore)(nil)

func newABCIStore(app abci.Application) *abciStore {
	return &abciStore{app: app}
}

// Get will query for exactly one value over the abci store.
func (a *abciStore) Get(key []byte) ([]byte, error) {
	models, err := a.query("/", key)
	if err != nil {
		return nil, err
	}
	switch len(models) {
	case 0:
		return nil, nil
	case 1:
		return models[0].Value, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidState, "%d results for a key", len(models))
	}
}

// Has returns true if the given key in in the abci app store
func (a *abciStore) Has(key []byte) (bool, error) {
	v, err := a.Get(key)
	return v != nil, err
}

// Iterator returns all entries within [start, end). The query sent is a
// prefix query for the longest common prefix of both bounds.
func (a *abciStore) Iterator(start, end []byte) (lockswap.Iterator, error) {
	models, err := a.rangeQuery(start, end)
	if err != nil {
		return nil, err
	}
	return &sliceIterator{data: models}, nil
}

// ReverseIterator works like Iterator, in descending key order.
func (a *abciStore) ReverseIterator(start, end []byte) (lockswap.Iterator, error) {
	models, err := a.rangeQuery(start, end)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return &sliceIterator{data: models}, nil
}

func (a *abciStore) rangeQuery(start, end []byte) ([]lockswap.Model, error) {
	models, err := a.query("/?"+lockswap.PrefixQueryMod, commonPrefix(start, end))
	if err != nil {
		return nil, err
	}
	res := models[:0]
	for _, m := range models {
		if start != nil && bytes.Compare(m.Key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(m.Key, end) >= 0 {
			continue
		}
		res = append(res, m)
	}
	return res, nil
}

func (a *abciStore) query(path string, data []byte) ([]lockswap.Model, error) {
	resp := a.app.Query(abci.RequestQuery{Path: path, Data: data})
	if resp.Code != errors.SuccessABCICode {
		return nil, errors.ABCIError(resp.Code, resp.Log)
	}
	var keys, values ResultSet
	if err := proto.Unmarshal(resp.Key, &keys); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "keys: %s", err)
	}
	if err := proto.Unmarshal(resp.Value, &values); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "values: %s", err)
	}
	return JoinResults(&keys, &values)
}

func commonPrefix(a, b []byte) []byte {
	if a == nil || b == nil {
		return nil
	}
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return a[:n]
}

// sliceIterator iterates over a slice of models
type sliceIterator struct {
	data []lockswap.Model
	idx  int
}

var _ lockswap.Iterator = (*sliceIterator)(nil)

func (s *sliceIterator) Next() ([]byte, []byte, error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

func (s *sliceIterator) Release() {
	s.data = nil
}
