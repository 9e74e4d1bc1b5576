package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/lockswap/errors"
)

// cacheIterator merges the items cached in a btree with the iterator of
// the parent store. Cached items take precedence over parent values with
// the same key and deleted items hide them.
type cacheIterator struct {
	local   []btree.Item
	idx     int
	reverse bool

	parent Iterator
	pkey   []byte
	pvalue []byte
	pvalid bool
}

var _ Iterator = (*cacheIterator)(nil)

func newCacheIterator(local []btree.Item, parent Iterator, reverse bool) (*cacheIterator, error) {
	it := &cacheIterator{
		local:   local,
		reverse: reverse,
		parent:  parent,
	}
	if err := it.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return it, nil
}

func (it *cacheIterator) advanceParent() error {
	if it.parent == nil {
		it.pvalid = false
		return nil
	}
	key, value, err := it.parent.Next()
	if errors.ErrIteratorDone.Is(err) {
		it.pkey, it.pvalue, it.pvalid = nil, nil, false
		return nil
	}
	if err != nil {
		return err
	}
	it.pkey, it.pvalue, it.pvalid = key, value, true
	return nil
}

// Next returns the next entry, in the iteration order, from either the
// cache or the parent.
func (it *cacheIterator) Next() ([]byte, []byte, error) {
	for {
		hasLocal := it.idx < len(it.local)
		if !hasLocal && !it.pvalid {
			return nil, nil, errors.ErrIteratorDone
		}

		// cmp < 0 means the cached item comes first, cmp > 0 the
		// parent one and zero that both share the key.
		cmp := -1
		switch {
		case !hasLocal:
			cmp = 1
		case it.pvalid:
			cmp = bytes.Compare(it.local[it.idx].(keyer).Key(), it.pkey)
			if it.reverse {
				cmp = -cmp
			}
		}

		if cmp > 0 {
			key, value := it.pkey, it.pvalue
			if err := it.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		}

		item := it.local[it.idx]
		it.idx++
		if cmp == 0 {
			if err := it.advanceParent(); err != nil {
				return nil, nil, err
			}
		}
		switch t := item.(type) {
		case setItem:
			return t.key, t.value, nil
		case deletedItem:
			continue
		default:
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", item)
		}
	}
}

// Release releases the parent iterator. Calling it more than once is safe.
func (it *cacheIterator) Release() {
	if it.parent != nil {
		it.parent.Release()
		it.parent = nil
	}
	it.local = nil
	it.pvalid = false
}

////////////////////////////////////////////////
// Slice -> Iterator

// sliceIterator iterates over a preloaded slice of models
type sliceIterator struct {
	data []Model
	idx  int
}

var _ Iterator = (*sliceIterator)(nil)

// NewSliceIterator creates a new Iterator over this slice
func NewSliceIterator(data []Model) Iterator {
	return &sliceIterator{
		data: data,
	}
}

// Next returns the next model of the slice.
func (s *sliceIterator) Next() (key, value []byte, err error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[s.idx]
	s.idx++
	return m.Key, m.Value, nil
}

// Release drops the slice.
func (s *sliceIterator) Release() {
	s.data = nil
}
