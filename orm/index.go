package orm

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

const compactIdxPrefix = "_i."

// Indexer calculates the secondary index key for a given model. A nil key
// means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// compactIndex stores all primary keys indexed under a value in a single
// entry. A unique index stores one key, a non unique one a MultiRef.
type compactIndex struct {
	name   string
	id     []byte
	unique bool
	index  Indexer
	refKey func([]byte) []byte
}

var _ lockswap.QueryHandler = (*compactIndex)(nil)

func newCompactIndex(name string, indexer Indexer, unique bool, refKey func([]byte) []byte) *compactIndex {
	return &compactIndex{
		name:   name,
		id:     append([]byte(compactIdxPrefix), []byte(name+":")...),
		index:  indexer,
		unique: unique,
		refKey: refKey,
	}
}

// indexKey is the full key we store in the db, including prefix
func (i *compactIndex) indexKey(key []byte) []byte {
	l := len(i.id)
	out := make([]byte, l+len(key))
	copy(out, i.id)
	copy(out[l:], key)
	return out
}

// Update handles updating the reference to the model with the given
// primary key in the secondary index.
//
// prev == nil means insert
// save == nil means delete
// both == nil is error
func (i *compactIndex) Update(db lockswap.KVStore, pk []byte, prev, save Model) error {
	switch {
	case prev == nil && save == nil:
		return errors.Wrap(errors.ErrHuman, "update requires at least one non-nil model")
	case prev == nil:
		key, err := i.index(save)
		if err != nil || key == nil {
			return err
		}
		return i.insert(db, key, pk)
	case save == nil:
		key, err := i.index(prev)
		if err != nil || key == nil {
			return err
		}
		return i.remove(db, key, pk)
	}

	prevKey, err := i.index(prev)
	if err != nil {
		return err
	}
	saveKey, err := i.index(save)
	if err != nil {
		return err
	}
	if bytes.Equal(prevKey, saveKey) {
		return nil
	}
	if prevKey != nil {
		if err := i.remove(db, prevKey, pk); err != nil {
			return err
		}
	}
	if saveKey != nil {
		return i.insert(db, saveKey, pk)
	}
	return nil
}

func (i *compactIndex) insert(db lockswap.KVStore, key, pk []byte) error {
	dbkey := i.indexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}

	if i.unique {
		if cur != nil {
			return errors.Wrapf(errors.ErrDuplicate, "unique index %s: %X", i.name, key)
		}
		return db.Set(dbkey, pk)
	}

	var refs MultiRef
	if cur != nil {
		if err := proto.Unmarshal(cur, &refs); err != nil {
			return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	raw, err := proto.Marshal(&refs)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	return db.Set(dbkey, raw)
}

func (i *compactIndex) remove(db lockswap.KVStore, key, pk []byte) error {
	dbkey := i.indexKey(key)
	cur, err := db.Get(dbkey)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Wrapf(errors.ErrNotFound, "index %s: %X", i.name, key)
	}

	if i.unique {
		if !bytes.Equal(cur, pk) {
			return errors.Wrapf(errors.ErrInvalidState, "index %s references another key", i.name)
		}
		return db.Delete(dbkey)
	}

	var refs MultiRef
	if err := proto.Unmarshal(cur, &refs); err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(dbkey)
	}
	raw, err := proto.Marshal(&refs)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	return db.Set(dbkey, raw)
}

// refs returns all primary keys stored under given index value.
func (i *compactIndex) refs(db lockswap.ReadOnlyKVStore, key []byte) ([][]byte, error) {
	raw, err := db.Get(i.indexKey(key))
	if err != nil {
		return nil, err
	}
	return i.decode(raw)
}

func (i *compactIndex) decode(raw []byte) ([][]byte, error) {
	if raw == nil {
		return nil, nil
	}
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := proto.Unmarshal(raw, &refs); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidState, "index %s: %s", i.name, err)
	}
	return refs.Refs, nil
}

// Query handles queries from the QueryRouter. Referenced models are
// returned with their full database keys.
func (i *compactIndex) Query(db lockswap.ReadOnlyKVStore, mod string, data []byte) ([]lockswap.Model, error) {
	var refs [][]byte
	switch mod {
	case lockswap.KeyQueryMod:
		r, err := i.refs(db, data)
		if err != nil {
			return nil, err
		}
		refs = r
	case lockswap.PrefixQueryMod:
		entries, err := queryPrefix(db, i.indexKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			r, err := i.decode(e.Value)
			if err != nil {
				return nil, err
			}
			refs = append(refs, r...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query mod %q", mod)
	}
	return i.loadRefs(db, refs)
}

func (i *compactIndex) loadRefs(db lockswap.ReadOnlyKVStore, refs [][]byte) ([]lockswap.Model, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	res := make([]lockswap.Model, len(refs))
	for j, ref := range refs {
		key := i.refKey(ref)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		res[j] = lockswap.Pair(key, value)
	}
	return res, nil
}
