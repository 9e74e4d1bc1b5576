/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of model.
* It has a primary key and may possess secondary indexes (1:1 or 1:N).
* Easy queries for one and iteration.
*/
package orm

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	proto.Message
	Validate() error
}

// ModelBucket stores models of a single type under a common prefix.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity,
	// ErrInvalidType is returned.
	One(db lockswap.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns true if an entity with given primary key exists.
	Has(db lockswap.ReadOnlyKVStore, key []byte) (bool, error)

	// ByIndex returns all primary keys indexed under given value by the
	// named index. The models are loaded into destination, a pointer to a
	// slice of model pointers.
	ByIndex(db lockswap.ReadOnlyKVStore, indexName string, key []byte, destination interface{}) ([][]byte, error)

	// Put saves given model in the database. Secondary indexes are
	// updated.
	Put(db lockswap.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db lockswap.KVStore, key []byte) error

	// Register registers this bucket and all its indexes in the query
	// router, under "/name" and "/name/index".
	Register(name string, r lockswap.QueryRouter)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		if _, ok := mb.indexes[name]; ok {
			panic(fmt.Sprintf("index %q registered twice", name))
		}
		mb.indexes[name] = newCompactIndex(mb.name+"_"+name, indexer, unique, mb.dbKey)
	}
}

// NewModelBucket returns a ModelBucket storing models of the same type as
// given example.
func NewModelBucket(name string, example Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("illegal bucket name: %q", name))
	}
	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   reflect.TypeOf(example),
		indexes: make(map[string]*compactIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]*compactIndex
}

var _ ModelBucket = (*modelBucket)(nil)

// dbKey is the full key we store in the db, including prefix.
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (mb *modelBucket) dbKey(key []byte) []byte {
	l := len(mb.prefix)
	out := make([]byte, l+len(key))
	copy(out, mb.prefix)
	copy(out[l:], key)
	return out
}

func (mb *modelBucket) One(db lockswap.ReadOnlyKVStore, key []byte, dest Model) error {
	if reflect.TypeOf(dest) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %s", dest, mb.model)
	}
	found, err := mb.load(db, key, dest)
	if err != nil {
		return err
	}
	if !found {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) load(db lockswap.ReadOnlyKVStore, key []byte, dest Model) (bool, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return false, errors.Wrap(err, "cannot get from the database")
	}
	if raw == nil {
		return false, nil
	}
	if err := proto.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrapf(errors.ErrInvalidModel, "cannot unmarshal %s: %s", mb.name, err)
	}
	return true, nil
}

func (mb *modelBucket) Has(db lockswap.ReadOnlyKVStore, key []byte) (bool, error) {
	if len(key) == 0 {
		return false, errors.Wrap(errors.ErrEmpty, "key")
	}
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return false, errors.Wrap(err, "cannot check the database")
	}
	return ok, nil
}

func (mb *modelBucket) ByIndex(db lockswap.ReadOnlyKVStore, indexName string, key []byte, destination interface{}) ([][]byte, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "name %q", indexName)
	}

	dest := reflect.ValueOf(destination)
	if dest.Kind() != reflect.Ptr || dest.Elem().Kind() != reflect.Slice || dest.Elem().Type().Elem() != mb.model {
		return nil, errors.Wrapf(errors.ErrInvalidType, "destination must be *[]%s, got %T", mb.model, destination)
	}

	refs, err := idx.refs(db, key)
	if err != nil {
		return nil, err
	}
	slice := reflect.MakeSlice(dest.Elem().Type(), 0, len(refs))
	for _, ref := range refs {
		m := reflect.New(mb.model.Elem()).Interface().(Model)
		found, err := mb.load(db, ref, m)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errors.Wrapf(errors.ErrInvalidState, "index %q references missing %X", indexName, ref)
		}
		slice = reflect.Append(slice, reflect.ValueOf(m))
	}
	dest.Elem().Set(slice)
	return refs, nil
}

func (mb *modelBucket) Put(db lockswap.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if reflect.TypeOf(m) != mb.model {
		return errors.Wrapf(errors.ErrInvalidType, "cannot store %T in %s bucket", m, mb.name)
	}
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := proto.Marshal(m)
	if err != nil {
		return errors.Wrapf(errors.ErrInvalidModel, "cannot marshal: %s", err)
	}
	if err := mb.updateIndexes(db, key, m); err != nil {
		return err
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db lockswap.KVStore, key []byte) error {
	if ok, err := mb.Has(db, key); err != nil {
		return err
	} else if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := mb.updateIndexes(db, key, nil); err != nil {
		return err
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "cannot delete from the database")
	}
	return nil
}

func (mb *modelBucket) updateIndexes(db lockswap.KVStore, key []byte, save Model) error {
	if len(mb.indexes) == 0 {
		return nil
	}
	var prev Model
	m := reflect.New(mb.model.Elem()).Interface().(Model)
	found, err := mb.load(db, key, m)
	if err != nil {
		return err
	}
	if found {
		prev = m
	}
	for name, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, save); err != nil {
			return errors.Wrapf(err, "index %q", name)
		}
	}
	return nil
}

func (mb *modelBucket) Register(name string, r lockswap.QueryRouter) {
	if name == "" {
		name = mb.name
	}
	root := "/" + name
	r.Register(root, mb)
	for n, idx := range mb.indexes {
		r.Register(root+"/"+n, idx)
	}
}

// Query handles queries from the QueryRouter
func (mb *modelBucket) Query(db lockswap.ReadOnlyKVStore, mod string, data []byte) ([]lockswap.Model, error) {
	switch mod {
	case lockswap.KeyQueryMod:
		key := mb.dbKey(data)
		value, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		// return nothing on miss
		if value == nil {
			return nil, nil
		}
		return []lockswap.Model{lockswap.Pair(key, value)}, nil
	case lockswap.PrefixQueryMod:
		return queryPrefix(db, mb.dbKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query mod %q", mod)
	}
}
