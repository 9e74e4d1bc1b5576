package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"

	"github.com/iov-one/lockswap/errors"
	"github.com/iov-one/lockswap/swaptest/assert"
)

// TestSuite checks the behaviour every CacheableKVStore must share. The
// memory store and the iavl adapter both run it.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a new empty store and its cleanup.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that a cache sees its parent, hides its own writes from
// the parent until written, and leaves nothing behind when discarded.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	escrow, record := []byte("escrow:1"), []byte("alice")
	vault, balance := []byte("holding:1"), []byte("10")
	nonce, seq := []byte("nonce:alice"), []byte("7")

	s.AssertGetHas(t, base, escrow, nil, false)
	assert.Nil(t, base.Set(escrow, record))
	s.AssertGetHas(t, base, escrow, record, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, escrow, record, true)
	assert.Nil(t, cache.Set(vault, balance))
	s.AssertGetHas(t, cache, vault, balance, true)
	s.AssertGetHas(t, base, vault, nil, false)
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, vault, balance, true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(nonce, seq))
	assert.Nil(t, discarded.Delete(vault))
	discarded.Discard()
	s.AssertGetHas(t, base, nonce, nil, false)
	s.AssertGetHas(t, base, vault, balance, true)

	settle := base.CacheWrap()
	assert.Nil(t, settle.Delete(escrow))
	assert.Nil(t, settle.Delete(vault))
	s.AssertGetHas(t, base, escrow, record, true)
	assert.Nil(t, settle.Write())
	s.AssertGetHas(t, base, escrow, nil, false)
	s.AssertGetHas(t, base, vault, nil, false)
}

// CacheConflicts checks overwrites and deletes of parent values.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	ks := randKeys(4, 16)
	vs := randKeys(4, 40)

	cases := map[string]struct {
		parent []Op
		child  []Op
		// Key is queried, Value is expected. A nil value means missing.
		inParent []Model
		inChild  []Model
	}{
		"overwrite": {
			parent:   []Op{SetOp(ks[0], vs[0])},
			child:    []Op{SetOp(ks[0], vs[1])},
			inParent: []Model{Pair(ks[0], vs[0])},
			inChild:  []Model{Pair(ks[0], vs[1])},
		},
		"delete": {
			parent:   []Op{SetOp(ks[0], vs[0]), SetOp(ks[1], vs[1])},
			child:    []Op{DelOp(ks[1])},
			inParent: []Model{Pair(ks[0], vs[0]), Pair(ks[1], vs[1])},
			inChild:  []Model{Pair(ks[0], vs[0]), Pair(ks[1], nil)},
		},
		"delete then set again": {
			parent:   []Op{SetOp(ks[2], vs[2])},
			child:    []Op{DelOp(ks[2]), SetOp(ks[2], vs[3])},
			inParent: []Model{Pair(ks[2], vs[2])},
			inChild:  []Model{Pair(ks[2], vs[3])},
		},
		"add next to parent data": {
			parent:   []Op{SetOp(ks[0], vs[0])},
			child:    []Op{SetOp(ks[3], vs[3])},
			inParent: []Model{Pair(ks[0], vs[0]), Pair(ks[3], nil)},
			inChild:  []Model{Pair(ks[0], vs[0]), Pair(ks[3], vs[3])},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()
			applyOps(t, parent, tc.parent)

			child := parent.CacheWrap()
			applyOps(t, child, tc.child)
			for _, q := range tc.inParent {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.inChild {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.inChild {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// RandomRanges runs bounded and unbounded range queries in both directions
// over random data. Deletes of keys that never existed must not show up.
func (s *TestSuite) RandomRanges(t *testing.T) {
	const size = 40

	own := randModels(size, 8, 40)
	parentOwn := randModels(size, 8, 40)
	childOps := append(setOps(own...), delOps(randModels(10, 8, 40)...)...)
	parentOps := append(setOps(parentOwn...), delOps(randModels(10, 8, 40)...)...)

	cases := map[string]struct {
		parent []Op
		want   []Model
	}{
		"child only":        {want: sortModels(own)},
		"child over parent": {parent: parentOps, want: sortModels(append(own, parentOwn...))},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			w := tc.want
			n := len(w)
			iterCase{
				pre:   tc.parent,
				child: childOps,
				queries: []rangeQuery{
					{nil, nil, false, w},
					{w[5].Key, nil, false, w[5:]},
					{nil, w[n-3].Key, false, w[:n-3]},
					{w[11].Key, w[29].Key, false, w[11:29]},
					{nil, nil, true, reverse(w)},
					{w[21].Key, nil, true, reverse(w[21:])},
					{nil, w[8].Key, true, reverse(w[:8])},
					{w[2].Key, w[17].Key, true, reverse(w[2:17])},
				},
			}.verify(t, base)
		})
	}
}

// IteratorWithConflicts checks that child writes shadow parent values
// during iteration.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	ms := randModels(6, 20, 100)
	a, a2, b, b2, c, d := ms[0], ms[1], ms[2], ms[3], ms[4], ms[5]
	a2.Key = a.Key
	b2.Key = b.Key

	abc := sortModels([]Model{a, b, c})
	replaced := sortModels([]Model{a2, b2, c, d})

	cases := map[string]iterCase{
		"child only": {
			child:   setOps(a, b, c),
			queries: []rangeQuery{{nil, nil, false, abc}, {nil, nil, true, reverse(abc)}},
		},
		"parent only": {
			pre:     setOps(a, b, c),
			queries: []rangeQuery{{nil, nil, false, abc}, {abc[1].Key, abc[2].Key, false, abc[1:2]}},
		},
		"split between both": {
			pre:     setOps(a, b),
			child:   setOps(c),
			queries: []rangeQuery{{nil, nil, false, abc}, {nil, nil, true, reverse(abc)}},
		},
		"child values win": {
			pre:   setOps(a, b, c),
			child: setOps(a2, b2, d),
			queries: []rangeQuery{
				{nil, nil, false, replaced},
				{replaced[1].Key, replaced[3].Key, false, replaced[1:3]},
				{nil, nil, true, reverse(replaced)},
			},
		},
		"deletes hide parent values": {
			pre:   setOps(a, c, d),
			child: delOps(a, b, d),
			queries: []rangeQuery{
				{nil, nil, false, []Model{c}},
				{nil, c.Key, false, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// NestedCaches checks that writes travel through every cache layer down to
// the base only when each layer is written.
func (s *TestSuite) NestedCaches(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	first := base.CacheWrap()
	second := first.CacheWrap()

	k, v := []byte("escrow"), []byte("pending")
	assert.Nil(t, second.Set(k, v))
	s.AssertGetHas(t, first, k, nil, false)

	assert.Nil(t, second.Write())
	s.AssertGetHas(t, first, k, v, true)
	s.AssertGetHas(t, base, k, nil, false)

	assert.Nil(t, first.Write())
	s.AssertGetHas(t, base, k, v, true)

	third := base.CacheWrap()
	assert.Nil(t, third.Delete(k))
	third.Discard()
	s.AssertGetHas(t, base, k, v, true)
}

// IteratorRelease checks that a released iterator does not block writes and
// that releasing twice is safe.
func (s *TestSuite) IteratorRelease(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	assert.Nil(t, base.Set([]byte("a"), []byte("A")))
	assert.Nil(t, base.Set([]byte("b"), []byte("B")))
	cache := base.CacheWrap()

	it, err := cache.Iterator([]byte("a"), []byte("z"))
	assert.Nil(t, err)
	key, _, err := it.Next()
	assert.Nil(t, err)
	assert.Equal(t, []byte("a"), key)
	it.Release()
	it.Release()

	rit, err := cache.ReverseIterator([]byte("a"), []byte("z"))
	assert.Nil(t, err)
	key, _, err = rit.Next()
	assert.Nil(t, err)
	assert.Equal(t, []byte("b"), key)
	rit.Release()

	assert.Nil(t, cache.Delete([]byte("a")))
	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, []byte("a"), nil, false)
}

// AssertGetHas checks both Get and Has for key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func applyOps(t testing.TB, db SetDeleter, ops []Op) {
	t.Helper()
	for _, op := range ops {
		assert.Nil(t, op.Apply(db))
	}
}

// iterCase applies pre to the base and child to a cache over it, then runs
// every query against the cache.
type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func (c iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	applyOps(t, base, c.pre)
	child := base.CacheWrap()
	applyOps(t, child, c.child)

	for _, q := range c.queries {
		var iter Iterator
		var err error
		if q.reverse {
			iter, err = child.ReverseIterator(q.start, q.end)
		} else {
			iter, err = child.Iterator(q.start, q.end)
		}
		assert.Nil(t, err)

		for i, want := range q.expected {
			key, value, err := iter.Next()
			assert.Nil(t, err)
			if !bytes.Equal(want.Key, key) {
				t.Fatalf("key %d: want %X, got %X", i, want.Key, key)
			}
			assert.Equal(t, want.Value, value)
		}
		if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
			t.Fatalf("want end of iteration, got %+v", err)
		}
		iter.Release()
	}
}

func randBytes(length int) []byte {
	res := make([]byte, length)
	if _, err := rand.Read(res); err != nil {
		panic(err)
	}
	return res
}

func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		res[i] = randBytes(size)
	}
	return res
}

func randModels(count, keySize, valueSize int) []Model {
	models := make([]Model, count)
	for i := range models {
		models[i] = Pair(randBytes(keySize), randBytes(valueSize))
	}
	return models
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

// sortModels returns a copy of models ordered by key.
func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func setOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func delOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
