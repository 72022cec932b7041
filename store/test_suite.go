package store

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sort"
	"testing"

	"github.com/iov-one/hlwallet/errors"
	"github.com/iov-one/hlwallet/hltest/assert"
)

/*
TestSuite runs the same checks against any CacheableKVStore implementation.
Only the constructor differs between btree_test.go and iavl/adapter_test.go.

The data mirrors what a wallet keeps: a single state record under "hls:"
and processed query ids under "hlq:" followed by the big endian encoded id.
Every store used to back a wallet must pass the whole suite.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

var (
	suiteStateKey = []byte("hls:state")
	suiteQueuePfx = []byte("hlq:")
	suiteQueueEnd = []byte("hlq;")
)

// suiteQueryKey returns the key of a processed query id.
func suiteQueryKey(deadline, seqno uint32) []byte {
	k := make([]byte, len(suiteQueuePfx)+8)
	copy(k, suiteQueuePfx)
	binary.BigEndian.PutUint32(k[len(suiteQueuePfx):], deadline)
	binary.BigEndian.PutUint32(k[len(suiteQueuePfx)+4:], seqno)
	return k
}

// GetSet checks reads and writes through cache layers that are written or
// discarded.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	var (
		stateValue = []byte("deployed")
		query      = suiteQueryKey(1, 7)
		queryValue = []byte("processed")
		other      = suiteQueryKey(2, 0)
	)

	s.AssertGetHas(t, base, suiteStateKey, nil, false)
	assert.Nil(t, base.Set(suiteStateKey, stateValue))
	s.AssertGetHas(t, base, suiteStateKey, stateValue, true)

	// A cache reads through to the base, its writes stay local.
	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, suiteStateKey, stateValue, true)
	assert.Nil(t, cache.Set(query, queryValue))
	s.AssertGetHas(t, cache, query, queryValue, true)
	s.AssertGetHas(t, base, query, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, suiteStateKey, stateValue, true)
	s.AssertGetHas(t, base, query, queryValue, true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(other, queryValue))
	assert.Nil(t, discarded.Delete(suiteStateKey))
	discarded.Discard()
	s.AssertGetHas(t, base, other, nil, false)
	s.AssertGetHas(t, base, suiteStateKey, stateValue, true)

	written := base.CacheWrap()
	assert.Nil(t, written.Delete(query))
	assert.Nil(t, written.Write())
	s.AssertGetHas(t, base, query, nil, false)
	s.AssertGetHas(t, base, suiteStateKey, stateValue, true)
}

// CacheConflicts checks a cache layer that updates the state record,
// forgets one query id and records another, the way a single wallet
// operation does.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	var (
		first  = suiteQueryKey(100, 1)
		second = suiteQueryKey(100, 2)
		third  = suiteQueryKey(200, 1)
	)

	cases := map[string]struct {
		parentOps []Op
		childOps  []Op
		// Key is what is queried, Value is what is expected. A nil
		// value means the key must not exist.
		parentWant []Model
		childWant  []Model
	}{
		"cleanup forgets and advances the watermark": {
			parentOps:  []Op{SetOp(suiteStateKey, []byte("w0")), SetOp(first, []byte("a")), SetOp(second, []byte("b"))},
			childOps:   []Op{DelOp(first), SetOp(suiteStateKey, []byte("w1"))},
			parentWant: []Model{Pair(suiteStateKey, []byte("w0")), Pair(first, []byte("a")), Pair(second, []byte("b"))},
			childWant:  []Model{Pair(suiteStateKey, []byte("w1")), Pair(first, nil), Pair(second, []byte("b"))},
		},
		"accept records a new query id": {
			parentOps:  []Op{SetOp(suiteStateKey, []byte("w0")), SetOp(first, []byte("a"))},
			childOps:   []Op{SetOp(third, []byte("c"))},
			parentWant: []Model{Pair(first, []byte("a")), Pair(third, nil)},
			childWant:  []Model{Pair(first, []byte("a")), Pair(third, []byte("c"))},
		},
		"delete of a missing key is harmless": {
			parentOps:  []Op{SetOp(first, []byte("a"))},
			childOps:   []Op{DelOp(second), DelOp(third)},
			parentWant: []Model{Pair(first, []byte("a")), Pair(second, nil)},
			childWant:  []Model{Pair(first, []byte("a")), Pair(second, nil), Pair(third, nil)},
		},
		"overwrite after delete restores the key": {
			parentOps:  []Op{SetOp(first, []byte("a"))},
			childOps:   []Op{DelOp(first), SetOp(first, []byte("again"))},
			parentWant: []Model{Pair(first, []byte("a"))},
			childWant:  []Model{Pair(first, []byte("again"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, q := range tc.parentWant {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childWant {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childWant {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// FuzzIterator fills both layers with random query ids, forgets some of them
// in the cache and compares range scans of the queue with the expected
// sorted content. The state record must never show up in a queue scan.
func (s *TestSuite) FuzzIterator(t *testing.T) {
	const (
		parentSize = 60
		childSize  = 40
		forget     = 25
	)
	rnd := mrand.New(mrand.NewSource(1))
	randomQuery := func() Model {
		// Few deadlines with many seqnos each, as produced by a busy
		// wallet.
		deadline := 1700000000 + uint32(rnd.Intn(8))
		return Pair(suiteQueryKey(deadline, rnd.Uint32()), []byte{byte(rnd.Intn(256))})
	}

	base, cleanup := s.makeBase()
	defer cleanup()

	want := make(map[string]Model)
	assert.Nil(t, base.Set(suiteStateKey, []byte("state")))
	for i := 0; i < parentSize; i++ {
		m := randomQuery()
		assert.Nil(t, base.Set(m.Key, m.Value))
		want[string(m.Key)] = m
	}
	child := base.CacheWrap()
	for i := 0; i < childSize; i++ {
		m := randomQuery()
		assert.Nil(t, child.Set(m.Key, m.Value))
		want[string(m.Key)] = m
	}
	forgotten := 0
	for key := range want {
		if forgotten == forget {
			break
		}
		assert.Nil(t, child.Delete([]byte(key)))
		delete(want, key)
		forgotten++
	}

	queue := make([]Model, 0, len(want))
	for _, m := range want {
		queue = append(queue, m)
	}
	queue = sortModels(queue)
	n := len(queue)

	queries := map[string]rangeQuery{
		"whole queue":          {suiteQueuePfx, suiteQueueEnd, false, queue},
		"from a query id":      {queue[10].Key, suiteQueueEnd, false, queue[10:]},
		"up to a query id":     {suiteQueuePfx, queue[n-8].Key, false, queue[:n-8]},
		"between query ids":    {queue[7].Key, queue[31].Key, false, queue[7:31]},
		"whole queue reversed": {suiteQueuePfx, suiteQueueEnd, true, reverse(queue)},
		"reversed from":        {queue[20].Key, suiteQueueEnd, true, reverse(queue[20:])},
		"reversed up to":       {suiteQueuePfx, queue[12].Key, true, reverse(queue[:12])},
		"reversed between":     {queue[3].Key, queue[27].Key, true, reverse(queue[3:27])},
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			q.verify(t, child)
		})
	}
}

// IteratorWithConflicts scans the queue the way a cleanup does: ascending,
// deleting every returned key from the cache layer while the iterator is
// still open. A discarded cleanup leaves the parent untouched, a written one
// removes exactly the scanned keys.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	var all []Model
	for deadline := uint32(10); deadline < 15; deadline++ {
		for seqno := uint32(0); seqno < 3; seqno++ {
			m := Pair(suiteQueryKey(deadline, seqno), []byte{byte(deadline), byte(seqno)})
			assert.Nil(t, base.Set(m.Key, m.Value))
			all = append(all, m)
		}
	}
	assert.Nil(t, base.Set(suiteStateKey, []byte("w0")))

	drain := func(kv KVCacheWrap, limit int) {
		t.Helper()
		it, err := kv.Iterator(suiteQueuePfx, suiteQueueEnd)
		assert.Nil(t, err)
		defer it.Release()
		for i := 0; i < limit; i++ {
			key, _, err := it.Next()
			assert.Nil(t, err)
			assert.Nil(t, kv.Delete(key))
		}
		assert.Nil(t, kv.Set(suiteStateKey, []byte("w1")))
	}

	discarded := base.CacheWrap()
	drain(discarded, 4)
	rangeQuery{suiteQueuePfx, suiteQueueEnd, false, all[4:]}.verify(t, discarded)
	discarded.Discard()
	rangeQuery{suiteQueuePfx, suiteQueueEnd, false, all}.verify(t, base)
	s.AssertGetHas(t, base, suiteStateKey, []byte("w0"), true)

	written := base.CacheWrap()
	drain(written, 7)
	assert.Nil(t, written.Write())
	rangeQuery{suiteQueuePfx, suiteQueueEnd, false, all[7:]}.verify(t, base)
	rangeQuery{suiteQueuePfx, suiteQueueEnd, true, reverse(all[7:])}.verify(t, base)
	s.AssertGetHas(t, base, suiteStateKey, []byte("w1"), true)

	// Re-recording a forgotten key in a new layer is visible in the scan.
	again := base.CacheWrap()
	assert.Nil(t, again.Set(all[0].Key, []byte("again")))
	want := append([]Model{Pair(all[0].Key, []byte("again"))}, all[7:]...)
	rangeQuery{suiteQueuePfx, suiteQueueEnd, false, want}.verify(t, again)
}

// NumericKeyOrder ensures that query id keys are iterated in the numeric
// order of the id, across cache layers.
func (s *TestSuite) NumericKeyOrder(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	idKey := func(id uint64) []byte {
		return suiteQueryKey(uint32(id>>32), uint32(id))
	}

	// Values on both layers must interleave correctly.
	parentIDs := []uint64{1 << 40, 7, 1<<32 | 5}
	childIDs := []uint64{1 << 32, 300, 1<<63 + 1}
	for _, id := range parentIDs {
		assert.Nil(t, base.Set(idKey(id), []byte{1}))
	}
	child := base.CacheWrap()
	for _, id := range childIDs {
		assert.Nil(t, child.Set(idKey(id), []byte{2}))
	}
	// Deleting from the child hides the parent value.
	assert.Nil(t, child.Delete(idKey(7)))

	it, err := child.Iterator(suiteQueuePfx, suiteQueueEnd)
	assert.Nil(t, err)
	defer it.Release()
	var got []uint64
	for {
		key, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			break
		}
		assert.Nil(t, err)
		got = append(got, binary.BigEndian.Uint64(key[len(suiteQueuePfx):]))
	}
	assert.Equal(t, []uint64{300, 1 << 32, 1<<32 | 5, 1 << 40, 1<<63 + 1}, got)
}

// AssertGetHas checks that Get and Has agree on the presence of key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	if exists != has {
		t.Fatalf("key %x: want has=%v, got %v", key, has, exists)
	}
}

// randKeys returns count random keys of given size.
func randKeys(count, size int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		res[i] = make([]byte, size)
		if _, err := rand.Read(res[i]); err != nil {
			panic(err)
		}
	}
	return res
}

// rangeQuery is a scan of [start, end) and the models it must return.
type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func (q rangeQuery) verify(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()
	var (
		it  Iterator
		err error
	)
	if q.reverse {
		it, err = kv.ReverseIterator(q.start, q.end)
	} else {
		it, err = kv.Iterator(q.start, q.end)
	}
	assert.Nil(t, err)
	defer it.Release()

	for i, want := range q.expected {
		key, value, err := it.Next()
		assert.Nil(t, err)
		if !bytes.Equal(want.Key, key) {
			t.Fatalf("item %d: want key %x, got %x", i, want.Key, key)
		}
		assert.Equal(t, want.Value, value)
	}
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done after %d items, got %+v", len(q.expected), err)
	}
}

// reverse returns a reversed copy.
func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}

// sortModels returns a copy sorted by key.
func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}
