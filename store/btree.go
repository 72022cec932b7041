package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/hlwallet/errors"
)

// btreeDegree is small because cache layers usually hold only the writes of
// a single wallet operation.
const btreeDegree = 2

// MemStore returns an in-memory store without any persistence. Tests use it
// in place of the iavl store.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// BTreeCacheWrap keeps pending writes in a btree on top of a read only
// store. Writes are forwarded to batch and reach the backing store only
// when Write is called.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over kv. All writes must go through
// batch. A nil free list allocates a new one, pass an existing list to share
// nodes between cache layers.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(btree.DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(btreeDegree, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap returns another cache layer on top of this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch writing into this cache.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all pending writes to the backing store and empties the
// cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all pending writes. Nodes are returned to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(cacheItem{key: key, value: value})
	return b.batch.Set(key, value)
}

func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(cacheItem{key: key, deleted: true})
	return b.batch.Delete(key)
}

func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	item, ok := b.cached(key)
	if !ok {
		return b.back.Get(key)
	}
	if item.deleted {
		return nil, nil
	}
	return item.value, nil
}

func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	item, ok := b.cached(key)
	if !ok {
		return b.back.Has(key)
	}
	return !item.deleted, nil
}

// cached returns the pending write for key, if any.
func (b BTreeCacheWrap) cached(key []byte) (cacheItem, bool) {
	res := b.bt.Get(cacheItem{key: key})
	if res == nil {
		return cacheItem{}, false
	}
	return res.(cacheItem), true
}

// Iterator returns keys within [start, end) in ascending order, merging the
// cache with the backing store.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(ascendBtree(b.bt, start, end), parentIter, false)
}

// ReverseIterator returns keys within [start, end) in descending order,
// merging the cache with the backing store.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(descendBtree(b.bt, start, end), parentIter, true)
}

// cacheItem is a pending write. A deleted item hides the backing store
// value of the same key.
type cacheItem struct {
	key     []byte
	value   []byte
	deleted bool
}

func (c cacheItem) Less(than btree.Item) bool {
	return bytes.Compare(c.key, itemKey(than)) < 0
}

// keyBefore sorts directly before the cache item with the same key. It is
// used as the pivot of descending range scans.
type keyBefore []byte

func (k keyBefore) Less(than btree.Item) bool {
	return bytes.Compare(k, itemKey(than)) <= 0
}

func itemKey(item btree.Item) []byte {
	switch v := item.(type) {
	case cacheItem:
		return v.key
	case keyBefore:
		return v
	default:
		panic(errors.Wrapf(errors.ErrHuman, "unknown btree item %T", item))
	}
}
