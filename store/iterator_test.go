package store

import (
	"testing"

	"github.com/iov-one/hlwallet/hltest/assert"
)

func TestCacheIteratorRelease(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("A")))
	cache := db.CacheWrap()

	it, err := cache.Iterator([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	// Release must be a synchronous operation.
	it.Release()
	assert.Nil(t, db.Delete([]byte("a")))
}

func TestCacheReverseIteratorRelease(t *testing.T) {
	db := MemStore()
	assert.Nil(t, db.Set([]byte("a"), []byte("A")))
	cache := db.CacheWrap()

	it, err := cache.ReverseIterator([]byte("a"), []byte("z"))
	if err != nil {
		t.Fatalf("cannot create iterator: %s", err)
	}
	it.Release()
	assert.Nil(t, db.Delete([]byte("a")))
}

func TestCacheIteratorDeleteWhileScanning(t *testing.T) {
	db := MemStore()
	for _, k := range []string{"a", "b", "c"} {
		assert.Nil(t, db.Set([]byte(k), []byte(k)))
	}
	cache := db.CacheWrap()

	// Deleting already returned keys in the cache layer must not affect
	// the iteration of the rest of the range.
	it, err := cache.Iterator(nil, nil)
	assert.Nil(t, err)
	defer it.Release()

	var got []string
	for i := 0; i < 3; i++ {
		key, _, err := it.Next()
		assert.Nil(t, err)
		got = append(got, string(key))
		assert.Nil(t, cache.Delete(key))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
