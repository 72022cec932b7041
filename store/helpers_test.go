package store

import (
	"testing"

	"github.com/iov-one/hlwallet/errors"
	"github.com/iov-one/hlwallet/hltest/assert"
)

// TestSliceIterator makes sure the basic slice iterator works.
func TestSliceIterator(t *testing.T) {
	const size = 10

	ks := randKeys(size, 8)
	vs := randKeys(size, 40)

	models := make([]Model, size)
	for i := 0; i < size; i++ {
		models[i].Key = ks[i]
		models[i].Value = vs[i]
	}

	// make sure proper iteration works
	iter := NewSliceIterator(models)
	for i := 0; i < size; i++ {
		key, value, err := iter.Next()
		assert.Nil(t, err)
		assert.Equal(t, ks[i], key)
		assert.Equal(t, vs[i], value)
	}
	if _, _, err := iter.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("want iterator done, got %+v", err)
	}

	it := NewSliceIterator(models)
	it.Release()
	if _, _, err := it.Next(); !errors.ErrIteratorDone.Is(err) {
		t.Fatalf("released iterator must be done, got %+v", err)
	}
}

func TestNonAtomicBatch(t *testing.T) {
	db := MemStore()
	b := db.NewBatch()
	assert.Nil(t, b.Set([]byte("a"), []byte("1")))
	assert.Nil(t, b.Set([]byte("b"), []byte("2")))
	assert.Nil(t, b.Delete([]byte("a")))

	// nothing is visible before the write
	v, err := db.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Nil(t, v)

	assert.Nil(t, b.Write())
	v, err = db.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), v)
	has, err := db.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}
