package iavl

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/hlwallet/hltest/assert"
	"github.com/iov-one/hlwallet/store"
)

// makeBase returns the base layer
//
// If you want to test a different kvstore implementation
// you can copy most of these tests and change makeBase.
// Once that passes, customize and extend as you wish
func makeBase() (store.CacheableKVStore, func()) {
	commit, close := makeCommitStore()
	return commit.Adapter(), close
}

func makeCommitStore() (CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit := NewCommitStore(tmpDir, "base")
	close := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, close
}

var suite = store.NewTestSuite(makeBase)

func TestCacheGetSet(t *testing.T) {
	suite.GetSet(t)
}

func TestCacheConflicts(t *testing.T) {
	suite.CacheConflicts(t)
}

func TestFuzzCacheIterator(t *testing.T) {
	suite.FuzzIterator(t)
}

func TestConflictCacheIterator(t *testing.T) {
	suite.IteratorWithConflicts(t)
}

func TestNumericKeyOrder(t *testing.T) {
	suite.NumericKeyOrder(t)
}

func queryKey(deadline, seqno uint32) []byte {
	k := make([]byte, 12)
	copy(k, "hlq:")
	binary.BigEndian.PutUint32(k[4:], deadline)
	binary.BigEndian.PutUint32(k[8:], seqno)
	return k
}

// TestCommitCleanup commits accepted query ids, then commits a cleanup that
// forgets one of them, checking a parallel cache sees only committed data.
func TestCommitCleanup(t *testing.T) {
	var (
		state = []byte("hls:state")
		older = queryKey(100, 1)
		newer = queryKey(500, 2)
	)

	commit, close := makeCommitStore()
	defer close()
	// keep one version only to trigger pruning
	commit.numHistory = 1

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	accepted := commit.CacheWrap()
	assert.Nil(t, accepted.Set(state, []byte("w0")))
	assert.Nil(t, accepted.Set(older, []byte("a")))
	assert.Nil(t, accepted.Set(newer, []byte("b")))
	assert.Nil(t, accepted.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	cleanup := commit.CacheWrap()
	assert.Nil(t, cleanup.Delete(older))
	assert.Nil(t, cleanup.Set(state, []byte("w1")))
	side := commit.CacheWrap()

	suite.AssertGetHas(t, side, older, []byte("a"), true)
	suite.AssertGetHas(t, side, state, []byte("w0"), true)
	suite.AssertGetHas(t, cleanup, older, nil, false)
	suite.AssertGetHas(t, cleanup, state, []byte("w1"), true)

	assert.Nil(t, cleanup.Write())
	suite.AssertGetHas(t, side, older, nil, false)
	suite.AssertGetHas(t, side, newer, []byte("b"), true)
	suite.AssertGetHas(t, side, state, []byte("w1"), true)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
}

// TestReloadFromDisk ensures that committed data survives closing the
// database and that uncommitted writes are lost.
func TestReloadFromDisk(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	k1, v1 := []byte("committed"), []byte("yes")
	k2, v2 := []byte("pending"), []byte("no")

	commit := NewCommitStore(tmpDir, "wallet")
	assert.Nil(t, commit.LoadLatestVersion())
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set(k1, v1))
	assert.Nil(t, cache.Write())
	_, err = commit.Commit()
	assert.Nil(t, err)

	cache = commit.CacheWrap()
	assert.Nil(t, cache.Set(k2, v2))
	assert.Nil(t, cache.Write())
	commit.Close()

	reopened := NewCommitStore(tmpDir, "wallet")
	defer reopened.Close()
	assert.Nil(t, reopened.LoadLatestVersion())

	id, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)

	got, err := reopened.Get(k1)
	assert.Nil(t, err)
	assert.Equal(t, v1, got)
	got, err = reopened.Get(k2)
	assert.Nil(t, err)
	assert.Nil(t, got)
}
