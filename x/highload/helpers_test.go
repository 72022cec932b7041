package highload

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/hltest/assert"
	"github.com/iov-one/hlwallet/store"
)

// testNow is the block time used by most tests.
const testNow uint32 = 1700000000

const testWalletID = BaseWalletID

// testKey returns a deterministic private key, different for every seed
// byte.
func testKey(t testing.TB, seed byte) crypto.PrivateKey {
	t.Helper()
	key, err := crypto.PrivKeyEd25519FromSeed(bytes.Repeat([]byte{seed}, crypto.SeedSize))
	assert.Nil(t, err)
	return key
}

// deployTestWallet returns an in memory store with a freshly deployed
// wallet owned by the returned key.
func deployTestWallet(t testing.TB) (store.CacheableKVStore, crypto.PrivateKey) {
	t.Helper()
	key := testKey(t, 1)
	db := store.MemStore()

	state, err := NewDeploymentState(testWalletID, key.PublicKey())
	assert.Nil(t, err)
	raw, err := state.Marshal()
	assert.Nil(t, err)
	_, err = NewWallet(nil).Deploy(db, raw)
	assert.Nil(t, err)
	return db, key
}

// signedBatch returns a batch with a single transfer, signed by given key.
func signedBatch(t testing.TB, key crypto.Signer, walletID uint32, id QueryID) *SignedBatch {
	t.Helper()
	b := &SignedBatch{
		WalletID: walletID,
		QueryID:  id,
		Entries: []MessageEntry{
			{Index: 0, Mode: DefaultSendMode, Message: []byte("transfer 1 unit")},
		},
	}
	assert.Nil(t, SignBatch(key, b))
	return b
}

// blockCtx returns a context with the block time set to given unix seconds.
func blockCtx(now uint32) context.Context {
	return hlwallet.WithBlockTime(context.Background(), blockTime(now))
}

func blockTime(now uint32) time.Time {
	return time.Unix(int64(now), 0)
}

func mustQuery(t testing.TB, db hlwallet.ReadOnlyKVStore, id QueryID) QueryState {
	t.Helper()
	s, err := Query(db, id)
	assert.Nil(t, err)
	return s
}
