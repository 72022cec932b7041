package highload

import (
	"testing"

	"github.com/iov-one/hlwallet/errors"
	"github.com/iov-one/hlwallet/hltest/assert"
	"github.com/iov-one/hlwallet/store"
)

func TestAcceptSingleTransfer(t *testing.T) {
	db, key := deployTestWallet(t)

	id := PackQueryID(testNow+60, 0)
	assert.Equal(t, Unprocessed, mustQuery(t, db, id))

	batch := signedBatch(t, key, testWalletID, id)
	released, err := Accept(db, batch, testNow)
	assert.Nil(t, err)
	assert.Equal(t, batch.Entries, released)
	assert.Equal(t, Processed, mustQuery(t, db, id))

	e, err := Entry(db, id)
	assert.Nil(t, err)
	assert.Equal(t, id, e.QueryID)
	assert.Equal(t, 1, e.Transfers)
}

func TestAcceptDuplicate(t *testing.T) {
	db, key := deployTestWallet(t)

	id := PackQueryID(testNow+60, 7)
	batch := signedBatch(t, key, testWalletID, id)
	_, err := Accept(db, batch, testNow)
	assert.Nil(t, err)

	before := dumpStore(t, db)
	released, err := Accept(db, batch, testNow+1)
	assert.IsErr(t, ErrDuplicateQuery, err)
	assert.Nil(t, released)
	assert.Equal(t, before, dumpStore(t, db))
	assert.Equal(t, Processed, mustQuery(t, db, id))

	// A different batch reusing the same query id is a duplicate as well.
	other := &SignedBatch{
		WalletID: testWalletID,
		QueryID:  id,
		Entries:  []MessageEntry{{Index: 3, Mode: 0, Message: []byte("other")}},
	}
	assert.Nil(t, SignBatch(key, other))
	_, err = Accept(db, other, testNow)
	assert.IsErr(t, ErrDuplicateQuery, err)
}

func TestAcceptRejections(t *testing.T) {
	owner := testKey(t, 1)
	stranger := testKey(t, 2)
	live := PackQueryID(testNow+60, 1)

	cases := map[string]struct {
		batch   func(t testing.TB) *SignedBatch
		wantErr *errors.Error
	}{
		"wallet mismatch": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, owner, testWalletID+1, live)
			},
			wantErr: ErrWalletMismatch,
		},
		"wallet mismatch is checked before signature": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, stranger, testWalletID+1, live)
			},
			wantErr: ErrWalletMismatch,
		},
		"signed by another key": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, stranger, testWalletID, live)
			},
			wantErr: ErrInvalidSignature,
		},
		"signature is checked before expiration": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, stranger, testWalletID, PackQueryID(testNow-1, 1))
			},
			wantErr: ErrInvalidSignature,
		},
		"deadline equal to now": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, owner, testWalletID, PackQueryID(testNow, 1))
			},
			wantErr: ErrExpiredQuery,
		},
		"deadline in the past": {
			batch: func(t testing.TB) *SignedBatch {
				return signedBatch(t, owner, testWalletID, PackQueryID(testNow-100, 1))
			},
			wantErr: ErrExpiredQuery,
		},
		"malformed batch": {
			batch: func(t testing.TB) *SignedBatch {
				b := signedBatch(t, owner, testWalletID, live)
				b.Entries = nil
				return b
			},
			wantErr: ErrMalformedBatch,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db, _ := deployTestWallet(t)
			before := dumpStore(t, db)

			released, err := Accept(db, tc.batch(t), testNow)
			assert.IsErr(t, tc.wantErr, err)
			assert.Nil(t, released)
			assert.Equal(t, before, dumpStore(t, db))
		})
	}
}

func TestAcceptNotDeployed(t *testing.T) {
	db := store.MemStore()
	batch := signedBatch(t, testKey(t, 1), testWalletID, PackQueryID(testNow+60, 1))
	_, err := Accept(db, batch, testNow)
	assert.IsErr(t, errors.ErrNotFound, err)

	_, err = Query(db, batch.QueryID)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestEntryNotFound(t *testing.T) {
	db, _ := deployTestWallet(t)
	_, err := Entry(db, PackQueryID(testNow, 1))
	assert.IsErr(t, errors.ErrNotFound, err)
}

// dumpStore returns all key value pairs of given store.
func dumpStore(t testing.TB, db store.ReadOnlyKVStore) []store.Model {
	t.Helper()
	it, err := db.Iterator(nil, nil)
	assert.Nil(t, err)
	defer it.Release()

	var res []store.Model
	for {
		key, value, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return res
		}
		assert.Nil(t, err)
		res = append(res, store.Pair(key, value))
	}
}
