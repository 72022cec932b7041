package highload

import (
	"context"
	"testing"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
	"github.com/iov-one/hlwallet/hltest/assert"
	"github.com/iov-one/hlwallet/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDeployOnce(t *testing.T) {
	db := store.MemStore()
	w := NewWallet(nil)
	key := testKey(t, 1)

	state, err := NewDeploymentState(testWalletID, key.PublicKey())
	assert.Nil(t, err)
	raw, err := state.Marshal()
	assert.Nil(t, err)

	got, err := w.Deploy(db, raw)
	assert.Nil(t, err)
	assert.Equal(t, state, got)

	loaded, err := LoadState(db)
	assert.Nil(t, err)
	assert.Equal(t, state, loaded)

	_, err = w.Deploy(db, raw)
	assert.IsErr(t, errors.ErrDuplicate, err)
}

func TestDeployInvalidState(t *testing.T) {
	key := testKey(t, 1)
	state := DeploymentState{WalletID: 1, PublicKey: key.PublicKey(), LastCleaned: 5}
	raw, err := state.Marshal()
	assert.Nil(t, err)

	db := store.MemStore()
	_, err = NewWallet(nil).Deploy(db, raw)
	assert.IsErr(t, errors.ErrInvalidInput, err)

	_, err = NewWallet(nil).Deploy(db, []byte("garbage"))
	assert.IsErr(t, errors.ErrInvalidInput, err)

	_, err = LoadState(db)
	assert.IsErr(t, errors.ErrNotFound, err)
}

// Scenario: deploy, send a single transfer and check its status.
func TestHandleExternal(t *testing.T) {
	db, key := deployTestWallet(t)
	w := NewWallet(nil)
	ctx := blockCtx(testNow)

	batch := signedBatch(t, key, testWalletID, PackQueryID(testNow+60, 0))
	raw, err := batch.Marshal()
	assert.Nil(t, err)

	released, err := w.HandleExternal(ctx, db, raw)
	assert.Nil(t, err)
	assert.Equal(t, batch.Entries, released)

	status, err := w.Processed(db, batch.QueryID)
	assert.Nil(t, err)
	assert.Equal(t, -1, status)

	// Scenario: resubmission before the deadline is rejected and does
	// not change the ledger.
	before := dumpStore(t, db)
	released, err = w.HandleExternal(blockCtx(testNow+1), db, raw)
	assert.IsErr(t, ErrDuplicateQuery, err)
	assert.Nil(t, released)
	assert.Equal(t, before, dumpStore(t, db))

	_, err = w.HandleExternal(ctx, db, raw[:10])
	assert.IsErr(t, ErrMalformedBatch, err)
}

func TestHandleExternalRequiresBlockTime(t *testing.T) {
	db, key := deployTestWallet(t)
	raw, err := signedBatch(t, key, testWalletID, PackQueryID(testNow+60, 0)).Marshal()
	assert.Nil(t, err)

	_, err = NewWallet(nil).HandleExternal(context.Background(), db, raw)
	assert.IsErr(t, errors.ErrHuman, err)
}

func TestHandleInternalDeposit(t *testing.T) {
	db, _ := deployTestWallet(t)
	w := NewWallet(nil)

	bodies := map[string][]byte{
		"empty":          nil,
		"text comment":   []byte{0, 0, 0, 0, 'h', 'i'},
		"unknown opcode": []byte{0xde, 0xad, 0xbe, 0xef, 1, 2, 3},
		"short":          []byte{0x56, 0xcd},
	}
	for testName, body := range bodies {
		t.Run(testName, func(t *testing.T) {
			before := dumpStore(t, db)
			res, err := w.HandleInternal(blockCtx(testNow), db, body)
			assert.Nil(t, err)
			assert.Nil(t, res.Reply)
			assert.Equal(t, before, dumpStore(t, db))
		})
	}
}

func TestHandleInternalCleanup(t *testing.T) {
	db, key := deployTestWallet(t)
	w := NewWallet(nil)
	acceptBatches(t, db, key, testNow+10, 5)

	cases := []struct {
		name          string
		msg           CleanupQueueMsg
		now           uint32
		wantForgotten int
	}{
		{
			name:          "nothing to forget yet",
			msg:           CleanupQueueMsg{Limit: 100},
			now:           testNow + 10,
			wantForgotten: 0,
		},
		{
			name:          "limited",
			msg:           CleanupQueueMsg{Limit: 2, CorrelationID: 99},
			now:           testNow + 10 + GraceWindow,
			wantForgotten: 2,
		},
		{
			name:          "rest",
			msg:           CleanupQueueMsg{Limit: 100, CorrelationID: 100},
			now:           testNow + 10 + GraceWindow,
			wantForgotten: 3,
		},
		{
			name:          "empty queue",
			msg:           CleanupQueueMsg{Limit: 100, CorrelationID: 101},
			now:           testNow + 1000,
			wantForgotten: 0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := tc.msg.Marshal()
			assert.Nil(t, err)

			res, err := w.HandleInternal(blockCtx(tc.now), db, body)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantForgotten, len(res.Forgotten))

			var ack ExcessesMsg
			assert.Nil(t, ack.Unmarshal(res.Reply))
			assert.Equal(t, tc.msg.CorrelationID, ack.CorrelationID)
		})
	}
}

func TestHandleInternalCleanupWithoutCorrelation(t *testing.T) {
	db, _ := deployTestWallet(t)
	body, err := CleanupQueueMsg{Limit: 10}.Marshal()
	assert.Nil(t, err)

	res, err := NewWallet(nil).HandleInternal(blockCtx(testNow), db, body[:8])
	assert.Nil(t, err)
	want, err := ExcessesMsg{}.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, want, res.Reply)
}

func TestHandleInternalMalformedCleanup(t *testing.T) {
	db, _ := deployTestWallet(t)
	body, err := CleanupQueueMsg{Limit: 10}.Marshal()
	assert.Nil(t, err)

	_, err = NewWallet(nil).HandleInternal(blockCtx(testNow), db, body[:6])
	assert.IsErr(t, errors.ErrMsg, err)
}

func TestProcessedGetter(t *testing.T) {
	db, key := deployTestWallet(t)
	w := NewWallet(nil)
	id := PackQueryID(testNow+1, 1)

	status, err := w.Processed(db, id)
	assert.Nil(t, err)
	assert.Equal(t, 0, status)

	_, err = Accept(db, signedBatch(t, key, testWalletID, id), testNow)
	assert.Nil(t, err)
	status, err = w.Processed(db, id)
	assert.Nil(t, err)
	assert.Equal(t, -1, status)

	_, err = CleanupQueue(db, 1, testNow+1+GraceWindow)
	assert.Nil(t, err)
	status, err = w.Processed(db, id)
	assert.Nil(t, err)
	assert.Equal(t, 1, status)
}

func TestWalletMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	assert.Nil(t, err)
	_, err = NewMetrics(reg)
	assert.IsErr(t, errors.ErrDuplicate, err)

	db, key := deployTestWallet(t)
	w := NewWallet(m)
	ctx := hlwallet.WithBlockTime(context.Background(), blockTime(testNow))

	batch := signedBatch(t, key, testWalletID, PackQueryID(testNow+1, 1))
	raw, err := batch.Marshal()
	assert.Nil(t, err)
	_, err = w.HandleExternal(ctx, db, raw)
	assert.Nil(t, err)
	_, err = w.HandleExternal(ctx, db, raw)
	assert.IsErr(t, ErrDuplicateQuery, err)

	body, err := CleanupQueueMsg{Limit: 10}.Marshal()
	assert.Nil(t, err)
	_, err = w.HandleInternal(blockCtx(testNow+1+GraceWindow), db, body)
	assert.Nil(t, err)
	_, err = w.HandleInternal(ctx, db, nil)
	assert.Nil(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.accepted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transfers))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rejected.WithLabelValues("duplicate")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.cleanups))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.forgotten))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.deposits))
}
