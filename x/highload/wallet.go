package highload

import (
	"context"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Wallet routes messages delivered to a deployed wallet. External messages
// carry signed batches, internal messages are deposits or cleanup requests.
//
// Current time and logger are taken from the context, see
// hlwallet.WithBlockTime and hlwallet.WithLogger.
type Wallet struct {
	metrics *Metrics
}

// NewWallet returns a wallet router. Metrics are optional.
func NewWallet(m *Metrics) *Wallet {
	return &Wallet{metrics: m}
}

// Deploy installs the wallet state in an empty database. Deploying twice
// fails with ErrDuplicate.
func (w *Wallet) Deploy(db hlwallet.KVStore, raw []byte) (*DeploymentState, error) {
	if ok, err := db.Has(stateKey); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	} else if ok {
		return nil, errors.Wrap(errors.ErrDuplicate, "wallet already deployed")
	}
	var state DeploymentState
	if err := state.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "deployment state")
	}
	if state.LastCleaned != 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "reserved field must be zero")
	}
	if err := saveState(db, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// HandleExternal processes a signed batch in its wire form. On success the
// released transfers are returned.
func (w *Wallet) HandleExternal(ctx context.Context, db hlwallet.KVStore, raw []byte) ([]MessageEntry, error) {
	now, err := blockSeconds(ctx)
	if err != nil {
		return nil, err
	}
	logger := hlwallet.GetLogger(ctx)

	released, err := w.accept(logger, db, raw, now)
	if err != nil {
		w.metrics.batchRejected(err)
		logger.Debug("batch rejected", "err", err)
		return nil, err
	}
	w.metrics.batchAccepted(len(released))
	return released, nil
}

// accept never panics on hostile input, a panic is reported as ErrPanic.
func (w *Wallet) accept(logger log.Logger, db hlwallet.KVStore, raw []byte, now uint32) (released []MessageEntry, err error) {
	defer errors.Recover(&err)

	batch, err := UnmarshalBatch(raw)
	if err != nil {
		return nil, err
	}
	released, err = Accept(db, batch, now)
	if err != nil {
		return nil, errors.Wrapf(err, "query %d", uint64(batch.QueryID))
	}
	logger.Info("batch accepted", "query", uint64(batch.QueryID), "transfers", len(released))
	return released, nil
}

// InternalResult describes how an internal message was processed.
type InternalResult struct {
	// Reply is the body of the message sent back to the sender. It is
	// nil for a deposit.
	Reply []byte
	// Forgotten lists the query ids removed by a cleanup request.
	Forgotten []QueryID
}

// HandleInternal processes the body of an internal message. An empty body or
// an unknown operation is a plain deposit and is accepted without any
// state change. A cleanup request is always answered with an excesses
// acknowledgment, even if nothing was forgotten.
func (w *Wallet) HandleInternal(ctx context.Context, db hlwallet.CacheableKVStore, body []byte) (*InternalResult, error) {
	logger := hlwallet.GetLogger(ctx)

	if op, ok := opcode(body); !ok || op != OpCleanupQueue {
		w.metrics.deposited()
		logger.Debug("deposit", "size", len(body))
		return &InternalResult{}, nil
	}

	var msg CleanupQueueMsg
	if err := msg.Unmarshal(body); err != nil {
		return nil, errors.Wrap(errors.ErrMsg, err.Error())
	}
	now, err := blockSeconds(ctx)
	if err != nil {
		return nil, err
	}

	// All removals are applied together or not at all.
	cache := db.CacheWrap()
	forgotten, err := CleanupQueue(cache, msg.Limit, now)
	if err != nil {
		cache.Discard()
		return nil, errors.Wrap(err, "cleanup")
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "cannot write cache")
	}

	reply, err := ExcessesMsg{CorrelationID: msg.CorrelationID}.Marshal()
	if err != nil {
		return nil, err
	}
	w.metrics.cleanedUp(len(forgotten))
	logger.Info("queue cleaned up", "limit", msg.Limit, "forgotten", len(forgotten))
	return &InternalResult{Reply: reply, Forgotten: forgotten}, nil
}

// Processed is the read only status getter. It returns -1 for a processed
// query id, 0 for an unprocessed and 1 for a forgotten one.
func (w *Wallet) Processed(db hlwallet.ReadOnlyKVStore, id QueryID) (int, error) {
	s, err := Query(db, id)
	if err != nil {
		return 0, err
	}
	return int(s), nil
}

// blockSeconds returns the context block time as protocol seconds.
func blockSeconds(ctx context.Context) (uint32, error) {
	t, err := hlwallet.BlockTime(ctx)
	if err != nil {
		return 0, err
	}
	return hlwallet.AsUnixTime(t).Uint32()
}
