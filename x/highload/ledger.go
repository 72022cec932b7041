package highload

import (
	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
)

// Accept authorizes the execution of given batch. On success the query id
// is marked as processed and the batch entries are returned so that their
// transfers can be executed. A rejected batch does not modify the state.
//
// Checks are done in order and the first failure is returned:
// ErrWalletMismatch, ErrInvalidSignature (or ErrMalformedBatch),
// ErrExpiredQuery, ErrDuplicateQuery.
func Accept(db hlwallet.KVStore, batch *SignedBatch, now uint32) ([]MessageEntry, error) {
	state, err := LoadState(db)
	if err != nil {
		return nil, err
	}
	if batch.WalletID != state.WalletID {
		return nil, errors.Wrapf(ErrWalletMismatch, "want %d, got %d", state.WalletID, batch.WalletID)
	}
	if err := VerifyBatch(state.PublicKey, batch); err != nil {
		return nil, err
	}
	if batch.QueryID.Expired(now) {
		return nil, errors.Wrapf(ErrExpiredQuery, "deadline %d, now %d", batch.QueryID.Deadline(), now)
	}
	switch prev, err := loadEntry(db, batch.QueryID); {
	case err != nil:
		return nil, err
	case prev != nil:
		return nil, errors.Wrapf(ErrDuplicateQuery, "query %d", uint64(batch.QueryID))
	}

	canonical, err := batch.SignBytes()
	if err != nil {
		return nil, err
	}
	entry := LedgerEntry{
		QueryID:    batch.QueryID,
		AcceptedAt: hlwallet.UnixTime(now),
		Transfers:  len(batch.Entries),
		BatchHash:  batchHash(canonical),
	}
	if err := saveEntry(db, &entry); err != nil {
		return nil, errors.Wrap(err, "save entry")
	}

	released := make([]MessageEntry, len(batch.Entries))
	copy(released, batch.Entries)
	return released, nil
}

// Query returns the state of given query id. It never modifies the
// database.
func Query(db hlwallet.ReadOnlyKVStore, id QueryID) (QueryState, error) {
	state, err := LoadState(db)
	if err != nil {
		return Unprocessed, err
	}
	switch e, err := loadEntry(db, id); {
	case err != nil:
		return Unprocessed, err
	case e != nil:
		return Processed, nil
	}
	if id <= state.LastCleaned {
		return Forgotten, nil
	}
	return Unprocessed, nil
}

// Entry returns the ledger entry of a processed query id. It fails with
// ErrNotFound if the query id is not tracked.
func Entry(db hlwallet.ReadOnlyKVStore, id QueryID) (*LedgerEntry, error) {
	e, err := loadEntry(db, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "query %d", uint64(id))
	}
	return e, nil
}
