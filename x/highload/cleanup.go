package highload

import (
	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
)

// CleanupQueue forgets up to limit processed query ids whose grace window
// has passed. Entries are visited in ascending query id order and the scan
// stops at the first entry that cannot be forgotten yet, so the result is
// always a prefix of the ledger. Forgotten ids are returned in the order
// they were removed.
//
// An empty ledger or a ledger with nothing to forget is not an error.
func CleanupQueue(db hlwallet.KVStore, limit uint32, now uint32) ([]QueryID, error) {
	state, err := LoadState(db)
	if err != nil {
		return nil, err
	}

	ids, err := forgettable(db, limit, now)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	for _, id := range ids {
		if err := deleteEntry(db, id); err != nil {
			return nil, errors.Wrapf(err, "forget %d", uint64(id))
		}
	}
	if last := ids[len(ids)-1]; last > state.LastCleaned {
		state.LastCleaned = last
		if err := saveState(db, state); err != nil {
			return nil, errors.Wrap(err, "save watermark")
		}
	}
	return ids, nil
}

// forgettable returns the lowest query ids that can be forgotten at given
// time, at most limit of them.
func forgettable(db hlwallet.ReadOnlyKVStore, limit uint32, now uint32) ([]QueryID, error) {
	if limit == 0 {
		return nil, nil
	}
	start, end := queryRange()
	it, err := db.Iterator(start, end)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	defer it.Release()

	var ids []QueryID
	for uint32(len(ids)) < limit {
		key, _, err := it.Next()
		switch {
		case errors.ErrIteratorDone.Is(err):
			return ids, nil
		case err != nil:
			return nil, errors.Wrap(err, "cannot get next item")
		}
		id, err := QueryIDFromBytes(key[len(queryPrefix):])
		if err != nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "corrupted ledger key %x", key)
		}
		if !id.Forgettable(now) {
			return ids, nil
		}
		ids = append(ids, id)
	}
	return ids, nil
}
