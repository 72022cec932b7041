package highload

import (
	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
)

var (
	queryPrefix = []byte("hlq:")
	stateKey    = []byte("hls:state")
)

// queryKey returns the database key of a ledger entry. Keys sort in the
// numeric order of query ids.
func queryKey(id QueryID) []byte {
	key := make([]byte, len(queryPrefix)+8)
	copy(key, queryPrefix)
	copy(key[len(queryPrefix):], id.Bytes())
	return key
}

// queryRange returns the [start, end) key range covering all ledger entries.
func queryRange() (start, end []byte) {
	end = make([]byte, len(queryPrefix))
	copy(end, queryPrefix)
	end[len(end)-1]++
	return queryPrefix, end
}

// loadEntry returns the ledger entry of given query id or nil if it is not
// tracked.
func loadEntry(db hlwallet.ReadOnlyKVStore, id QueryID) (*LedgerEntry, error) {
	raw, err := db.Get(queryKey(id))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, nil
	}
	var e LedgerEntry
	if err := e.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "entry %d", uint64(id))
	}
	return &e, nil
}

func saveEntry(db hlwallet.KVStore, e *LedgerEntry) error {
	raw, err := e.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal entry")
	}
	if err := db.Set(queryKey(e.QueryID), raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func deleteEntry(db hlwallet.KVStore, id QueryID) error {
	if err := db.Delete(queryKey(id)); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LoadState returns the state of the wallet deployed in given database. It
// fails with ErrNotFound if no wallet was deployed.
func LoadState(db hlwallet.ReadOnlyKVStore) (*DeploymentState, error) {
	raw, err := db.Get(stateKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if raw == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "wallet not deployed")
	}
	var s DeploymentState
	if err := s.Unmarshal(raw); err != nil {
		return nil, errors.Wrap(err, "wallet state")
	}
	return &s, nil
}

func saveState(db hlwallet.KVStore, s *DeploymentState) error {
	raw, err := s.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal state")
	}
	if err := db.Set(stateKey, raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}
