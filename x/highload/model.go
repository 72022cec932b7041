package highload

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
)

// QueryState is the lifecycle state of a query id. Values are those returned
// by the processed getter.
type QueryState int8

const (
	Processed   QueryState = -1
	Unprocessed QueryState = 0
	Forgotten   QueryState = 1
)

func (s QueryState) String() string {
	switch s {
	case Processed:
		return "processed"
	case Unprocessed:
		return "unprocessed"
	case Forgotten:
		return "forgotten"
	default:
		return "unknown"
	}
}

// LedgerEntry is kept for every processed query id until cleanup forgets it.
type LedgerEntry struct {
	QueryID QueryID
	// AcceptedAt is the time the batch was accepted.
	AcceptedAt hlwallet.UnixTime
	// Transfers is the number of transfers released by the batch.
	Transfers int
	// BatchHash is the hash of the signed canonical form of the batch.
	BatchHash []byte
}

var _ hlwallet.Persistent = (*LedgerEntry)(nil)
var _ hlwallet.Validater = (*LedgerEntry)(nil)

// Validate checks the entry before it is persisted.
func (e *LedgerEntry) Validate() error {
	var errs error
	if e.Transfers < 1 || e.Transfers > MaxEntries {
		errs = errors.AppendField(errs, "Transfers", errors.Wrapf(errors.ErrModel, "out of range: %d", e.Transfers))
	}
	errs = errors.AppendField(errs, "AcceptedAt", e.AcceptedAt.Validate())
	if len(e.BatchHash) != 32 {
		errs = errors.AppendField(errs, "BatchHash", errors.Wrap(errors.ErrModel, "must be a sha256 hash"))
	}
	return errs
}

// Marshal returns the protobuf encoding of the entry.
func (e *LedgerEntry) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	rec := ledgerRecord{
		QueryID:    uint64(e.QueryID),
		AcceptedAt: int64(e.AcceptedAt),
		Transfers:  int32(e.Transfers),
		BatchHash:  e.BatchHash,
	}
	raw, err := proto.Marshal(&rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes the protobuf encoding of the entry.
func (e *LedgerEntry) Unmarshal(raw []byte) error {
	var rec ledgerRecord
	if err := proto.Unmarshal(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	*e = LedgerEntry{
		QueryID:    QueryID(rec.QueryID),
		AcceptedAt: hlwallet.UnixTime(rec.AcceptedAt),
		Transfers:  int(rec.Transfers),
		BatchHash:  rec.BatchHash,
	}
	return e.Validate()
}

// ledgerRecord is the protobuf message a LedgerEntry is stored as.
//
//   message LedgerEntry {
//     uint64 query_id = 1;
//     int64 accepted_at = 2;
//     int32 transfers = 3;
//     bytes batch_hash = 4;
//   }
type ledgerRecord struct {
	QueryID    uint64 `protobuf:"varint,1,opt,name=query_id,json=queryId,proto3" json:"query_id,omitempty"`
	AcceptedAt int64  `protobuf:"varint,2,opt,name=accepted_at,json=acceptedAt,proto3" json:"accepted_at,omitempty"`
	Transfers  int32  `protobuf:"varint,3,opt,name=transfers,proto3" json:"transfers,omitempty"`
	BatchHash  []byte `protobuf:"bytes,4,opt,name=batch_hash,json=batchHash,proto3" json:"batch_hash,omitempty"`
}

func (m *ledgerRecord) Reset()         { *m = ledgerRecord{} }
func (m *ledgerRecord) String() string { return proto.CompactTextString(m) }
func (*ledgerRecord) ProtoMessage()    {}
