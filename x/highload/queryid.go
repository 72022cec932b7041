package highload

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/errors"
)

// GraceWindow is the number of seconds after a query deadline during which
// the query id is still kept in the ledger. Only after that window passed a
// cleanup may forget it.
const GraceWindow = 64

// MaxTimeout is the longest validity window a transfer created by this
// package can have.
const MaxTimeout = 5 * time.Minute

// QueryID identifies a single batch. The high 32 bits hold the deadline
// (unix seconds), the low 32 bits hold the sequence number.
type QueryID uint64

// PackQueryID returns the query id for given deadline and sequence number.
func PackQueryID(deadline, seqno uint32) QueryID {
	return QueryID(uint64(deadline)<<32 | uint64(seqno))
}

// NewQueryID returns a query id valid until now + timeout. Timeout has
// a second granularity.
func NewQueryID(now hlwallet.UnixTime, timeout time.Duration, seqno uint32) (QueryID, error) {
	if timeout < 0 {
		return 0, errors.Wrap(errors.ErrInvalidInput, "negative timeout")
	}
	deadline, err := now.Add(timeout).Uint32()
	if err != nil {
		return 0, errors.Wrap(err, "deadline")
	}
	return PackQueryID(deadline, seqno), nil
}

// Unpack returns the deadline and the sequence number this query id was
// created from.
func (q QueryID) Unpack() (deadline, seqno uint32) {
	return uint32(q >> 32), uint32(q)
}

// Deadline returns the unix time (in seconds) after which this query id
// cannot be accepted anymore.
func (q QueryID) Deadline() uint32 {
	return uint32(q >> 32)
}

// Seqno returns the sequence number part of the query id.
func (q QueryID) Seqno() uint32 {
	return uint32(q)
}

// Expired returns true if the query deadline is not after now. Expiration
// is inclusive.
func (q QueryID) Expired(now uint32) bool {
	return q.Deadline() <= now
}

// Forgettable returns true if the grace window after the deadline has
// passed and the query id can be removed from the ledger.
func (q QueryID) Forgettable(now uint32) bool {
	return uint64(q.Deadline())+GraceWindow <= uint64(now)
}

// Bytes returns the big endian representation of the query id. The byte
// order is the same as the numeric order.
func (q QueryID) Bytes() []byte {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(q))
	return raw
}

// QueryIDFromBytes is the inverse of QueryID.Bytes.
func QueryIDFromBytes(raw []byte) (QueryID, error) {
	if len(raw) != 8 {
		return 0, errors.Wrapf(errors.ErrInvalidInput, "query id must be 8 bytes, got %d", len(raw))
	}
	return QueryID(binary.BigEndian.Uint64(raw)), nil
}

func (q QueryID) String() string {
	deadline, seqno := q.Unpack()
	return fmt.Sprintf("%d (deadline=%d seqno=%d)", uint64(q), deadline, seqno)
}
