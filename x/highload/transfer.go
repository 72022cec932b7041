package highload

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/iov-one/hlwallet"
	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/errors"
)

// TransferOptions describe a batch to be created by CreateTransfer. Only the
// signer, the wallet id and the messages are required.
type TransferOptions struct {
	Signer   crypto.Signer
	WalletID uint32
	Messages [][]byte

	// Seqno is random when not set.
	Seqno *uint32
	// SendMode is applied to every message, DefaultSendMode when not set.
	SendMode *SendMode
	// Now is the wall clock when zero.
	Now hlwallet.UnixTime
	// Timeout is rounded up to whole seconds and clamped to MaxTimeout.
	// Zero means MaxTimeout, a negative timeout is rejected.
	Timeout time.Duration
}

// CreateTransfer returns a signed batch that sends all given messages, in
// the given order.
func CreateTransfer(opts TransferOptions) (*SignedBatch, error) {
	if opts.Signer == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "signer required")
	}

	seqno, err := transferSeqno(opts.Seqno)
	if err != nil {
		return nil, err
	}
	mode := DefaultSendMode
	if opts.SendMode != nil {
		mode = *opts.SendMode
	}
	now := opts.Now
	if now.IsZero() {
		now = hlwallet.AsUnixTime(time.Now())
	}
	timeout, err := transferTimeout(opts.Timeout)
	if err != nil {
		return nil, err
	}

	queryID, err := NewQueryID(now, timeout, seqno)
	if err != nil {
		return nil, err
	}
	if len(opts.Messages) > MaxEntries {
		return nil, errors.Wrapf(ErrMalformedBatch, "too many messages: %d > %d", len(opts.Messages), MaxEntries)
	}
	batch := &SignedBatch{
		WalletID: opts.WalletID,
		QueryID:  queryID,
		Entries:  make([]MessageEntry, len(opts.Messages)),
	}
	for i, msg := range opts.Messages {
		batch.Entries[i] = MessageEntry{Index: int16(i), Mode: mode, Message: msg}
	}
	if err := SignBatch(opts.Signer, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// transferTimeout rounds up to whole seconds so that a batch is never
// created already expired.
func transferTimeout(timeout time.Duration) (time.Duration, error) {
	switch {
	case timeout < 0:
		return 0, errors.Wrapf(errors.ErrInvalidInput, "negative timeout %s", timeout)
	case timeout == 0 || timeout >= MaxTimeout:
		return MaxTimeout, nil
	}
	if rest := timeout % time.Second; rest != 0 {
		timeout += time.Second - rest
	}
	return timeout, nil
}

func transferSeqno(seqno *uint32) (uint32, error) {
	if seqno != nil {
		return *seqno, nil
	}
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return 0, errors.Wrap(errors.ErrHuman, "cannot read random seqno")
	}
	return binary.BigEndian.Uint32(raw[:]), nil
}
