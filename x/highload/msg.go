package highload

import (
	"fmt"

	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/errors"
)

// SendMode is a set of flags that instruct the execution environment how to
// deliver a single outgoing transfer.
type SendMode uint8

const (
	// SendPayGasSeparately makes the wallet pay the transfer fees on top
	// of the transferred value.
	SendPayGasSeparately SendMode = 1
	// SendIgnoreErrors skips a transfer that cannot be delivered instead
	// of failing the whole batch.
	SendIgnoreErrors SendMode = 2
	// SendDestroyIfZero destroys the wallet once its balance drops to zero.
	SendDestroyIfZero SendMode = 32
	// SendCarryRemainingValue adds the remaining value of the inbound
	// message to the transfer.
	SendCarryRemainingValue SendMode = 64
	// SendCarryAllBalance transfers the whole wallet balance.
	SendCarryAllBalance SendMode = 128

	// DefaultSendMode is used for a transfer when none was requested.
	DefaultSendMode = SendPayGasSeparately | SendIgnoreErrors
)

func (m SendMode) String() string {
	return fmt.Sprintf("0x%02x", uint8(m))
}

const (
	// MaxEntries is the maximum number of transfers a single batch can
	// carry. Entry indexes must be in [0, MaxEntries).
	MaxEntries = 254

	// MaxMessageSize is the maximum size in bytes of a single embedded
	// transfer message.
	MaxMessageSize = 64 * 1024
)

// MessageEntry is a single outgoing transfer of a batch.
type MessageEntry struct {
	Index   int16
	Mode    SendMode
	Message []byte
}

// SignedBatch is a signed envelope with one or more outgoing transfers.
type SignedBatch struct {
	Signature []byte
	WalletID  uint32
	QueryID   QueryID
	Entries   []MessageEntry
}

// Validate checks the shape of the batch. The signature is not verified,
// use VerifyBatch for that. A batch that was not signed yet is valid.
func (b *SignedBatch) Validate() error {
	var errs error
	if len(b.Signature) != 0 && len(b.Signature) != crypto.SignatureSize {
		errs = errors.AppendField(errs, "Signature",
			errors.Wrapf(ErrMalformedBatch, "must be %d bytes", crypto.SignatureSize))
	}
	switch n := len(b.Entries); {
	case n == 0:
		errs = errors.AppendField(errs, "Entries", errors.Wrap(ErrMalformedBatch, "no entries"))
	case n > MaxEntries:
		errs = errors.AppendField(errs, "Entries",
			errors.Wrapf(ErrMalformedBatch, "too many entries: %d > %d", n, MaxEntries))
	}
	for i, e := range b.Entries {
		if e.Index < 0 || e.Index >= MaxEntries {
			errs = errors.AppendField(errs, fmt.Sprintf("Entries.%d.Index", i),
				errors.Wrapf(ErrMalformedBatch, "index %d out of range", e.Index))
		}
		if i > 0 && e.Index <= b.Entries[i-1].Index {
			errs = errors.AppendField(errs, fmt.Sprintf("Entries.%d.Index", i),
				errors.Wrap(ErrMalformedBatch, "indexes must be strictly ascending"))
		}
		switch n := len(e.Message); {
		case n == 0:
			errs = errors.AppendField(errs, fmt.Sprintf("Entries.%d.Message", i),
				errors.Wrap(ErrMalformedBatch, "required"))
		case n > MaxMessageSize:
			errs = errors.AppendField(errs, fmt.Sprintf("Entries.%d.Message", i),
				errors.Wrapf(ErrMalformedBatch, "too big: %d > %d", n, MaxMessageSize))
		}
	}
	return errs
}

// Opcodes of the internal messages the wallet understands or produces.
const (
	OpCleanupQueue uint32 = 0x56cda31a
	OpExcesses     uint32 = 0xd53276db
)

// CleanupQueueMsg asks the wallet to forget up to Limit expired query ids.
// CorrelationID is echoed back in the acknowledgment.
type CleanupQueueMsg struct {
	Limit         uint32
	CorrelationID uint64
}

// ExcessesMsg is the acknowledgment sent back for every cleanup request.
type ExcessesMsg struct {
	CorrelationID uint64
}
