package highload

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/errors"
)

/*
Binary layout of a signed batch, all integers big endian:

  signature        64 bytes
  wallet id        uint32
  query id         uint64
  entry count      uint16
  entries          entry count times:
    index          int16
    send mode      uint8
    message size   uint32
    message        message size bytes

Everything after the signature is the canonical form that is hashed with
sha256 and signed.
*/

const (
	batchHeaderSize = 4 + 8 + 2
	entryHeaderSize = 2 + 1 + 4
)

// SignBytes returns the canonical form of the batch, the part covered by
// the signature.
func (b *SignedBatch) SignBytes() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	size := batchHeaderSize
	for _, e := range b.Entries {
		size += entryHeaderSize + len(e.Message)
	}

	raw := make([]byte, size)
	binary.BigEndian.PutUint32(raw[0:], b.WalletID)
	binary.BigEndian.PutUint64(raw[4:], uint64(b.QueryID))
	binary.BigEndian.PutUint16(raw[12:], uint16(len(b.Entries)))
	pos := batchHeaderSize
	for _, e := range b.Entries {
		binary.BigEndian.PutUint16(raw[pos:], uint16(e.Index))
		raw[pos+2] = byte(e.Mode)
		binary.BigEndian.PutUint32(raw[pos+3:], uint32(len(e.Message)))
		pos += entryHeaderSize
		pos += copy(raw[pos:], e.Message)
	}
	return raw, nil
}

// Marshal returns the wire form of a signed batch.
func (b *SignedBatch) Marshal() ([]byte, error) {
	if len(b.Signature) != crypto.SignatureSize {
		return nil, errors.Wrap(ErrMalformedBatch, "batch is not signed")
	}
	canonical, err := b.SignBytes()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 0, len(b.Signature)+len(canonical))
	raw = append(raw, b.Signature...)
	return append(raw, canonical...), nil
}

// Unmarshal decodes the wire form of a signed batch. The signature is not
// verified.
func (b *SignedBatch) Unmarshal(raw []byte) error {
	if len(raw) < crypto.SignatureSize+batchHeaderSize {
		return errors.Wrapf(ErrMalformedBatch, "too short: %d bytes", len(raw))
	}
	var res SignedBatch
	res.Signature = append([]byte(nil), raw[:crypto.SignatureSize]...)
	raw = raw[crypto.SignatureSize:]

	res.WalletID = binary.BigEndian.Uint32(raw[0:])
	res.QueryID = QueryID(binary.BigEndian.Uint64(raw[4:]))
	count := int(binary.BigEndian.Uint16(raw[12:]))
	if count == 0 || count > MaxEntries {
		return errors.Wrapf(ErrMalformedBatch, "invalid entry count %d", count)
	}
	raw = raw[batchHeaderSize:]

	res.Entries = make([]MessageEntry, 0, count)
	for i := 0; i < count; i++ {
		if len(raw) < entryHeaderSize {
			return errors.Wrapf(ErrMalformedBatch, "entry %d: truncated header", i)
		}
		e := MessageEntry{
			Index: int16(binary.BigEndian.Uint16(raw[0:])),
			Mode:  SendMode(raw[2]),
		}
		size := binary.BigEndian.Uint32(raw[3:])
		raw = raw[entryHeaderSize:]
		if size > MaxMessageSize {
			return errors.Wrapf(ErrMalformedBatch, "entry %d: message too big", i)
		}
		if uint32(len(raw)) < size {
			return errors.Wrapf(ErrMalformedBatch, "entry %d: truncated message", i)
		}
		e.Message = append([]byte(nil), raw[:size]...)
		raw = raw[size:]
		res.Entries = append(res.Entries, e)
	}
	if len(raw) != 0 {
		return errors.Wrapf(ErrMalformedBatch, "%d trailing bytes", len(raw))
	}
	if err := res.Validate(); err != nil {
		return err
	}
	*b = res
	return nil
}

// UnmarshalBatch decodes the wire form of a signed batch.
func UnmarshalBatch(raw []byte) (*SignedBatch, error) {
	var b SignedBatch
	if err := b.Unmarshal(raw); err != nil {
		return nil, err
	}
	return &b, nil
}

// batchHash returns the value that is signed for given canonical bytes.
func batchHash(canonical []byte) []byte {
	h := sha256.Sum256(canonical)
	return h[:]
}

// SignBatch signs the batch with given key and sets its signature.
func SignBatch(signer crypto.Signer, b *SignedBatch) error {
	canonical, err := b.SignBytes()
	if err != nil {
		return err
	}
	sig, err := signer.Sign(batchHash(canonical))
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	b.Signature = sig
	return nil
}

// VerifyBatch returns ErrInvalidSignature if the batch signature was not
// created by the owner of given public key.
func VerifyBatch(pub crypto.PublicKey, b *SignedBatch) error {
	canonical, err := b.SignBytes()
	if err != nil {
		return err
	}
	if !pub.Verify(batchHash(canonical), b.Signature) {
		return errors.Wrap(ErrInvalidSignature, "signature does not match the wallet key")
	}
	return nil
}

// DecodeBatch decodes the wire form of a signed batch and verifies its
// signature.
func DecodeBatch(raw []byte, pub crypto.PublicKey) (*SignedBatch, error) {
	b, err := UnmarshalBatch(raw)
	if err != nil {
		return nil, err
	}
	if err := VerifyBatch(pub, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Marshal returns the internal message body of a cleanup request.
func (m CleanupQueueMsg) Marshal() ([]byte, error) {
	raw := make([]byte, 16)
	binary.BigEndian.PutUint32(raw[0:], OpCleanupQueue)
	binary.BigEndian.PutUint32(raw[4:], m.Limit)
	binary.BigEndian.PutUint64(raw[8:], m.CorrelationID)
	return raw, nil
}

// Unmarshal decodes a cleanup request body. The correlation id is
// optional.
func (m *CleanupQueueMsg) Unmarshal(raw []byte) error {
	if len(raw) != 8 && len(raw) != 16 {
		return errors.Wrapf(errors.ErrInvalidInput, "cleanup request must be 8 or 16 bytes, got %d", len(raw))
	}
	if op := binary.BigEndian.Uint32(raw); op != OpCleanupQueue {
		return errors.Wrapf(errors.ErrInvalidInput, "unexpected opcode 0x%08x", op)
	}
	m.Limit = binary.BigEndian.Uint32(raw[4:])
	m.CorrelationID = 0
	if len(raw) == 16 {
		m.CorrelationID = binary.BigEndian.Uint64(raw[8:])
	}
	return nil
}

// Marshal returns the internal message body of an acknowledgment.
func (m ExcessesMsg) Marshal() ([]byte, error) {
	raw := make([]byte, 12)
	binary.BigEndian.PutUint32(raw[0:], OpExcesses)
	binary.BigEndian.PutUint64(raw[4:], m.CorrelationID)
	return raw, nil
}

// Unmarshal decodes an acknowledgment body.
func (m *ExcessesMsg) Unmarshal(raw []byte) error {
	if len(raw) != 12 {
		return errors.Wrapf(errors.ErrInvalidInput, "excesses must be 12 bytes, got %d", len(raw))
	}
	if op := binary.BigEndian.Uint32(raw); op != OpExcesses {
		return errors.Wrapf(errors.ErrInvalidInput, "unexpected opcode 0x%08x", op)
	}
	m.CorrelationID = binary.BigEndian.Uint64(raw[4:])
	return nil
}

// opcode returns the operation code of an internal message body, or false
// if the body is too short to carry one.
func opcode(body []byte) (uint32, bool) {
	if len(body) < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(body), true
}
