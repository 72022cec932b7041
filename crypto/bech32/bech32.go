// Package bech32 renders wallet addresses in a human readable, checksummed
// form.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/hlwallet/errors"
)

// Decode converts given bech32 encoded representation into raw payload and a
// human readable part.
func Decode(raw string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInvalidInput, "convert bits: %s", err)
	}
	return hrp, payload, nil
}

// DecodeWithPrefix is like Decode but fails unless the human readable part is
// the expected one.
func DecodeWithPrefix(raw, hrp string) ([]byte, error) {
	got, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "want %q prefix, got %q", hrp, got)
	}
	return payload, nil
}

// Encode converts given bytes into bech32 encoded representation.
func Encode(hrp string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "convert bits: %s", err)
	}
	raw, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInvalidInput, "encode: %s", err)
	}
	return raw, nil
}
