package crypto

import (
	"github.com/iov-one/hlwallet/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// PublicKeySize is the size, in bytes, of a wallet public key.
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize is the size, in bytes, of a batch signature.
	SignatureSize = ed25519.SignatureSize
	// PrivateKeySize is the size, in bytes, of a private key as stored in
	// a key file.
	PrivateKeySize = ed25519.PrivateKeySize
	// SeedSize is the size, in bytes, of a private key seed.
	SeedSize = ed25519.SeedSize
)

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() PublicKey
}

// PublicKey is an ed25519 public key that the wallet is verifying all batch
// signatures with.
type PublicKey []byte

// Validate returns an error if this is not a well formed public key.
func (p PublicKey) Validate() error {
	if len(p) != PublicKeySize {
		return errors.Wrapf(errors.ErrInvalidInput, "public key must be %d bytes, got %d", PublicKeySize, len(p))
	}
	return nil
}

// Verify verifies the signature was created with this message and public key
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p), message, sig)
}

// PrivateKey is an ed25519 private key.
type PrivateKey []byte

var _ Signer = PrivateKey(nil)

// Sign returns a matching signature for this private key
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p) != PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "private key must be %d bytes, got %d", PrivateKeySize, len(p))
	}
	return ed25519.Sign(ed25519.PrivateKey(p), message), nil
}

// PublicKey returns the corresponding PublicKey
func (p PrivateKey) PublicKey() PublicKey {
	if len(p) != PrivateKeySize {
		return nil
	}
	pub := ed25519.PrivateKey(p).Public().(ed25519.PublicKey)
	return PublicKey(pub)
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey(priv)
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}
