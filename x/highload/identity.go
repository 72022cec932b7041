package highload

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/crypto/bech32"
	"github.com/iov-one/hlwallet/errors"
)

const (
	// BaseWalletID is the wallet id used on the base workchain when none
	// is configured.
	BaseWalletID uint32 = 698983191

	// AddressPrefix is the human readable part of a wallet address.
	AddressPrefix = "hlw"

	// AddressSize is the number of state hash bytes an address is made of.
	AddressSize = 20

	deploymentStateSize = 4 + 8 + crypto.PublicKeySize + 2
)

// DefaultWalletID returns the wallet id used when none was configured.
func DefaultWalletID(workchain int32) uint32 {
	return BaseWalletID + uint32(workchain)
}

// DeploymentState is the persistent state of a wallet. It is installed once
// and only the cleanup watermark changes after that.
//
// Binary layout, big endian:
//
//   wallet id      uint32
//   last cleaned   uint64, 0 in a fresh deployment
//   public key     32 bytes
//   entry count    uint16, always 0
type DeploymentState struct {
	WalletID uint32
	// LastCleaned is the highest query id ever forgotten by a cleanup.
	LastCleaned QueryID
	PublicKey   crypto.PublicKey
}

// NewDeploymentState returns the state of a fresh wallet.
func NewDeploymentState(walletID uint32, pub crypto.PublicKey) (*DeploymentState, error) {
	s := &DeploymentState{WalletID: walletID, PublicKey: pub}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate returns an error if the state cannot be used by a wallet.
func (s *DeploymentState) Validate() error {
	return errors.Field("PublicKey", s.PublicKey.Validate(), "wallet key")
}

// Marshal returns the binary form of the state.
func (s *DeploymentState) Marshal() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, deploymentStateSize)
	binary.BigEndian.PutUint32(raw[0:], s.WalletID)
	binary.BigEndian.PutUint64(raw[4:], uint64(s.LastCleaned))
	copy(raw[12:], s.PublicKey)
	// Trailing two bytes encode an empty entry dictionary.
	return raw, nil
}

// Unmarshal decodes the binary form of the state.
func (s *DeploymentState) Unmarshal(raw []byte) error {
	if len(raw) != deploymentStateSize {
		return errors.Wrapf(errors.ErrInvalidInput, "state must be %d bytes, got %d", deploymentStateSize, len(raw))
	}
	if n := binary.BigEndian.Uint16(raw[12+crypto.PublicKeySize:]); n != 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "state must not contain entries, got %d", n)
	}
	res := DeploymentState{
		WalletID:    binary.BigEndian.Uint32(raw[0:]),
		LastCleaned: QueryID(binary.BigEndian.Uint64(raw[4:])),
		PublicKey:   append(crypto.PublicKey(nil), raw[12:12+crypto.PublicKeySize]...),
	}
	if err := res.Validate(); err != nil {
		return err
	}
	*s = res
	return nil
}

// Address returns the wallet address. It depends only on the wallet id and
// the public key, so it never changes during the wallet lifetime.
func (s *DeploymentState) Address() (string, error) {
	initial := DeploymentState{WalletID: s.WalletID, PublicKey: s.PublicKey}
	raw, err := initial.Marshal()
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(raw)
	return bech32.Encode(AddressPrefix, hash[:AddressSize])
}
