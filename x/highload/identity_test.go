package highload

import (
	"strings"
	"testing"

	"github.com/iov-one/hlwallet/crypto"
	"github.com/iov-one/hlwallet/crypto/bech32"
	"github.com/iov-one/hlwallet/errors"
	"github.com/iov-one/hlwallet/hltest/assert"
)

func TestDeploymentStateLayout(t *testing.T) {
	key := testKey(t, 1)
	state, err := NewDeploymentState(0x0a0b0c0d, key.PublicKey())
	assert.Nil(t, err)

	raw, err := state.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 4+8+crypto.PublicKeySize+2, len(raw))
	assert.Bytes(t, []byte{0x0a, 0x0b, 0x0c, 0x0d}, raw[:4])
	assert.Bytes(t, make([]byte, 8), raw[4:12])
	assert.Bytes(t, key.PublicKey(), raw[12:12+crypto.PublicKeySize])
	assert.Bytes(t, []byte{0, 0}, raw[len(raw)-2:])

	var got DeploymentState
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, *state, got)
}

func TestDeploymentStateInvalid(t *testing.T) {
	_, err := NewDeploymentState(1, crypto.PublicKey("short"))
	assert.FieldError(t, err, "PublicKey", errors.ErrInvalidInput)

	key := testKey(t, 1)
	state, err := NewDeploymentState(1, key.PublicKey())
	assert.Nil(t, err)
	raw, err := state.Marshal()
	assert.Nil(t, err)

	var s DeploymentState
	assert.IsErr(t, errors.ErrInvalidInput, s.Unmarshal(raw[:len(raw)-1]))

	withEntries := append([]byte(nil), raw...)
	withEntries[len(withEntries)-1] = 1
	assert.IsErr(t, errors.ErrInvalidInput, s.Unmarshal(withEntries))
}

func TestWalletAddress(t *testing.T) {
	a, err := NewDeploymentState(testWalletID, testKey(t, 1).PublicKey())
	assert.Nil(t, err)
	addr, err := a.Address()
	assert.Nil(t, err)
	if !strings.HasPrefix(addr, AddressPrefix+"1") {
		t.Fatalf("unexpected address format: %q", addr)
	}
	payload, err := bech32.DecodeWithPrefix(addr, AddressPrefix)
	assert.Nil(t, err)
	assert.Equal(t, AddressSize, len(payload))

	// Cleanup watermark does not change the address.
	a.LastCleaned = PackQueryID(testNow, 5)
	again, err := a.Address()
	assert.Nil(t, err)
	assert.Equal(t, addr, again)

	// Both the key and the wallet id are part of the address.
	b, err := NewDeploymentState(testWalletID, testKey(t, 2).PublicKey())
	assert.Nil(t, err)
	other, err := b.Address()
	assert.Nil(t, err)
	if other == addr {
		t.Fatal("different keys produce the same address")
	}
	c, err := NewDeploymentState(testWalletID+1, testKey(t, 1).PublicKey())
	assert.Nil(t, err)
	other, err = c.Address()
	assert.Nil(t, err)
	if other == addr {
		t.Fatal("different wallet ids produce the same address")
	}
}
