package treasurytest

import (
	"bytes"
	"testing"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/crypto"
)

// NewKey returns a fresh, random private key.
func NewKey(t testing.TB) *crypto.PrivateKey {
	t.Helper()

	key, err := crypto.GenPrivKeyEd25519()
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	return key
}

// NewAddress returns the principal of a fresh, random key.
func NewAddress(t testing.TB) treasury.Address {
	t.Helper()
	return NewKey(t).Address()
}

// SeedAddress returns a principal that is always the same for the same seed
// byte. Use it when a test needs stable addresses, for example in fixtures or
// property tests.
func SeedAddress(seed byte) treasury.Address {
	key, err := crypto.PrivKeyEd25519FromSeed(bytes.Repeat([]byte{seed}, 32))
	if err != nil {
		panic(err)
	}
	return key.Address()
}

// ParseAddress takes an address in a human readable format and returns its
// binary representation.
func ParseAddress(t testing.TB, encodedAddress string) treasury.Address {
	t.Helper()

	addr, err := treasury.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}
