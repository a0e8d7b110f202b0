/*
Package crypto derives principals from ed25519 keys.

The engine never verifies signatures; callers are authenticated by the hosting
environment. Keys are only used to produce stable, collision free addresses
for owners and targets.
*/
package crypto

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/iov-one/treasury"
	"github.com/iov-one/treasury/errors"
	"github.com/stellar/go/exp/crypto/derivation"
	"golang.org/x/crypto/ed25519"
)

// conditionPrefix namespaces the public key before hashing it into an
// address.
const conditionPrefix = "sigs/ed25519/"

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return &PrivateKey{key: priv}, nil
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// DerivePrivKeyEd25519 derives a child key from a master seed using SLIP-0010
// hardened derivation, for example with the "m/44'/234'/0'" path.
func DerivePrivKeyEd25519(master []byte, path string) (*PrivateKey, error) {
	k, err := derivation.DeriveForPath(path, master)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "derive %q: %s", path, err)
	}
	return PrivKeyEd25519FromSeed(k.Key)
}

// Seed returns the hex encoded seed the key can be restored from.
func (p *PrivateKey) Seed() string {
	return hex.EncodeToString(p.key.Seed())
}

// PublicKey returns the corresponding public key.
func (p *PrivateKey) PublicKey() ed25519.PublicKey {
	return p.key.Public().(ed25519.PublicKey)
}

// Address returns the principal controlled by this key.
func (p *PrivateKey) Address() treasury.Address {
	return PublicKeyAddress(p.PublicKey())
}

// PublicKeyAddress returns the principal of given public key.
func PublicKeyAddress(pub ed25519.PublicKey) treasury.Address {
	return treasury.NewAddress(append([]byte(conditionPrefix), pub...))
}
