// Package crypto provides the signer identities of the ledger. A public
// key maps into the address space through a condition, which keeps
// key-derived addresses cleanly separated from registry-derived ones.
package crypto

import (
	"golang.org/x/crypto/ed25519"

	"github.com/covault/covault"
	"github.com/covault/covault/errors"
)

// ExtensionName is the condition extension for signature identities.
const ExtensionName = "sigs"

// Signer is implemented by anything that can authorize a message.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() PublicKey
}

// PublicKey wraps an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte
}

// Verify verifies the signature was created with this message and the
// private key matching this public key.
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig)
}

// Condition encodes the public key into a permission.
func (p PublicKey) Condition() covault.Condition {
	return covault.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address is a shortcut for Condition().Address().
func (p PublicKey) Address() covault.Address {
	return p.Condition().Address()
}

// Validate ensures the key has the proper size.
func (p PublicKey) Validate() error {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInvalidInput, "public key size: %d", len(p.Ed25519))
	}
	return nil
}

// PrivateKey wraps an ed25519 private key.
type PrivateKey struct {
	Ed25519 []byte
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key.
func (p PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "private key size: %d", len(p.Ed25519))
	}
	return ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message), nil
}

// PublicKey returns the corresponding public key.
func (p PrivateKey) PublicKey() PublicKey {
	priv := ed25519.PrivateKey(p.Ed25519)
	return PublicKey{
		Ed25519: priv.Public().(ed25519.PublicKey),
	}
}

// GenPrivKeyEd25519 returns a random new private key.
func GenPrivKeyEd25519() PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key
// from a given seed. Use if you have a strong source of external
// randomness, or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) PrivateKey {
	return PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
