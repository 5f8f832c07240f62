package covtest

import (
	"github.com/covault/covault"
	"github.com/covault/covault/crypto"
)

// NewKey returns a fresh random signer.
func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the condition of a fresh random key.
func NewCondition() covault.Condition {
	return NewKey().PublicKey().Condition()
}
