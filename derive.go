package covault

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/agl/ed25519/edwards25519"

	"github.com/covault/covault/errors"
)

// deriveNamespace is the program identity mixed into every derived address.
// Changing it moves the whole derived address space, so it must stay fixed
// for the lifetime of the ledger.
var deriveNamespace = []byte("covault/derive/v1")

// Derive maps an ordered tuple of seeds to a stable account address and a
// disambiguation bump. It is a pure function of the derivation namespace
// and the seeds: any observer can recompute the address without a lookup
// table.
//
// The returned address is guaranteed not to decode as an ed25519 curve
// point, so no private key holder can ever claim it. The guarantee is
// established the same way runtimes with key-based accounts do it: the bump
// is scanned downward from 255 until the candidate digest falls off the
// curve. Exhausting all 256 bump values is a fatal configuration error that
// cannot occur in practice.
//
// Each seed is length-prefixed before hashing, so distinct seed tuples
// cannot produce the same digest input.
func Derive(seeds ...[]byte) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		candidate := deriveCandidate(seeds, uint8(bump))
		if !onCurve(candidate) {
			return Address(candidate[:]), uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrHuman, "bump seed space exhausted")
}

// DeriveWithBump recomputes the address for a known bump. It fails if the
// candidate lands on the curve, which means the bump was not produced by
// Derive for these seeds.
func DeriveWithBump(bump uint8, seeds ...[]byte) (Address, error) {
	candidate := deriveCandidate(seeds, bump)
	if onCurve(candidate) {
		return nil, errors.Wrap(errors.ErrInvalidInput, "bump lands on the curve")
	}
	return Address(candidate[:]), nil
}

func deriveCandidate(seeds [][]byte, bump uint8) [32]byte {
	h := sha256.New()
	h.Write(deriveNamespace)
	for _, seed := range seeds {
		var l [4]byte
		binary.BigEndian.PutUint32(l[:], uint32(len(seed)))
		h.Write(l[:])
		h.Write(seed)
	}
	h.Write([]byte{bump})

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// onCurve reports whether the 32 bytes decode as a valid ed25519 group
// element, i.e. whether they could be somebody's public key.
func onCurve(b [32]byte) bool {
	var p edwards25519.ExtendedGroupElement
	return p.FromBytes(&b)
}
