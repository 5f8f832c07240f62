package escrow

import (
	"github.com/covault/covault/errors"
)

// escrow reserves 1000~1009 for its error codes.
var (
	// ErrNoMatchingObligation means the caller is not a participant with
	// an open obligation on this escrow.
	ErrNoMatchingObligation = errors.Register(1000, "no matching obligation")

	// ErrAlreadyFulfilled means the caller's obligation was satisfied by
	// an earlier deposit.
	ErrAlreadyFulfilled = errors.Register(1001, "obligation already fulfilled")

	// ErrAssetMismatch means the deposit names a different asset than the
	// recorded obligation.
	ErrAssetMismatch = errors.Register(1002, "deposit asset does not match obligation")

	// ErrAmountMismatch means the declared or embedded deposit amount
	// differs from the recorded obligation amount.
	ErrAmountMismatch = errors.Register(1003, "deposit amount does not match obligation")

	// ErrDestinationMismatch means the deposit targets an account other
	// than the provisioned vault.
	ErrDestinationMismatch = errors.Register(1004, "deposit destination is not the vault")

	// ErrVaultNotProvisioned means no vault exists yet for the asset the
	// obligation requires.
	ErrVaultNotProvisioned = errors.Register(1005, "vault not provisioned")

	// ErrPartialSettlement means one or more settlement shares could not
	// be released. Released shares stay released, a retry pays the rest.
	ErrPartialSettlement = errors.Register(1006, "settlement incomplete")
)
