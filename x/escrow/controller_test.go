package escrow

import (
	"testing"

	"github.com/covault/covault"
	"github.com/covault/covault/covtest/assert"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/store"
	"github.com/covault/covault/x/bank"
)

// fundedEscrow returns a fully funded two-party record with the vault
// wallets holding the deposits.
func fundedEscrow(t testing.TB, db covault.KVStore, ctrl bank.Controller) *Escrow {
	t.Helper()
	esc := twoPartyEscrow(t, addr(), addr())
	provision(t, esc)
	for _, o := range esc.Obligations {
		o.Fulfilled = true
		assert.Nil(t, ctrl.IssueCoins(db, o.Vault, o.Coin()))
	}
	return esc
}

func TestSettle(t *testing.T) {
	db := store.MemStore()
	ctrl := bank.NewController(bank.NewBucket())
	esc := fundedEscrow(t, db, ctrl)

	assert.Nil(t, Settle(db, esc, ctrl))

	assert.Equal(t, StatusSettled, esc.Status)
	if !esc.AllReleased() {
		t.Fatal("unreleased shares on a settled escrow")
	}
	// participant 0 wants YCO, participant 1 wants XCO
	coins, err := ctrl.Balance(db, esc.Obligations[0].Beneficiary)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), coins.Amount("YCO"))
	coins, err = ctrl.Balance(db, esc.Obligations[1].Beneficiary)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), coins.Amount("XCO"))
}

func TestSettleRequiresFullFunding(t *testing.T) {
	db := store.MemStore()
	ctrl := bank.NewController(bank.NewBucket())
	esc := fundedEscrow(t, db, ctrl)
	esc.Obligations[1].Fulfilled = false

	err := Settle(db, esc, ctrl)
	assert.IsErr(t, errors.ErrInvalidState, err)
	assert.Equal(t, StatusFunding, esc.Status)
}

func TestSettleRejectsSettled(t *testing.T) {
	db := store.MemStore()
	ctrl := bank.NewController(bank.NewBucket())
	esc := fundedEscrow(t, db, ctrl)
	assert.Nil(t, Settle(db, esc, ctrl))

	err := Settle(db, esc, ctrl)
	assert.IsErr(t, errors.ErrInvalidState, err)
}

func TestSettlePartialThenRetry(t *testing.T) {
	db := store.MemStore()
	ctrl := bank.NewController(bank.NewBucket())
	esc := fundedEscrow(t, db, ctrl)

	// the XCO vault cannot pay out yet
	dm := &denyMover{ctrl: ctrl, denySrc: esc.Vault("XCO").Address}
	err := Settle(db, esc, dm)
	assert.IsErr(t, ErrPartialSettlement, err)

	assert.Equal(t, StatusFunding, esc.Status)
	assert.Equal(t, true, esc.Obligations[0].Released)
	assert.Equal(t, false, esc.Obligations[1].Released)

	// a discarded share leaves the vault wallet untouched
	coins, err := ctrl.Balance(db, esc.Vault("XCO").Address)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), coins.Amount("XCO"))

	// the retry pays only the unpaid share
	assert.Nil(t, Settle(db, esc, ctrl))
	assert.Equal(t, StatusSettled, esc.Status)
	coins, err = ctrl.Balance(db, esc.Obligations[0].Beneficiary)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), coins.Amount("YCO"))
	coins, err = ctrl.Balance(db, esc.Obligations[1].Beneficiary)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), coins.Amount("XCO"))
}

func TestSettleVaultAuthorityCheck(t *testing.T) {
	db := store.MemStore()
	ctrl := bank.NewController(bank.NewBucket())
	esc := fundedEscrow(t, db, ctrl)

	// a vault the record does not control is never drained
	esc.Vaults[0].Authority = addr()

	err := Settle(db, esc, ctrl)
	assert.IsErr(t, ErrPartialSettlement, err)

	coins, berr := ctrl.Balance(db, esc.Vault("XCO").Address)
	assert.Nil(t, berr)
	assert.Equal(t, int64(10), coins.Amount("XCO"))
}

func TestFundedAmount(t *testing.T) {
	esc := twoPartyEscrow(t, addr(), addr())
	assert.Equal(t, int64(10), fundedAmount(esc, "XCO"))
	assert.Equal(t, int64(0), fundedAmount(esc, "ZZZ"))
}
