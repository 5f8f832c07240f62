package escrow

import (
	"github.com/covault/covault"
	"github.com/covault/covault/coin"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/x/bank"
)

// Settle pays every unpaid settlement share and marks the record
// Settled once all of them are released.
//
// Each share is released inside its own cache wrap, so one failing
// release never poisons the others. Released flags persist for the
// shares that got paid; a retry pays only the rest. Returns
// ErrPartialSettlement while shares remain, never unwinding the paid
// ones.
func Settle(db covault.KVStore, esc *Escrow, mover bank.CoinMover) error {
	if !esc.AllFulfilled() {
		return errors.Wrap(errors.ErrInvalidState, "not fully funded")
	}
	if esc.Status == StatusSettled {
		return errors.Wrap(errors.ErrInvalidState, "already settled")
	}

	var failed int
	for _, o := range esc.Obligations {
		if o.Released {
			continue
		}
		if err := releaseShare(db, esc, o, mover); err != nil {
			failed++
			continue
		}
		o.Released = true
	}
	if failed > 0 {
		return errors.Wrapf(ErrPartialSettlement, "%d shares unreleased", failed)
	}
	esc.Status = StatusSettled
	return nil
}

// releaseShare moves the full content of the WantTicker vault to the
// beneficiary. Only the record itself may authorize the outbound
// transfer, asserted against the vault entry's authority field.
func releaseShare(db covault.KVStore, esc *Escrow, o *Obligation, mover bank.CoinMover) error {
	ve := esc.Vault(o.WantTicker)
	if ve == nil {
		return errors.Wrapf(ErrVaultNotProvisioned, "no vault for %s", o.WantTicker)
	}
	if !ve.Authority.Equals(esc.Address) {
		return errors.Wrap(errors.ErrUnauthorized, "vault authority is not the record")
	}

	share := coin.NewCoin(fundedAmount(esc, o.WantTicker), o.WantTicker)

	cdb, ok := db.(covault.CacheableKVStore)
	if !ok {
		return mover.MoveCoins(db, ve.Address, o.Beneficiary, share)
	}
	cache := cdb.CacheWrap()
	if err := mover.MoveCoins(cache, ve.Address, o.Beneficiary, share); err != nil {
		cache.Discard()
		return err
	}
	cache.Write()
	return nil
}

// fundedAmount is the total the obligations deposit into the ticker's
// vault. Creation guarantees exactly one participant wants each ticker,
// so the vault is released whole.
func fundedAmount(esc *Escrow, ticker string) int64 {
	var total int64
	for _, o := range esc.Obligations {
		if o.Ticker == ticker {
			total += o.Amount
		}
	}
	return total
}
