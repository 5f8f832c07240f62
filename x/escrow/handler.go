package escrow

import (
	"fmt"

	"github.com/covault/covault"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/x"
	"github.com/covault/covault/x/bank"
)

const (
	createEscrowCost int64 = 300
	createVaultCost  int64 = 100
	fulfillCost      int64 = 200
	settleCost       int64 = 150
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r covault.Registry, auth x.Authenticator, mover bank.CoinMover) {
	bucket := NewBucket()
	r.Handle(&CreateEscrowMsg{}, CreateEscrowHandler{auth: auth, bucket: bucket})
	r.Handle(&CreateVaultMsg{}, CreateVaultHandler{auth: auth, bucket: bucket})
	r.Handle(&FulfillMsg{}, FulfillHandler{auth: auth, bucket: bucket, mover: mover})
	r.Handle(&SettleMsg{}, SettleHandler{bucket: bucket, mover: mover})
}

// RegisterQuery will register this bucket and its participant index
// with the query router.
func RegisterQuery(qr covault.QueryRouter) {
	NewBucket().Register("escrows", qr)
}

// CreateEscrowHandler persists a new escrow record. No assets move.
type CreateEscrowHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ covault.Handler = CreateEscrowHandler{}

// Check verifies the message without writing anything.
func (h CreateEscrowHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &covault.CheckResult{GasAllocated: createEscrowCost}, nil
}

// Deliver derives the record address from the base seed and stores the
// record with status Created. The derived address is returned as data.
func (h CreateEscrowHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	addr, bump, err := covault.Derive(msg.Base)
	if err != nil {
		return nil, err
	}
	existing, err := h.bucket.GetEscrow(db, addr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "escrow %s", addr)
	}

	obligations := make([]*Obligation, len(msg.Participants))
	for i := range msg.Participants {
		obligations[i] = &Obligation{
			Ticker:      msg.Amounts[i].Ticker,
			Amount:      msg.Amounts[i].Amount,
			Source:      msg.Sources[i],
			WantTicker:  msg.WantTickers[i],
			Beneficiary: msg.Beneficiaries[i],
		}
	}
	esc := &Escrow{
		Metadata:     msg.Metadata.Copy(),
		Base:         msg.Base,
		Address:      addr,
		Bump:         uint32(bump),
		Participants: msg.Participants,
		Obligations:  obligations,
		Status:       StatusCreated,
	}
	if err := h.bucket.SaveEscrow(db, esc); err != nil {
		return nil, err
	}
	return &covault.DeliverResult{Data: addr}, nil
}

func (h CreateEscrowHandler) validate(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*CreateEscrowMsg, error) {
	var msg CreateEscrowMsg
	if err := covault.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	// only the designated initiating signer may create
	if x.MainSigner(ctx, h.auth) == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creation requires a signer")
	}
	return &msg, nil
}

// CreateVaultHandler provisions the vault for one asset. Idempotent: a
// vault that already exists is a no-op success returning the same
// address, so racing provisioning calls are safe.
type CreateVaultHandler struct {
	auth   x.Authenticator
	bucket Bucket
}

var _ covault.Handler = CreateVaultHandler{}

// Check verifies the message without writing anything.
func (h CreateVaultHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &covault.CheckResult{GasAllocated: createVaultCost}, nil
}

// Deliver derives the vault address from (record address, ticker) and
// records it on the vault table and on every obligation of that asset.
func (h CreateVaultHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	msg, esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	if ve := esc.Vault(msg.Ticker); ve != nil {
		return &covault.DeliverResult{
			Data: ve.Address,
			Log:  fmt.Sprintf("vault for %s already provisioned", msg.Ticker),
		}, nil
	}

	addr, bump, err := covault.Derive(esc.Address, []byte(msg.Ticker))
	if err != nil {
		return nil, err
	}
	esc.Vaults = append(esc.Vaults, &VaultEntry{
		Ticker:    msg.Ticker,
		Address:   addr,
		Bump:      uint32(bump),
		Authority: esc.Address,
	})
	for _, o := range esc.Obligations {
		if o.Ticker == msg.Ticker {
			o.Vault = addr
		}
	}
	if esc.Status == StatusCreated && esc.FullyProvisioned() {
		esc.Status = StatusFunding
	}
	if err := h.bucket.SaveEscrow(db, esc); err != nil {
		return nil, err
	}
	return &covault.DeliverResult{Data: addr}, nil
}

func (h CreateVaultHandler) validate(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*CreateVaultMsg, *Escrow, error) {
	var msg CreateVaultMsg
	if err := covault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, err
	}
	esc, err := h.bucket.GetEscrow(db, msg.EscrowAddress)
	if err != nil {
		return nil, nil, err
	}
	if esc == nil {
		return nil, nil, errors.Wrapf(errors.ErrNotFound, "escrow %s", msg.EscrowAddress)
	}
	participant := false
	for _, p := range esc.Participants {
		if h.auth.HasAddress(ctx, p) {
			participant = true
			break
		}
	}
	if !participant {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "only participants may provision")
	}
	referenced := false
	for _, o := range esc.Obligations {
		if o.Ticker == msg.Ticker {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil, nil, errors.Wrapf(errors.ErrInvalidInput, "no obligation references %s", msg.Ticker)
	}
	return &msg, esc, nil
}

// FulfillHandler validates a deposit against the caller's recorded
// obligation and executes it. Every precondition is evaluated before
// any write, so a rejected deposit leaves the record untouched.
type FulfillHandler struct {
	auth   x.Authenticator
	bucket Bucket
	mover  bank.CoinMover
}

var _ covault.Handler = FulfillHandler{}

// Check verifies the deposit preconditions without moving funds.
func (h FulfillHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &covault.CheckResult{GasAllocated: fulfillCost}, nil
}

// Deliver moves the deposit into the vault, marks the obligation
// fulfilled and, when it was the last one, settles in the same
// transaction. A partial settlement does not fail the deposit: the
// record stays in Funding with per-share release flags and the rest is
// paid through SettleMsg.
func (h FulfillHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	msg, esc, idx, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	o := esc.Obligations[idx]
	if err := h.mover.MoveCoins(db, msg.Deposit.Source, o.Vault, o.Coin()); err != nil {
		return nil, errors.Wrap(err, "transfer")
	}
	// only a confirmed transfer marks the obligation fulfilled
	o.Fulfilled = true

	var log string
	if esc.AllFulfilled() {
		switch err := Settle(db, esc, h.mover); {
		case err == nil:
		case ErrPartialSettlement.Is(err):
			log = err.Error()
		default:
			return nil, err
		}
	}
	if err := h.bucket.SaveEscrow(db, esc); err != nil {
		return nil, err
	}
	return &covault.DeliverResult{Log: log}, nil
}

// validate locates the caller's open obligation and checks the deposit
// against it, in this order: asset, amounts, vault existence,
// destination, authority, source.
func (h FulfillHandler) validate(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*FulfillMsg, *Escrow, int, error) {
	var msg FulfillMsg
	if err := covault.LoadMsg(tx, &msg); err != nil {
		return nil, nil, 0, err
	}
	esc, err := h.bucket.GetEscrow(db, msg.EscrowAddress)
	if err != nil {
		return nil, nil, 0, err
	}
	if esc == nil {
		return nil, nil, 0, errors.Wrapf(errors.ErrNotFound, "escrow %s", msg.EscrowAddress)
	}

	idx := -1
	fulfilled := false
	for i, p := range esc.Participants {
		if !h.auth.HasAddress(ctx, p) {
			continue
		}
		if esc.Obligations[i].Fulfilled {
			fulfilled = true
			continue
		}
		idx = i
		break
	}
	if idx < 0 {
		if fulfilled {
			return nil, nil, 0, errors.Wrap(ErrAlreadyFulfilled, "obligation")
		}
		return nil, nil, 0, errors.Wrap(ErrNoMatchingObligation, "caller has no open obligation")
	}

	o := esc.Obligations[idx]
	caller := esc.Participants[idx]

	if msg.Deposit.Ticker != o.Ticker {
		return nil, nil, 0, errors.Wrapf(ErrAssetMismatch, "%s != %s", msg.Deposit.Ticker, o.Ticker)
	}
	// the declared amount and the amount embedded in the deposit are
	// independent facts, each must equal the record
	if msg.Amount != o.Amount || msg.Deposit.Amount != o.Amount {
		return nil, nil, 0, errors.Wrapf(ErrAmountMismatch, "want %d", o.Amount)
	}
	if len(o.Vault) == 0 {
		return nil, nil, 0, errors.Wrapf(ErrVaultNotProvisioned, "no vault for %s", o.Ticker)
	}
	if !msg.Deposit.Destination.Equals(o.Vault) {
		return nil, nil, 0, errors.Wrap(ErrDestinationMismatch, "deposit must target the vault")
	}
	if !msg.Deposit.Authority.Equals(caller) {
		return nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "caller is not the deposit authority")
	}
	if !msg.Deposit.Source.Equals(o.Source) {
		return nil, nil, 0, errors.Wrap(errors.ErrInvalidInput, "deposit source is not the recorded source")
	}
	return &msg, esc, idx, nil
}

// SettleHandler re-attempts the release of unpaid settlement shares.
// Anyone may call it once the escrow is fully funded; shares already
// released are never paid twice.
type SettleHandler struct {
	bucket Bucket
	mover  bank.CoinMover
}

var _ covault.Handler = SettleHandler{}

// Check verifies the escrow is ready to settle.
func (h SettleHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &covault.CheckResult{GasAllocated: settleCost}, nil
}

// Deliver pays the remaining shares. Progress is persisted even when
// some shares still fail, so every retry strictly shrinks the unpaid
// set.
func (h SettleHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	esc, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	var log string
	switch err := Settle(db, esc, h.mover); {
	case err == nil:
	case ErrPartialSettlement.Is(err):
		log = err.Error()
	default:
		return nil, err
	}
	if err := h.bucket.SaveEscrow(db, esc); err != nil {
		return nil, err
	}
	return &covault.DeliverResult{Log: log}, nil
}

func (h SettleHandler) validate(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*Escrow, error) {
	var msg SettleMsg
	if err := covault.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}
	esc, err := h.bucket.GetEscrow(db, msg.EscrowAddress)
	if err != nil {
		return nil, err
	}
	if esc == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "escrow %s", msg.EscrowAddress)
	}
	if esc.Status == StatusSettled {
		return nil, errors.Wrap(errors.ErrInvalidState, "already settled")
	}
	if !esc.AllFulfilled() {
		return nil, errors.Wrap(errors.ErrInvalidState, "not fully funded")
	}
	return esc, nil
}
