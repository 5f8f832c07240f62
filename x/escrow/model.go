package escrow

import (
	"github.com/covault/covault"
	"github.com/covault/covault/codec"
	"github.com/covault/covault/coin"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/orm"
)

// BucketName is where we store the escrow records.
const BucketName = "escrow"

// Status tracks the escrow life cycle. It only ever advances, never
// returns to an earlier state.
type Status uint8

const (
	// StatusInvalid is the zero value and never stored.
	StatusInvalid Status = iota
	// StatusCreated means the record exists but not every required vault
	// does.
	StatusCreated
	// StatusFunding means all vaults exist and deposits are accepted.
	StatusFunding
	// StatusSettled is terminal: every obligation fulfilled and every
	// share released.
	StatusSettled
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusFunding:
		return "funding"
	case StatusSettled:
		return "settled"
	}
	return "invalid"
}

// Obligation is what one participant must deposit, and what they are
// owed in return once everyone has paid.
type Obligation struct {
	// Ticker and Amount name the exact deposit required. Partial or over
	// payment is rejected, never clipped.
	Ticker string
	Amount int64
	// Source is the account the deposit must come from.
	Source covault.Address
	// Vault is the derived destination, unset until provisioned.
	Vault covault.Address
	// Fulfilled is set only after the deposit transfer succeeded.
	Fulfilled bool
	// WantTicker is the counter-asset this participant expects.
	WantTicker string
	// Beneficiary receives the WantTicker vault at settlement.
	Beneficiary covault.Address
	// Released is set per share as settlement pays out.
	Released bool
}

var _ covault.Persistent = (*Obligation)(nil)

// Validate checks the creation-time fields. Vault, Fulfilled and
// Released are managed by the handlers and start empty.
func (o *Obligation) Validate() error {
	if o == nil {
		return errors.Wrap(errors.ErrEmpty, "obligation")
	}
	if err := coin.NewCoin(o.Amount, o.Ticker).Validate(); err != nil {
		return errors.Wrap(err, "deposit")
	}
	if o.Amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "deposit amount must be positive")
	}
	if err := o.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if !coin.IsCC(o.WantTicker) {
		return errors.Wrapf(errors.ErrInvalidInput, "want ticker %q", o.WantTicker)
	}
	if err := o.Beneficiary.Validate(); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if len(o.Vault) != 0 {
		if err := o.Vault.Validate(); err != nil {
			return errors.Wrap(err, "vault")
		}
	}
	return nil
}

// Coin returns the required deposit as a coin.
func (o *Obligation) Coin() coin.Coin {
	return coin.NewCoin(o.Amount, o.Ticker)
}

// Copy returns a deep copy of the obligation.
func (o *Obligation) Copy() *Obligation {
	cpy := *o
	cpy.Source = o.Source.Clone()
	cpy.Vault = o.Vault.Clone()
	cpy.Beneficiary = o.Beneficiary.Clone()
	return &cpy
}

func (o *Obligation) Marshal() ([]byte, error) {
	var buf []byte
	buf = codec.AppendString(buf, 1, o.Ticker)
	buf = codec.AppendInt64(buf, 2, o.Amount)
	buf = codec.AppendBytes(buf, 3, o.Source)
	buf = codec.AppendBytes(buf, 4, o.Vault)
	buf = codec.AppendBool(buf, 5, o.Fulfilled)
	buf = codec.AppendString(buf, 6, o.WantTicker)
	buf = codec.AppendBytes(buf, 7, o.Beneficiary)
	buf = codec.AppendBool(buf, 8, o.Released)
	return buf, nil
}

func (o *Obligation) Unmarshal(data []byte) error {
	*o = Obligation{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			o.Ticker = d.String()
		case 2:
			o.Amount = d.Int64()
		case 3:
			o.Source = d.Bytes()
		case 4:
			o.Vault = d.Bytes()
		case 5:
			o.Fulfilled = d.Bool()
		case 6:
			o.WantTicker = d.String()
		case 7:
			o.Beneficiary = d.Bytes()
		case 8:
			o.Released = d.Bool()
		}
	}
	return d.Err()
}

// VaultEntry records one provisioned vault. The entry's authority is
// always the escrow record address; every outbound transfer from the
// vault asserts that equality.
type VaultEntry struct {
	Ticker    string
	Address   covault.Address
	Bump      uint32
	Authority covault.Address
}

var _ covault.Persistent = (*VaultEntry)(nil)

func (v *VaultEntry) Validate() error {
	if v == nil {
		return errors.Wrap(errors.ErrEmpty, "vault entry")
	}
	if !coin.IsCC(v.Ticker) {
		return errors.Wrapf(errors.ErrInvalidInput, "vault ticker %q", v.Ticker)
	}
	if err := v.Address.Validate(); err != nil {
		return errors.Wrap(err, "vault address")
	}
	if v.Bump > 255 {
		return errors.Wrap(errors.ErrInvalidInput, "bump out of range")
	}
	return v.Authority.Validate()
}

// Copy returns a deep copy of the entry.
func (v *VaultEntry) Copy() *VaultEntry {
	cpy := *v
	cpy.Address = v.Address.Clone()
	cpy.Authority = v.Authority.Clone()
	return &cpy
}

func (v *VaultEntry) Marshal() ([]byte, error) {
	var buf []byte
	buf = codec.AppendString(buf, 1, v.Ticker)
	buf = codec.AppendBytes(buf, 2, v.Address)
	buf = codec.AppendVarint(buf, 3, uint64(v.Bump))
	buf = codec.AppendBytes(buf, 4, v.Authority)
	return buf, nil
}

func (v *VaultEntry) Unmarshal(data []byte) error {
	*v = VaultEntry{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			v.Ticker = d.String()
		case 2:
			v.Address = d.Bytes()
		case 3:
			v.Bump = uint32(d.Varint())
		case 4:
			v.Authority = d.Bytes()
		}
	}
	return d.Err()
}

// Escrow is the durable record: who owes what to whom, where the
// deposits are held, and how far along the life cycle we are.
type Escrow struct {
	Metadata *covault.Metadata
	// Base is the opaque creator-chosen seed the record address derives
	// from. Immutable.
	Base []byte
	// Address and Bump are derived from Base and double as the bucket
	// primary key.
	Address covault.Address
	Bump    uint32
	// Participants is the ordered list of depositors, index-aligned with
	// Obligations. Immutable after creation.
	Participants []covault.Address
	Obligations  []*Obligation
	// Vaults holds at most one entry per distinct obligation ticker,
	// populated lazily by provisioning.
	Vaults []*VaultEntry
	Status Status
}

var _ orm.Model = (*Escrow)(nil)

// Validate checks the structural invariants of the record.
func (e *Escrow) Validate() error {
	if err := e.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(e.Base) == 0 {
		return errors.Wrap(errors.ErrEmpty, "base seed")
	}
	if err := e.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if e.Bump > 255 {
		return errors.Wrap(errors.ErrInvalidInput, "bump out of range")
	}
	if len(e.Participants) < 2 {
		return errors.Wrap(errors.ErrInvalidInput, "at least two participants required")
	}
	if len(e.Participants) != len(e.Obligations) {
		return errors.Wrap(errors.ErrInvalidInput, "participants and obligations must align")
	}
	for i, p := range e.Participants {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "participant %d", i)
		}
		for _, q := range e.Participants[i+1:] {
			if p.Equals(q) {
				return errors.Wrapf(errors.ErrDuplicate, "participant %s", p)
			}
		}
	}
	for i, o := range e.Obligations {
		if err := o.Validate(); err != nil {
			return errors.Wrapf(err, "obligation %d", i)
		}
	}
	seen := map[string]bool{}
	for _, v := range e.Vaults {
		if err := v.Validate(); err != nil {
			return errors.Wrap(err, "vault")
		}
		if seen[v.Ticker] {
			return errors.Wrapf(errors.ErrDuplicate, "vault for %s", v.Ticker)
		}
		seen[v.Ticker] = true
		if !v.Authority.Equals(e.Address) {
			return errors.Wrap(errors.ErrUnauthorized, "vault authority must be the record")
		}
	}
	if e.Status < StatusCreated || e.Status > StatusSettled {
		return errors.Wrapf(errors.ErrInvalidState, "status %d", e.Status)
	}
	return nil
}

// Vault returns the provisioned vault entry for the ticker, nil when
// not provisioned yet.
func (e *Escrow) Vault(ticker string) *VaultEntry {
	for _, v := range e.Vaults {
		if v.Ticker == ticker {
			return v
		}
	}
	return nil
}

// Tickers returns the distinct obligation tickers in first-seen order.
func (e *Escrow) Tickers() []string {
	var res []string
	for _, o := range e.Obligations {
		found := false
		for _, t := range res {
			if t == o.Ticker {
				found = true
				break
			}
		}
		if !found {
			res = append(res, o.Ticker)
		}
	}
	return res
}

// FullyProvisioned reports whether every distinct obligation ticker has
// a vault.
func (e *Escrow) FullyProvisioned() bool {
	for _, t := range e.Tickers() {
		if e.Vault(t) == nil {
			return false
		}
	}
	return true
}

// AllFulfilled reports whether every obligation was deposited.
func (e *Escrow) AllFulfilled() bool {
	for _, o := range e.Obligations {
		if !o.Fulfilled {
			return false
		}
	}
	return true
}

// AllReleased reports whether every settlement share was paid out.
func (e *Escrow) AllReleased() bool {
	for _, o := range e.Obligations {
		if !o.Released {
			return false
		}
	}
	return true
}

func (e *Escrow) Marshal() ([]byte, error) {
	var buf []byte
	if e.Metadata != nil {
		raw, err := e.Metadata.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	buf = codec.AppendBytes(buf, 2, e.Base)
	buf = codec.AppendBytes(buf, 3, e.Address)
	buf = codec.AppendVarint(buf, 4, uint64(e.Bump))
	for _, p := range e.Participants {
		buf = codec.AppendBytes(buf, 5, p)
	}
	for _, o := range e.Obligations {
		raw, err := o.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 6, raw)
	}
	for _, v := range e.Vaults {
		raw, err := v.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 7, raw)
	}
	buf = codec.AppendVarint(buf, 8, uint64(e.Status))
	return buf, nil
}

func (e *Escrow) Unmarshal(data []byte) error {
	*e = Escrow{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			e.Metadata = new(covault.Metadata)
			if err := e.Metadata.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 2:
			e.Base = d.Bytes()
		case 3:
			e.Address = d.Bytes()
		case 4:
			e.Bump = uint32(d.Varint())
		case 5:
			e.Participants = append(e.Participants, covault.Address(d.Bytes()))
		case 6:
			var o Obligation
			if err := o.Unmarshal(d.Bytes()); err != nil {
				return err
			}
			e.Obligations = append(e.Obligations, &o)
		case 7:
			var v VaultEntry
			if err := v.Unmarshal(d.Bytes()); err != nil {
				return err
			}
			e.Vaults = append(e.Vaults, &v)
		case 8:
			e.Status = Status(d.Varint())
		}
	}
	return d.Err()
}

//--- escrow.Bucket - type-safe bucket

// participantIndex extracts the participant addresses so records can be
// queried per participant.
func participantIndex(obj orm.Object) ([][]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "cannot index nil")
	}
	esc, ok := obj.Value().(*Escrow)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidType, "not an escrow")
	}
	keys := make([][]byte, len(esc.Participants))
	for i, p := range esc.Participants {
		keys[i] = p
	}
	return keys, nil
}

// Bucket is a type-safe wrapper around orm.Bucket.
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes an escrow bucket with a participant index.
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName,
			orm.NewSimpleObj(nil, &Escrow{})).
			WithMultiKeyIndex("participant", participantIndex, false),
	}
}

// GetEscrow loads the record stored under the derived address, nil when
// absent.
func (b Bucket) GetEscrow(db covault.ReadOnlyKVStore, addr covault.Address) (*Escrow, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	esc, ok := obj.Value().(*Escrow)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidType, "not an escrow")
	}
	return esc, nil
}

// SaveEscrow persists the record. The bucket key is always the derived
// address, nothing else.
func (b Bucket) SaveEscrow(db covault.KVStore, esc *Escrow) error {
	return b.Save(db, orm.NewSimpleObj(esc.Address, esc))
}
