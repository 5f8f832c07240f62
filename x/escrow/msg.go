package escrow

import (
	"github.com/covault/covault"
	"github.com/covault/covault/codec"
	"github.com/covault/covault/coin"
	"github.com/covault/covault/errors"
)

const (
	pathCreateEscrowMsg = "escrow/create"
	pathCreateVaultMsg  = "escrow/create_vault"
	pathFulfillMsg      = "escrow/fulfill"
	pathSettleMsg       = "escrow/settle"

	maxBaseSeedLen = 128
)

var (
	_ covault.Msg = (*CreateEscrowMsg)(nil)
	_ covault.Msg = (*CreateVaultMsg)(nil)
	_ covault.Msg = (*FulfillMsg)(nil)
	_ covault.Msg = (*SettleMsg)(nil)
)

// CreateEscrowMsg fixes participants and obligations for the entire
// life of the escrow. The five sequences are index aligned and never
// reordered by the protocol: Amounts[i] is the deposit owed by
// Participants[i], drawn from Sources[i], and at settlement the vault
// holding WantTickers[i] is released to Beneficiaries[i].
type CreateEscrowMsg struct {
	Metadata      *covault.Metadata
	Base          []byte
	Participants  []covault.Address
	Amounts       []*coin.Coin
	Sources       []covault.Address
	WantTickers   []string
	Beneficiaries []covault.Address
}

// Path returns the routing path for this message.
func (CreateEscrowMsg) Path() string {
	return pathCreateEscrowMsg
}

// Validate makes sure the five sequences align and describe a
// resolvable escrow.
func (m *CreateEscrowMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if len(m.Base) == 0 {
		return errors.Wrap(errors.ErrEmpty, "base seed")
	}
	if len(m.Base) > maxBaseSeedLen {
		return errors.Wrap(errors.ErrInvalidInput, "base seed too long")
	}
	n := len(m.Participants)
	if n < 2 {
		return errors.Wrap(errors.ErrInvalidInput, "at least two participants required")
	}
	if len(m.Amounts) != n || len(m.Sources) != n ||
		len(m.WantTickers) != n || len(m.Beneficiaries) != n {
		return errors.Wrap(errors.ErrInvalidInput, "sequences must have equal length")
	}
	for i, p := range m.Participants {
		if err := p.Validate(); err != nil {
			return errors.Wrapf(err, "participant %d", i)
		}
		for _, q := range m.Participants[i+1:] {
			if p.Equals(q) {
				return errors.Wrapf(errors.ErrInvalidInput, "duplicate participant %s", p)
			}
		}
	}
	for i, c := range m.Amounts {
		if c == nil {
			return errors.Wrapf(errors.ErrEmpty, "amount %d", i)
		}
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "amount %d", i)
		}
		if !c.IsPositive() {
			return errors.Wrapf(errors.ErrInvalidAmount, "amount %d must be positive", i)
		}
	}
	for i, s := range m.Sources {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "source %d", i)
		}
	}
	for i, t := range m.WantTickers {
		if !coin.IsCC(t) {
			return errors.Wrapf(errors.ErrInvalidInput, "want ticker %d: %q", i, t)
		}
		// the counter-asset must be funded by some obligation
		funded := false
		for _, c := range m.Amounts {
			if c != nil && c.Ticker == t {
				funded = true
				break
			}
		}
		if !funded {
			return errors.Wrapf(errors.ErrInvalidInput, "want ticker %q funded by no obligation", t)
		}
		// a vault is released whole to exactly one beneficiary, so two
		// participants wanting the same asset would be ambiguous
		for _, u := range m.WantTickers[i+1:] {
			if t == u {
				return errors.Wrapf(errors.ErrInvalidInput, "want ticker %q claimed twice", t)
			}
		}
	}
	for i, b := range m.Beneficiaries {
		if err := b.Validate(); err != nil {
			return errors.Wrapf(err, "beneficiary %d", i)
		}
	}
	return nil
}

func (m *CreateEscrowMsg) Marshal() ([]byte, error) {
	var buf []byte
	if m.Metadata != nil {
		raw, err := m.Metadata.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	buf = codec.AppendBytes(buf, 2, m.Base)
	for _, p := range m.Participants {
		buf = codec.AppendBytes(buf, 3, p)
	}
	for _, c := range m.Amounts {
		raw, err := c.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 4, raw)
	}
	for _, s := range m.Sources {
		buf = codec.AppendBytes(buf, 5, s)
	}
	for _, t := range m.WantTickers {
		buf = codec.AppendString(buf, 6, t)
	}
	for _, b := range m.Beneficiaries {
		buf = codec.AppendBytes(buf, 7, b)
	}
	return buf, nil
}

func (m *CreateEscrowMsg) Unmarshal(data []byte) error {
	*m = CreateEscrowMsg{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Metadata = new(covault.Metadata)
			if err := m.Metadata.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 2:
			m.Base = d.Bytes()
		case 3:
			m.Participants = append(m.Participants, covault.Address(d.Bytes()))
		case 4:
			var c coin.Coin
			if err := c.Unmarshal(d.Bytes()); err != nil {
				return err
			}
			m.Amounts = append(m.Amounts, &c)
		case 5:
			m.Sources = append(m.Sources, covault.Address(d.Bytes()))
		case 6:
			m.WantTickers = append(m.WantTickers, d.String())
		case 7:
			m.Beneficiaries = append(m.Beneficiaries, covault.Address(d.Bytes()))
		}
	}
	return d.Err()
}

// CreateVaultMsg provisions the deposit vault for one asset. Any
// participant may send it any number of times, racing calls included:
// an existing vault makes it a no-op success.
type CreateVaultMsg struct {
	Metadata      *covault.Metadata
	EscrowAddress covault.Address
	Ticker        string
}

// Path returns the routing path for this message.
func (CreateVaultMsg) Path() string {
	return pathCreateVaultMsg
}

// Validate is a stateless sanity check.
func (m *CreateVaultMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.EscrowAddress.Validate(); err != nil {
		return errors.Wrap(err, "escrow address")
	}
	if !coin.IsCC(m.Ticker) {
		return errors.Wrapf(errors.ErrInvalidInput, "ticker %q", m.Ticker)
	}
	return nil
}

func (m *CreateVaultMsg) Marshal() ([]byte, error) {
	var buf []byte
	if m.Metadata != nil {
		raw, err := m.Metadata.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	buf = codec.AppendBytes(buf, 2, m.EscrowAddress)
	buf = codec.AppendString(buf, 3, m.Ticker)
	return buf, nil
}

func (m *CreateVaultMsg) Unmarshal(data []byte) error {
	*m = CreateVaultMsg{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Metadata = new(covault.Metadata)
			if err := m.Metadata.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 2:
			m.EscrowAddress = d.Bytes()
		case 3:
			m.Ticker = d.String()
		}
	}
	return d.Err()
}

// DepositAttempt is the caller's claimed transfer. It is transient,
// validated field by field against the recorded obligation and never
// persisted.
type DepositAttempt struct {
	Ticker      string
	Amount      int64
	Source      covault.Address
	Destination covault.Address
	Authority   covault.Address
}

var _ covault.Persistent = (*DepositAttempt)(nil)

// Validate is a stateless sanity check. Matching the attempt against
// the obligation happens in the handler.
func (a *DepositAttempt) Validate() error {
	if a == nil {
		return errors.Wrap(errors.ErrEmpty, "deposit")
	}
	if !coin.IsCC(a.Ticker) {
		return errors.Wrapf(errors.ErrInvalidInput, "ticker %q", a.Ticker)
	}
	if a.Amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	if err := a.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := a.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return errors.Wrap(a.Authority.Validate(), "authority")
}

func (a *DepositAttempt) Marshal() ([]byte, error) {
	var buf []byte
	buf = codec.AppendString(buf, 1, a.Ticker)
	buf = codec.AppendInt64(buf, 2, a.Amount)
	buf = codec.AppendBytes(buf, 3, a.Source)
	buf = codec.AppendBytes(buf, 4, a.Destination)
	buf = codec.AppendBytes(buf, 5, a.Authority)
	return buf, nil
}

func (a *DepositAttempt) Unmarshal(data []byte) error {
	*a = DepositAttempt{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			a.Ticker = d.String()
		case 2:
			a.Amount = d.Int64()
		case 3:
			a.Source = d.Bytes()
		case 4:
			a.Destination = d.Bytes()
		case 5:
			a.Authority = d.Bytes()
		}
	}
	return d.Err()
}

// FulfillMsg deposits the caller's obligation into the vault. The
// declared Amount and the amount embedded in the deposit are two
// independent facts; each must equal the recorded obligation.
type FulfillMsg struct {
	Metadata      *covault.Metadata
	EscrowAddress covault.Address
	Deposit       *DepositAttempt
	Amount        int64
}

// Path returns the routing path for this message.
func (FulfillMsg) Path() string {
	return pathFulfillMsg
}

// Validate is a stateless sanity check.
func (m *FulfillMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := m.EscrowAddress.Validate(); err != nil {
		return errors.Wrap(err, "escrow address")
	}
	if err := m.Deposit.Validate(); err != nil {
		return errors.Wrap(err, "deposit")
	}
	if m.Amount <= 0 {
		return errors.Wrap(errors.ErrInvalidAmount, "amount must be positive")
	}
	return nil
}

func (m *FulfillMsg) Marshal() ([]byte, error) {
	var buf []byte
	if m.Metadata != nil {
		raw, err := m.Metadata.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	buf = codec.AppendBytes(buf, 2, m.EscrowAddress)
	if m.Deposit != nil {
		raw, err := m.Deposit.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 3, raw)
	}
	buf = codec.AppendInt64(buf, 4, m.Amount)
	return buf, nil
}

func (m *FulfillMsg) Unmarshal(data []byte) error {
	*m = FulfillMsg{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Metadata = new(covault.Metadata)
			if err := m.Metadata.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 2:
			m.EscrowAddress = d.Bytes()
		case 3:
			m.Deposit = new(DepositAttempt)
			if err := m.Deposit.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 4:
			m.Amount = d.Int64()
		}
	}
	return d.Err()
}

// SettleMsg retries the release of unpaid settlement shares. Anyone may
// send it once all obligations are fulfilled; released shares are never
// paid twice.
type SettleMsg struct {
	Metadata      *covault.Metadata
	EscrowAddress covault.Address
}

// Path returns the routing path for this message.
func (SettleMsg) Path() string {
	return pathSettleMsg
}

// Validate is a stateless sanity check.
func (m *SettleMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(m.EscrowAddress.Validate(), "escrow address")
}

func (m *SettleMsg) Marshal() ([]byte, error) {
	var buf []byte
	if m.Metadata != nil {
		raw, err := m.Metadata.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	buf = codec.AppendBytes(buf, 2, m.EscrowAddress)
	return buf, nil
}

func (m *SettleMsg) Unmarshal(data []byte) error {
	*m = SettleMsg{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Metadata = new(covault.Metadata)
			if err := m.Metadata.Unmarshal(d.Bytes()); err != nil {
				return err
			}
		case 2:
			m.EscrowAddress = d.Bytes()
		}
	}
	return d.Err()
}
