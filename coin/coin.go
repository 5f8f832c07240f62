// Package coin models fungible asset amounts. Every Coin combines a
// ticker naming the asset with a whole-unit amount. There are no
// fractional units, the smallest indivisible unit of every asset is 1.
package coin

import (
	"fmt"
	"regexp"

	"github.com/covault/covault/codec"
	"github.com/covault/covault/errors"
)

// IsCC is the RegExp to ensure valid currency codes
var IsCC = regexp.MustCompile(`^[A-Z]{3,4}$`).MatchString

const (
	// MaxAmount is the largest amount we accept
	MaxAmount int64 = 999999999999999 // 10^15-1
	// MinAmount is the lowest amount we accept
	MinAmount = -MaxAmount
)

// Coin is an amount of a fungible asset.
type Coin struct {
	Ticker string
	Amount int64
}

// NewCoin creates a new coin object
func NewCoin(amount int64, ticker string) Coin {
	return Coin{
		Ticker: ticker,
		Amount: amount,
	}
}

// NewCoinp returns a pointer to a new coin.
func NewCoinp(amount int64, ticker string) *Coin {
	c := NewCoin(amount, ticker)
	return &c
}

// ID returns a coin ticker name.
func (c Coin) ID() string {
	return c.Ticker
}

// Add combines two coins of the same currency.
// It returns an error on overflow or a ticker mismatch.
func (c Coin) Add(o Coin) (Coin, error) {
	if !c.SameType(o) {
		return Coin{}, errors.Wrapf(errors.ErrInvalidInput,
			"adding %s to %s", o.Ticker, c.Ticker)
	}
	amount, err := add64(c.Amount, o.Amount)
	if err != nil {
		return Coin{}, err
	}
	res := Coin{Ticker: c.Ticker, Amount: amount}
	if err := res.Validate(); err != nil {
		return Coin{}, err
	}
	return res, nil
}

// Subtract removes the amount of the other coin from this one.
func (c Coin) Subtract(o Coin) (Coin, error) {
	return c.Add(o.Negative())
}

// Negative returns the opposite coin value
//   c.Add(c.Negative()).IsZero() == true
func (c Coin) Negative() Coin {
	return Coin{
		Ticker: c.Ticker,
		Amount: -c.Amount,
	}
}

// Compare will check values of two coins of the same currency.
// It returns -1, 0 or 1 when this coin is smaller, equal or
// greater than the other. Panics on a different currency.
func (c Coin) Compare(o Coin) int {
	if !c.SameType(o) {
		panic(fmt.Sprintf("comparing %s to %s", c.Ticker, o.Ticker))
	}
	switch {
	case c.Amount < o.Amount:
		return -1
	case c.Amount > o.Amount:
		return 1
	default:
		return 0
	}
}

// Equals returns true if all fields are identical
func (c Coin) Equals(o Coin) bool {
	return c.Ticker == o.Ticker && c.Amount == o.Amount
}

// IsZero returns true if the amount is 0
func (c Coin) IsZero() bool {
	return c.Amount == 0
}

// IsPositive returns true if the amount is greater than 0
func (c Coin) IsPositive() bool {
	return c.Amount > 0
}

// IsNonNegative returns true if the amount is 0 or higher
func (c Coin) IsNonNegative() bool {
	return c.Amount >= 0
}

// IsGTE returns true if c is the same type and at least
// as large as o
func (c Coin) IsGTE(o Coin) bool {
	return c.SameType(o) && c.Amount >= o.Amount
}

// SameType returns true if both coins name the same asset
func (c Coin) SameType(o Coin) bool {
	return c.Ticker == o.Ticker
}

// Clone provides an independent copy of a coin pointer
func (c *Coin) Clone() *Coin {
	if c == nil {
		return nil
	}
	cpy := *c
	return &cpy
}

// Validate ensures the ticker is well formed and the amount in range
func (c Coin) Validate() error {
	if !IsCC(c.Ticker) {
		return errors.Wrapf(errors.ErrInvalidAmount, "invalid currency: %s", c.Ticker)
	}
	if c.Amount < MinAmount || c.Amount > MaxAmount {
		return errors.Wrap(errors.ErrInvalidAmount, "amount out of range")
	}
	return nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Ticker)
}

// Marshal encodes the coin for persistence.
func (c *Coin) Marshal() ([]byte, error) {
	buf := codec.AppendInt64(nil, 1, c.Amount)
	buf = codec.AppendString(buf, 2, c.Ticker)
	return buf, nil
}

// Unmarshal replaces the coin content with the serialized data.
func (c *Coin) Unmarshal(data []byte) error {
	*c = Coin{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			c.Amount = d.Int64()
		case 2:
			c.Ticker = d.String()
		}
	}
	return d.Err()
}

// add64 adds two int64 and reports overflow
func add64(a, b int64) (int64, error) {
	sum := a + b
	if b > 0 && sum < a {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 addition")
	}
	if b < 0 && sum > a {
		return 0, errors.Wrap(errors.ErrOverflow, "int64 subtraction")
	}
	return sum, nil
}
