package coin

import (
	"sort"
	"strings"

	"github.com/covault/covault/errors"
)

// Coins is a set of coins, normalized to have at most one entry per
// ticker, sorted by ticker, with no zero amounts.
type Coins []*Coin

// NewCoins combines any number of coins into a normalized set,
// merging duplicate tickers.
func NewCoins(cs ...Coin) (Coins, error) {
	var res Coins
	var err error
	for _, c := range cs {
		res, err = res.Add(c)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Clone returns a deep copy of the set
func (cs Coins) Clone() Coins {
	if cs == nil {
		return nil
	}
	res := make(Coins, len(cs))
	for i, c := range cs {
		res[i] = c.Clone()
	}
	return res
}

// Add merges the given coin into the set, maintaining normalization.
// A zero result for a ticker removes the entry.
func (cs Coins) Add(c Coin) (Coins, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	i := cs.find(c.Ticker)
	if i == len(cs) || cs[i].Ticker != c.Ticker {
		if c.IsZero() {
			return cs, nil
		}
		res := make(Coins, 0, len(cs)+1)
		res = append(res, cs[:i]...)
		res = append(res, c.Clone())
		res = append(res, cs[i:]...)
		return res, nil
	}

	sum, err := cs[i].Add(c)
	if err != nil {
		return nil, err
	}
	res := cs.Clone()
	if sum.IsZero() {
		return append(res[:i], res[i+1:]...), nil
	}
	res[i] = &sum
	return res, nil
}

// Amount returns the amount stored for the given ticker, 0 when absent
func (cs Coins) Amount(ticker string) int64 {
	i := cs.find(ticker)
	if i == len(cs) || cs[i].Ticker != ticker {
		return 0
	}
	return cs[i].Amount
}

// Contains returns true if there is at least as much of the given coin
// in the set
func (cs Coins) Contains(c Coin) bool {
	return cs.Amount(c.Ticker) >= c.Amount
}

// IsEmpty returns true when the set holds no value
func (cs Coins) IsEmpty() bool {
	return len(cs) == 0
}

// IsNonNegative returns true if no coin in the set is negative
func (cs Coins) IsNonNegative() bool {
	for _, c := range cs {
		if !c.IsNonNegative() {
			return false
		}
	}
	return true
}

// Equals returns true if both sets hold the same value
func (cs Coins) Equals(o Coins) bool {
	if len(cs) != len(o) {
		return false
	}
	for i := range cs {
		if !cs[i].Equals(*o[i]) {
			return false
		}
	}
	return true
}

// Validate ensures normalization: sorted, unique, valid, non-zero coins
func (cs Coins) Validate() error {
	last := ""
	for _, c := range cs {
		if c == nil {
			return errors.Wrap(errors.ErrEmpty, "nil coin")
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if c.IsZero() {
			return errors.Wrap(errors.ErrInvalidAmount, "zero coin in set")
		}
		if c.Ticker <= last {
			return errors.Wrap(errors.ErrInvalidState, "coins not sorted by ticker")
		}
		last = c.Ticker
	}
	return nil
}

func (cs Coins) String() string {
	if len(cs) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// find returns the position of the ticker, or the insert position
// when absent
func (cs Coins) find(ticker string) int {
	return sort.Search(len(cs), func(i int) bool {
		return cs[i].Ticker >= ticker
	})
}
