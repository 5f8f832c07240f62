package bank

import (
	"github.com/covault/covault"
	"github.com/covault/covault/coin"
	"github.com/covault/covault/errors"
)

// CoinMover is the subset of Controller other extensions need to move
// funds between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to
	// the destination account. Fails on insufficient funds.
	MoveCoins(store covault.KVStore, src covault.Address,
		dest covault.Address, amount coin.Coin) error
}

// Controller is the functionality needed by other extensions.
type Controller interface {
	CoinMover

	// IssueCoins increases the balance of the destination account out
	// of thin air. The amount may be negative to burn.
	IssueCoins(store covault.KVStore, dest covault.Address,
		amount coin.Coin) error

	// Balance returns the coins stored under the given address. The
	// result is nil for an account that was never funded.
	Balance(store covault.ReadOnlyKVStore, addr covault.Address) (coin.Coins, error)
}

// BaseController implements Controller on top of a wallet bucket.
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(store covault.KVStore,
	src covault.Address, dest covault.Address, amount coin.Coin) error {

	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrInvalidAmount, "non-positive transfer: %s", amount)
	}

	sender, err := c.bucket.Get(store, src)
	if err != nil {
		return err
	}
	if sender == nil {
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	}

	if !sender.Coins().Contains(amount) {
		return errors.Wrap(errors.ErrInsufficientAmount, "funds")
	}

	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return err
	}
	if err := sender.Subtract(amount); err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}

	// save them and return
	if err := c.bucket.Save(store, sender); err != nil {
		return err
	}
	return c.bucket.Save(store, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
//
// Note the amount may also be negative:
// "the lord giveth and the lord taketh away"
func (c BaseController) IssueCoins(store covault.KVStore,
	dest covault.Address, amount coin.Coin) error {

	recipient, err := c.bucket.GetOrCreate(store, dest)
	if err != nil {
		return err
	}
	if err := recipient.Add(amount); err != nil {
		return err
	}
	return c.bucket.Save(store, recipient)
}

// Balance returns the coins stored under the given address.
func (c BaseController) Balance(store covault.ReadOnlyKVStore, addr covault.Address) (coin.Coins, error) {
	wallet, err := c.bucket.Get(store, addr)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, nil
	}
	return wallet.Coins(), nil
}
