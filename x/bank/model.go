// Package bank keeps track of asset balances. Every address owns a
// wallet, a normalized set of coins. Other extensions move value
// between wallets through the Controller interface.
package bank

import (
	"github.com/covault/covault"
	"github.com/covault/covault/codec"
	"github.com/covault/covault/coin"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/orm"
)

// BucketName is where we store the balances
const BucketName = "bank"

// Set holds the coins stored in a wallet.
type Set struct {
	Coins coin.Coins
}

var _ covault.Persistent = (*Set)(nil)

// Validate requires that all coins are in alphabetical order
// with no zero or duplicate entries
func (s *Set) Validate() error {
	return s.Coins.Validate()
}

// Copy makes a new set with the same coins
func (s *Set) Copy() *Set {
	return &Set{
		Coins: s.Coins.Clone(),
	}
}

// Marshal encodes the set as repeated coin fields.
func (s *Set) Marshal() ([]byte, error) {
	var buf []byte
	for _, c := range s.Coins {
		raw, err := c.Marshal()
		if err != nil {
			return nil, err
		}
		buf = codec.AppendBytes(buf, 1, raw)
	}
	return buf, nil
}

// Unmarshal replaces the set content with the serialized data.
func (s *Set) Unmarshal(data []byte) error {
	*s = Set{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			var c coin.Coin
			if err := c.Unmarshal(d.Bytes()); err != nil {
				return err
			}
			s.Coins = append(s.Coins, &c)
		}
	}
	return d.Err()
}

//--- Wallet (Set object, wallet + key)

// Wallet is the actual object that we want to pass around
// in our code. It contains a set of coins, as well as the
// address. It is connected to the Bucket to easily manipulate
// state.
//
// Wallet is a type-safe wrapper around orm.SimpleObj
type Wallet struct {
	key   []byte
	value *Set
}

var _ orm.Object = (*Wallet)(nil)

// NewWallet creates an empty wallet with this address
func NewWallet(key covault.Address) *Wallet {
	return &Wallet{
		key:   key,
		value: new(Set),
	}
}

// Value gets the value stored in the object
func (w Wallet) Value() covault.Persistent {
	return w.value
}

// Key returns the key to store the object under
func (w Wallet) Key() []byte {
	return w.key
}

// Address returns the address of the wallet owner
func (w Wallet) Address() covault.Address {
	return covault.Address(w.key)
}

// Validate makes sure the fields aren't empty.
// And delegates to the value validator if present
func (w Wallet) Validate() error {
	if err := covault.Address(w.key).Validate(); err != nil {
		return err
	}
	return w.value.Validate()
}

// SetKey may be used to update a wallet key
func (w *Wallet) SetKey(key []byte) {
	w.key = key
}

// Clone will make a copy of this object
func (w *Wallet) Clone() orm.Object {
	res := &Wallet{
		value: w.value.Copy(),
	}
	// only copy key if non-nil
	if len(w.key) > 0 {
		res.key = append([]byte(nil), w.key...)
	}
	return res
}

// Coins returns the coins stored in the wallet
func (w Wallet) Coins() coin.Coins {
	return w.value.Coins
}

// Add modifies the wallet to add Coin c
func (w *Wallet) Add(c coin.Coin) error {
	cs, err := w.Coins().Add(c)
	if err != nil {
		return err
	}
	w.value.Coins = cs
	return nil
}

// Subtract modifies the wallet to remove Coin c
func (w *Wallet) Subtract(c coin.Coin) error {
	return w.Add(c.Negative())
}

//--- bank.Bucket - type-safe bucket

// Bucket is a type-safe wrapper around orm.Bucket
type Bucket struct {
	orm.Bucket
}

// NewBucket initializes a bank.Bucket with default name
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewWallet(nil)),
	}
}

// RegisterQuery will register the wallet bucket as "/wallets".
func RegisterQuery(qr covault.QueryRouter) {
	NewBucket().Register("wallets", qr)
}

// Get loads the wallet at this address, nil when absent
func (b Bucket) Get(db covault.ReadOnlyKVStore, key covault.Address) (*Wallet, error) {
	obj, err := b.Bucket.Get(db, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	wallet, ok := obj.(*Wallet)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidType, "not a wallet")
	}
	return wallet, nil
}

// Save persists the wallet
func (b Bucket) Save(db covault.KVStore, value *Wallet) error {
	return b.Bucket.Save(db, value)
}

// GetOrCreate loads the wallet, or returns a fresh empty one
func (b Bucket) GetOrCreate(db covault.KVStore, key covault.Address) (*Wallet, error) {
	wallet, err := b.Get(db, key)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		wallet = NewWallet(key)
	}
	return wallet, nil
}
