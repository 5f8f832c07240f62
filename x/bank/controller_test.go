package bank

import (
	"testing"

	"github.com/covault/covault/coin"
	"github.com/covault/covault/covtest/assert"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/store"
)

func TestMoveCoins(t *testing.T) {
	db := store.MemStore()
	bucket := NewBucket()
	ctrl := NewController(bucket)

	src := walletAddr()
	dest := walletAddr()

	assert.Nil(t, ctrl.IssueCoins(db, src, coin.NewCoin(100, "USD")))

	assert.Nil(t, ctrl.MoveCoins(db, src, dest, coin.NewCoin(40, "USD")))

	srcCoins, err := ctrl.Balance(db, src)
	assert.Nil(t, err)
	assert.Equal(t, int64(60), srcCoins.Amount("USD"))

	destCoins, err := ctrl.Balance(db, dest)
	assert.Nil(t, err)
	assert.Equal(t, int64(40), destCoins.Amount("USD"))
}

func TestMoveCoinsRejections(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())

	src := walletAddr()
	dest := walletAddr()

	// missing source account
	err := ctrl.MoveCoins(db, src, dest, coin.NewCoin(5, "USD"))
	assert.IsErr(t, errors.ErrEmpty, err)

	assert.Nil(t, ctrl.IssueCoins(db, src, coin.NewCoin(10, "USD")))

	// insufficient funds
	err = ctrl.MoveCoins(db, src, dest, coin.NewCoin(11, "USD"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	// wrong asset
	err = ctrl.MoveCoins(db, src, dest, coin.NewCoin(1, "BTC"))
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	// non-positive amounts
	err = ctrl.MoveCoins(db, src, dest, coin.NewCoin(0, "USD"))
	assert.IsErr(t, errors.ErrInvalidAmount, err)
	err = ctrl.MoveCoins(db, src, dest, coin.NewCoin(-4, "USD"))
	assert.IsErr(t, errors.ErrInvalidAmount, err)

	// nothing moved
	srcCoins, err := ctrl.Balance(db, src)
	assert.Nil(t, err)
	assert.Equal(t, int64(10), srcCoins.Amount("USD"))
}

func TestIssueAndBurn(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewBucket())
	addr := walletAddr()

	assert.Nil(t, ctrl.IssueCoins(db, addr, coin.NewCoin(50, "IOV")))
	assert.Nil(t, ctrl.IssueCoins(db, addr, coin.NewCoin(-20, "IOV")))

	coins, err := ctrl.Balance(db, addr)
	assert.Nil(t, err)
	assert.Equal(t, int64(30), coins.Amount("IOV"))

	// unknown account balance is nil
	coins, err = ctrl.Balance(db, walletAddr())
	assert.Nil(t, err)
	assert.Equal(t, int64(0), coins.Amount("IOV"))
}
