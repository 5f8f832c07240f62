package app

import (
	"github.com/covault/covault"
	"github.com/covault/covault/errors"
)

// Recovery is a decorator to recover from panics in transactions,
// so we can return them as normal errors
type Recovery struct{}

var _ covault.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Check turns panics into normal errors
func (r Recovery) Check(ctx covault.Context, store covault.KVStore, tx covault.Tx,
	next covault.Checker) (res *covault.CheckResult, err error) {

	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver turns panics into normal errors
func (r Recovery) Deliver(ctx covault.Context, store covault.KVStore, tx covault.Tx,
	next covault.Deliverer) (res *covault.DeliverResult, err error) {

	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
