package app

import (
	"context"
	"testing"

	"github.com/covault/covault/covtest"
	"github.com/covault/covault/covtest/assert"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/store"
)

func TestRouterDispatch(t *testing.T) {
	r := NewRouter()
	h := &covtest.Handler{}
	r.Handle(&covtest.Msg{RoutePath: "test/good"}, h)

	db := store.MemStore()
	ctx := context.Background()

	tx := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/good"}}
	if _, err := r.Check(ctx, db, tx); err != nil {
		t.Fatalf("check: %+v", err)
	}
	if _, err := r.Deliver(ctx, db, tx); err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	assert.Equal(t, 1, h.CheckCallCount())
	assert.Equal(t, 1, h.DeliverCallCount())

	// unknown paths are rejected
	bad := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/missing"}}
	_, err := r.Deliver(ctx, db, bad)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestRouterBrokenTx(t *testing.T) {
	r := NewRouter()
	db := store.MemStore()

	broken := &covtest.Tx{
		Msg: &covtest.Msg{RoutePath: "test/any"},
		Err: errors.ErrInvalidMsg.New("broken"),
	}
	_, err := r.Check(context.Background(), db, broken)
	assert.IsErr(t, errors.ErrInvalidMsg, err)
}

func TestRouterRegistrationPanics(t *testing.T) {
	r := NewRouter()
	h := &covtest.Handler{}

	assert.Panics(t, func() {
		r.Handle(&covtest.Msg{RoutePath: "Bad Path!"}, h)
	})

	r.Handle(&covtest.Msg{RoutePath: "test/dup"}, h)
	assert.Panics(t, func() {
		r.Handle(&covtest.Msg{RoutePath: "test/dup"}, h)
	})
}
