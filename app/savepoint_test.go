package app

import (
	"context"
	"testing"

	"github.com/covault/covault"
	"github.com/covault/covault/covtest"
	"github.com/covault/covault/covtest/assert"
	"github.com/covault/covault/errors"
	"github.com/covault/covault/store"
)

// writingHandler writes a key and then returns the configured error
type writingHandler struct {
	key, value []byte
	err        error
}

var _ covault.Handler = writingHandler{}

func (h writingHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	db.Set(h.key, h.value)
	return &covault.CheckResult{}, h.err
}

func (h writingHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	db.Set(h.key, h.value)
	return &covault.DeliverResult{}, h.err
}

func TestSavepointCommitsOnSuccess(t *testing.T) {
	h := writingHandler{key: []byte("k"), value: []byte("v")}
	stack := ChainDecorators(NewSavepoint().OnDeliver()).WithHandler(h)

	db := store.MemStore()
	tx := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/any"}}
	if _, err := stack.Deliver(context.Background(), db, tx); err != nil {
		t.Fatalf("deliver: %+v", err)
	}
	if !db.Has([]byte("k")) {
		t.Fatal("successful write was not committed")
	}
}

func TestSavepointRollsBackOnError(t *testing.T) {
	h := writingHandler{
		key:   []byte("k"),
		value: []byte("v"),
		err:   errors.ErrInvalidState.New("boom"),
	}
	stack := ChainDecorators(NewSavepoint().OnDeliver()).WithHandler(h)

	db := store.MemStore()
	tx := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/any"}}
	_, err := stack.Deliver(context.Background(), db, tx)
	assert.IsErr(t, errors.ErrInvalidState, err)
	if db.Has([]byte("k")) {
		t.Fatal("failed write leaked into the store")
	}
}

func TestSavepointInactiveByDefault(t *testing.T) {
	h := writingHandler{
		key:   []byte("k"),
		value: []byte("v"),
		err:   errors.ErrInvalidState.New("boom"),
	}
	// savepoint configured for check only, deliver writes directly
	stack := ChainDecorators(NewSavepoint().OnCheck()).WithHandler(h)

	db := store.MemStore()
	tx := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/any"}}
	if _, err := stack.Deliver(context.Background(), db, tx); err == nil {
		t.Fatal("expected handler error")
	}
	if !db.Has([]byte("k")) {
		t.Fatal("write without savepoint should persist")
	}
}

func TestRecoveryDecorator(t *testing.T) {
	h := panicHandler{}
	stack := ChainDecorators(NewRecovery()).WithHandler(h)

	db := store.MemStore()
	tx := &covtest.Tx{Msg: &covtest.Msg{RoutePath: "test/any"}}
	_, err := stack.Deliver(context.Background(), db, tx)
	assert.IsErr(t, errors.ErrPanic, err)
}

type panicHandler struct{}

var _ covault.Handler = panicHandler{}

func (panicHandler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	panic("deliver")
}
