package covtest

import (
	"sync"

	"github.com/covault/covault"
)

// Handler implements covault.Handler interface, counting all calls and
// returning configured results.
type Handler struct {
	mu sync.Mutex

	checkCall   int
	deliverCall int

	// CheckResult is returned by the Check method.
	CheckResult covault.CheckResult
	// CheckErr if set is returned by the Check method.
	CheckErr error

	// DeliverResult is returned by the Deliver method.
	DeliverResult covault.DeliverResult
	// DeliverErr if set is returned by the Deliver method.
	DeliverErr error
}

var _ covault.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.CheckResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.checkCall++
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx covault.Context, db covault.KVStore, tx covault.Tx) (*covault.DeliverResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deliverCall++
	res := h.DeliverResult
	return &res, h.DeliverErr
}

// CheckCallCount returns the number of times Check was called.
func (h *Handler) CheckCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkCall
}

// DeliverCallCount returns the number of times Deliver was called.
func (h *Handler) DeliverCallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deliverCall
}

// CallCount returns the number of calls of any kind.
func (h *Handler) CallCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkCall + h.deliverCall
}
