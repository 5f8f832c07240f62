package orm

import (
	"github.com/covault/covault"
	"github.com/covault/covault/codec"
	"github.com/covault/covault/errors"
)

// Counter is a simple model to demonstrate and test bucket
// functionality.
type Counter struct {
	Count int64
}

var _ CloneableData = (*Counter)(nil)

// Validate rejects negative counters
func (c *Counter) Validate() error {
	if c.Count < 0 {
		return errors.Wrap(errors.ErrInvalidState, "count must be non-negative")
	}
	return nil
}

// Copy produces another counter with the same value
func (c *Counter) Copy() CloneableData {
	return &Counter{Count: c.Count}
}

func (c *Counter) Marshal() ([]byte, error) {
	return codec.AppendInt64(nil, 1, c.Count), nil
}

func (c *Counter) Unmarshal(data []byte) error {
	*c = Counter{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			c.Count = d.Int64()
		}
	}
	return d.Err()
}

// NewCounter wraps a count value into an object with the given key
func NewCounter(key []byte, count int64) Object {
	return NewSimpleObj(key, &Counter{Count: count})
}

// CounterBucket is a type-safe wrapper around a generic bucket
type CounterBucket struct {
	Bucket
}

// NewCounterBucket creates a bucket for counters
func NewCounterBucket(name string) CounterBucket {
	obj := NewSimpleObj(nil, new(Counter))
	return CounterBucket{
		Bucket: NewBucket(name, obj),
	}
}

// GetCount loads the current count, or 0 when not present
func (b CounterBucket) GetCount(db covault.ReadOnlyKVStore, key []byte) (int64, error) {
	obj, err := b.Get(db, key)
	if err != nil {
		return 0, err
	}
	if obj == nil {
		return 0, nil
	}
	cntr, ok := obj.Value().(*Counter)
	if !ok {
		return 0, errors.Wrap(errors.ErrInvalidType, "not a counter")
	}
	return cntr.Count, nil
}
