package covault

import (
	"github.com/covault/covault/codec"
	"github.com/covault/covault/errors"
)

// Metadata is the schema version header attached to every persisted model
// and message.
type Metadata struct {
	Schema uint32
}

var _ Persistent = (*Metadata)(nil)

// Validate ensures the metadata is set and sane.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.Wrap(errors.ErrEmpty, "metadata missing")
	}
	if m.Schema < 1 {
		return errors.Wrap(errors.ErrInvalidInput, "schema version must be greater than zero")
	}
	return nil
}

// Copy returns a copy of this object. This method is helpful when
// implementing orm.CloneableData interface to make a copy of the header.
func (m *Metadata) Copy() *Metadata {
	if m == nil {
		return nil
	}
	cpy := *m
	return &cpy
}

func (m *Metadata) Marshal() ([]byte, error) {
	return codec.AppendVarint(nil, 1, uint64(m.Schema)), nil
}

func (m *Metadata) Unmarshal(data []byte) error {
	*m = Metadata{}
	d := codec.NewDecoder(data)
	for d.Next() {
		switch d.Field() {
		case 1:
			m.Schema = uint32(d.Varint())
		}
	}
	return d.Err()
}
