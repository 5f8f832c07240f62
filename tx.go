package covault

import (
	"reflect"

	"github.com/covault/covault/errors"
)

// Marshaller is anything that can be represented in binary.
//
// Marshal may validate the data before serializing it and unless you
// previously validated the struct, errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Persistent supports Marshal and Unmarshal.
//
// This is separated from Marshaller, as Unmarshal almost always requires a
// pointer, and functions that only need to marshal bytes can use the
// Marshaller interface to access non-pointers.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Msg is a request for the state machine to take an action (make a state
// transition). It is just the request, and must be validated by the
// Handlers. All authentication information is in the wrapping Tx.
type Msg interface {
	Persistent

	// Validate performs a sanity check on the message content that does
	// not require access to any state.
	Validate() error

	// Path returns the message path used by the Router to locate the
	// proper Handler.
	Path() string
}

// Tx represents the data sent from the user to the state machine. It
// includes the actual message, along with information needed to
// authenticate the sender.
type Tx interface {
	Persistent

	// GetMsg returns the action we wish to communicate.
	GetMsg() (Msg, error)
}

// GetPath returns the path of the message, or (missing) if no message.
func GetPath(tx Tx) string {
	msg, err := tx.GetMsg()
	if err == nil && msg != nil {
		return msg.Path()
	}
	return "(missing)"
}

// LoadMsg extracts the message from the transaction, validates it and
// loads it into the destination. The message concrete type must match the
// destination.
func LoadMsg(tx Tx, destination Msg) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}

	if !reflect.TypeOf(msg).AssignableTo(reflect.TypeOf(destination)) {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be loaded as %T", msg, destination)
	}
	reflect.ValueOf(destination).Elem().Set(reflect.ValueOf(msg).Elem())
	return nil
}
