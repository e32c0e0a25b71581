package socrates

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownEvent is returned when a value that is not one of the ledger
	// events is applied.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidEventData is returned when an eventhorizon event carries data
	// that is not a ledger event.
	ErrInvalidEventData = errors.New("invalid event data")
	// ErrUnknownCommand is returned by the aggregate for foreign commands.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUnknownKind is returned when decoding a record of an unknown kind.
	ErrUnknownKind = errors.New("unknown event kind")
	// ErrInvalidRecord is returned when a record lacks a field its kind needs.
	ErrInvalidRecord = errors.New("invalid event record")
)
