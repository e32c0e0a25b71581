package socrates

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/aggregatestore/events"
)

func init() {
	eh.RegisterAggregate(func(id uuid.UUID) eh.Aggregate {
		return NewConferenceAggregate(id)
	})
}

const ConferenceAggregateType eh.AggregateType = "Conference"

var _ = eh.Aggregate(&ConferenceAggregate{})

// ConferenceAggregate is the event sourced write-model of one conference.
// Decisions are taken by its Ledger, which only learns about events once
// they are applied after being stored.
type ConferenceAggregate struct {
	*events.AggregateBase

	ledger *Ledger
}

// NewConferenceAggregate returns an empty conference. Options are passed on
// to the ledger.
func NewConferenceAggregate(id uuid.UUID, opts ...Option) *ConferenceAggregate {
	return &ConferenceAggregate{
		AggregateBase: events.NewAggregateBase(ConferenceAggregateType, id),
		ledger:        New(opts...),
	}
}

// Ledger exposes the state built from the applied events.
func (a *ConferenceAggregate) Ledger() *Ledger {
	return a.ledger
}

// HandleCommand appends exactly one event per command. Rejections are
// events too, so the only errors are for commands this aggregate does not
// know.
func (a *ConferenceAggregate) HandleCommand(ctx context.Context, cmd eh.Command) error {
	var event Event
	switch cmd := cmd.(type) {
	case *UpdateRoomQuota:
		event = a.ledger.decideRoomQuota(cmd.RoomType, cmd.Quota)
	case *IssueReservation:
		event = a.ledger.decideReservation(cmd.RoomType, cmd.SessionID)
	case *RegisterParticipant:
		event = a.ledger.decideRegistration(cmd.RoomType, cmd.SessionID, cmd.MemberID)
	case *MoveParticipantToNewRoomType:
		event = a.ledger.decideRoomTypeChange(cmd.MemberID, cmd.RoomType)
	default:
		return errors.Wrapf(ErrUnknownCommand, "%s", cmd.CommandType())
	}

	timestamp := timestampOf(event)
	if timestamp.IsZero() {
		timestamp = a.ledger.now()
	}
	a.AppendEvent(event.EventType(), event, timestamp)
	return nil
}

// ApplyEvent folds a stored event into the ledger.
func (a *ConferenceAggregate) ApplyEvent(ctx context.Context, event eh.Event) error {
	data, ok := event.Data().(Event)
	if !ok {
		return errors.Wrapf(ErrInvalidEventData, "%s: %T", event.EventType(), event.Data())
	}
	return a.ledger.Apply(data)
}
