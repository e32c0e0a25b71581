package socrates

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/eventhandler/projector"
)

// ConferenceView is the read-model. It keeps both logs as records because
// which claims hold a room depends on the moment of the query.
type ConferenceView struct {
	ID        uuid.UUID
	Version   int
	Quotas    []Record
	Resources []Record
}

func (v *ConferenceView) EntityID() uuid.UUID {
	return v.ID
}

func (v *ConferenceView) AggregateVersion() int {
	return v.Version
}

// Ledger rebuilds a ledger whose clock is stopped at now. Commands on it
// only change the returned copy.
func (v *ConferenceView) Ledger(now time.Time) (*Ledger, error) {
	quotas, err := EventsOf(v.Quotas)
	if err != nil {
		return nil, err
	}
	resources, err := EventsOf(v.Resources)
	if err != nil {
		return nil, err
	}
	return New(
		WithHistory(quotas, resources),
		WithClock(func() time.Time { return now }),
	), nil
}

// Availability returns the occupancy of every room type known at now.
func (v *ConferenceView) Availability(now time.Time) ([]Availability, error) {
	l, err := v.Ledger(now)
	if err != nil {
		return nil, err
	}
	var result []Availability
	for _, roomType := range l.RoomTypes() {
		result = append(result, l.Availability(roomType))
	}
	return result, nil
}

// ConferenceProjector is the projector for the read-model
type ConferenceProjector struct{}

func NewConferenceProjector() *ConferenceProjector {
	return &ConferenceProjector{}
}

func (p *ConferenceProjector) ProjectorType() projector.Type {
	return projector.Type(ConferenceAggregateType.String())
}

// Project appends each event to the matching log of the view.
func (p *ConferenceProjector) Project(ctx context.Context, event eh.Event, entity eh.Entity) (eh.Entity, error) {
	v, ok := entity.(*ConferenceView)
	if !ok {
		return nil, errors.New("model is of incorrect type")
	}
	data, ok := event.Data().(Event)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidEventData, "projector: %T", event.Data())
	}
	record, err := RecordOf(data)
	if err != nil {
		return nil, errors.Wrap(err, "projector")
	}

	v.ID = event.AggregateID()
	if record.Kind == RoomQuotaWasSetEvent {
		v.Quotas = append(v.Quotas, record)
	} else {
		v.Resources = append(v.Resources, record)
	}
	v.Version++
	return v, nil
}
