package socrates

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	eh "github.com/looplab/eventhorizon"
)

// Record is the flat shape in which events are exchanged with other
// systems. Fields that an event kind does not have are omitted, and so is
// the timestamp of negative events.
type Record struct {
	Kind      eh.EventType `json:"kind"`
	RoomType  RoomType     `json:"roomType,omitempty"`
	SessionID string       `json:"sessionID,omitempty"`
	MemberID  string       `json:"memberId,omitempty"`
	Quota     *int         `json:"quota,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
}

// RecordOf flattens an event.
func RecordOf(e Event) (Record, error) {
	switch e := normalize(e).(type) {
	case RoomQuotaWasSet:
		quota := e.Quota
		return Record{Kind: e.EventType(), RoomType: e.RoomType, Quota: &quota, Timestamp: stamp(e.Timestamp)}, nil
	case ReservationWasIssued:
		return Record{Kind: e.EventType(), RoomType: e.RoomType, SessionID: e.SessionID, Timestamp: stamp(e.Timestamp)}, nil
	case ParticipantWasRegistered:
		return Record{
			Kind:      e.EventType(),
			RoomType:  e.RoomType,
			SessionID: e.SessionID,
			MemberID:  e.MemberID,
			Timestamp: stamp(e.Timestamp),
		}, nil
	case RoomTypeWasChanged:
		return Record{Kind: e.EventType(), RoomType: e.RoomType, MemberID: e.MemberID, Timestamp: stamp(e.Timestamp)}, nil
	case DidNotIssueReservationForAlreadyReservedSession:
		return Record{Kind: e.EventType(), RoomType: e.RoomType, SessionID: e.SessionID}, nil
	case DidNotIssueReservationForFullResource:
		return Record{Kind: e.EventType(), RoomType: e.RoomType, SessionID: e.SessionID}, nil
	case DidNotChangeRoomTypeForNonParticipant:
		return Record{Kind: e.EventType(), RoomType: e.RoomType, MemberID: e.MemberID}, nil
	}
	return Record{}, errors.Wrapf(ErrUnknownEvent, "%T", e)
}

// Event restores the event described by the record.
func (r Record) Event() (Event, error) {
	switch r.Kind {
	case RoomQuotaWasSetEvent:
		if r.Quota == nil {
			return nil, errors.Wrapf(ErrInvalidRecord, "%s without quota", r.Kind)
		}
		return RoomQuotaWasSet{RoomType: r.RoomType, Quota: *r.Quota, Timestamp: unstamp(r.Timestamp)}, nil
	case ReservationWasIssuedEvent:
		return ReservationWasIssued{RoomType: r.RoomType, SessionID: r.SessionID, Timestamp: unstamp(r.Timestamp)}, nil
	case ParticipantWasRegisteredEvent:
		return ParticipantWasRegistered{
			RoomType:  r.RoomType,
			SessionID: r.SessionID,
			MemberID:  r.MemberID,
			Timestamp: unstamp(r.Timestamp),
		}, nil
	case RoomTypeWasChangedEvent:
		return RoomTypeWasChanged{MemberID: r.MemberID, RoomType: r.RoomType, Timestamp: unstamp(r.Timestamp)}, nil
	case DidNotIssueReservationForAlreadyReservedSessionEvent:
		return DidNotIssueReservationForAlreadyReservedSession{RoomType: r.RoomType, SessionID: r.SessionID}, nil
	case DidNotIssueReservationForFullResourceEvent:
		return DidNotIssueReservationForFullResource{RoomType: r.RoomType, SessionID: r.SessionID}, nil
	case DidNotChangeRoomTypeForNonParticipantEvent:
		return DidNotChangeRoomTypeForNonParticipant{MemberID: r.MemberID, RoomType: r.RoomType}, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", r.Kind)
}

// RecordsOf flattens a log.
func RecordsOf(events []Event) ([]Record, error) {
	records := make([]Record, 0, len(events))
	for i, e := range events {
		r, err := RecordOf(e)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		records = append(records, r)
	}
	return records, nil
}

// EventsOf restores a log.
func EventsOf(records []Record) ([]Event, error) {
	events := make([]Event, 0, len(records))
	for i, r := range records {
		e, err := r.Event()
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		events = append(events, e)
	}
	return events, nil
}

func MarshalEvent(e Event) ([]byte, error) {
	r, err := RecordOf(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func UnmarshalEvent(data []byte) (Event, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "could not decode event")
	}
	return r.Event()
}

func stamp(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func unstamp(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
