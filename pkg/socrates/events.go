package socrates

import (
	"time"

	eh "github.com/looplab/eventhorizon"
)

func init() {
	eh.RegisterEventData(RoomQuotaWasSetEvent, func() eh.EventData {
		return &RoomQuotaWasSet{}
	})
	eh.RegisterEventData(ReservationWasIssuedEvent, func() eh.EventData {
		return &ReservationWasIssued{}
	})
	eh.RegisterEventData(ParticipantWasRegisteredEvent, func() eh.EventData {
		return &ParticipantWasRegistered{}
	})
	eh.RegisterEventData(RoomTypeWasChangedEvent, func() eh.EventData {
		return &RoomTypeWasChanged{}
	})
	eh.RegisterEventData(DidNotIssueReservationForAlreadyReservedSessionEvent, func() eh.EventData {
		return &DidNotIssueReservationForAlreadyReservedSession{}
	})
	eh.RegisterEventData(DidNotIssueReservationForFullResourceEvent, func() eh.EventData {
		return &DidNotIssueReservationForFullResource{}
	})
	eh.RegisterEventData(DidNotChangeRoomTypeForNonParticipantEvent, func() eh.EventData {
		return &DidNotChangeRoomTypeForNonParticipant{}
	})
}

// RoomType identifies a kind of room offered at the conference.
type RoomType string

const (
	SingleBedRoom RoomType = "singleBedRoom"
	BedInDouble   RoomType = "bedInDouble"
	KingSuite     RoomType = "kingSuite"
	Junior        RoomType = "junior"
)

// The event types double as the kind names on the wire.
const (
	RoomQuotaWasSetEvent          eh.EventType = "ROOM-QUOTA-WAS-SET"
	ReservationWasIssuedEvent     eh.EventType = "RESERVATION-WAS-ISSUED"
	ParticipantWasRegisteredEvent eh.EventType = "PARTICIPANT-WAS-REGISTERED"
	RoomTypeWasChangedEvent       eh.EventType = "ROOM-TYPE-WAS-CHANGED"

	DidNotIssueReservationForAlreadyReservedSessionEvent eh.EventType = "DID_NOT_ISSUE_RESERVATION_FOR_ALREADY_RESERVED_SESSION"
	DidNotIssueReservationForFullResourceEvent           eh.EventType = "DID_NOT_ISSUE_RESERVATION_FOR_FULL_RESOURCE"
	DidNotChangeRoomTypeForNonParticipantEvent           eh.EventType = "DID-NOT-CHANGE-ROOM-TYPE-FOR-NON-PARTICIPANT"
)

// Event is an entry of one of the conference logs. The concrete types below
// are the only implementations.
type Event interface {
	EventType() eh.EventType
}

// RoomQuotaWasSet is the only event of the configuration log.
type RoomQuotaWasSet struct {
	RoomType  RoomType  `json:"roomType"`
	Quota     int       `json:"quota"`
	Timestamp time.Time `json:"timestamp"`
}

type ReservationWasIssued struct {
	RoomType  RoomType  `json:"roomType"`
	SessionID string    `json:"sessionID"`
	Timestamp time.Time `json:"timestamp"`
}

type ParticipantWasRegistered struct {
	RoomType  RoomType  `json:"roomType"`
	SessionID string    `json:"sessionID"`
	MemberID  string    `json:"memberId"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomTypeWasChanged struct {
	MemberID  string    `json:"memberId"`
	RoomType  RoomType  `json:"roomType"`
	Timestamp time.Time `json:"timestamp"`
}

// Negative events record rejected commands. They never count as claims.

type DidNotIssueReservationForAlreadyReservedSession struct {
	RoomType  RoomType `json:"roomType"`
	SessionID string   `json:"sessionID"`
}

type DidNotIssueReservationForFullResource struct {
	RoomType  RoomType `json:"roomType"`
	SessionID string   `json:"sessionID"`
}

type DidNotChangeRoomTypeForNonParticipant struct {
	MemberID string   `json:"memberId"`
	RoomType RoomType `json:"roomType"`
}

func (RoomQuotaWasSet) EventType() eh.EventType          { return RoomQuotaWasSetEvent }
func (ReservationWasIssued) EventType() eh.EventType     { return ReservationWasIssuedEvent }
func (ParticipantWasRegistered) EventType() eh.EventType { return ParticipantWasRegisteredEvent }
func (RoomTypeWasChanged) EventType() eh.EventType       { return RoomTypeWasChangedEvent }
func (DidNotIssueReservationForAlreadyReservedSession) EventType() eh.EventType {
	return DidNotIssueReservationForAlreadyReservedSessionEvent
}
func (DidNotIssueReservationForFullResource) EventType() eh.EventType {
	return DidNotIssueReservationForFullResourceEvent
}
func (DidNotChangeRoomTypeForNonParticipant) EventType() eh.EventType {
	return DidNotChangeRoomTypeForNonParticipantEvent
}

// normalize dereferences event pointers, which is what the eventhorizon
// codecs hand back, so that the logs only ever hold values.
func normalize(e Event) Event {
	switch e := e.(type) {
	case *RoomQuotaWasSet:
		return *e
	case *ReservationWasIssued:
		return *e
	case *ParticipantWasRegistered:
		return *e
	case *RoomTypeWasChanged:
		return *e
	case *DidNotIssueReservationForAlreadyReservedSession:
		return *e
	case *DidNotIssueReservationForFullResource:
		return *e
	case *DidNotChangeRoomTypeForNonParticipant:
		return *e
	}
	return e
}

func roomTypeOf(e Event) RoomType {
	switch e := e.(type) {
	case RoomQuotaWasSet:
		return e.RoomType
	case ReservationWasIssued:
		return e.RoomType
	case ParticipantWasRegistered:
		return e.RoomType
	case RoomTypeWasChanged:
		return e.RoomType
	case DidNotIssueReservationForAlreadyReservedSession:
		return e.RoomType
	case DidNotIssueReservationForFullResource:
		return e.RoomType
	case DidNotChangeRoomTypeForNonParticipant:
		return e.RoomType
	}
	return ""
}

// timestampOf returns the zero time for negative events.
func timestampOf(e Event) time.Time {
	switch e := e.(type) {
	case RoomQuotaWasSet:
		return e.Timestamp
	case ReservationWasIssued:
		return e.Timestamp
	case ParticipantWasRegistered:
		return e.Timestamp
	case RoomTypeWasChanged:
		return e.Timestamp
	}
	return time.Time{}
}
