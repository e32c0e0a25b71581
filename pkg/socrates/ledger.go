package socrates

import (
	"time"

	"github.com/cockroachdb/errors"
)

// ReservationExpiry is how long an issued reservation holds its room.
const ReservationExpiry = 30 * time.Minute

// Ledger is the write model of one conference. It keeps the configuration
// log (room quotas) and the resource log (reservations, registrations, room
// type changes and the rejections of those commands). All state is derived
// from the two logs on every read.
//
// A Ledger is not safe for concurrent use. Callers serialize commands per
// conference.
type Ledger struct {
	quotaEvents    []Event
	resourceEvents []Event
	changes        []Event

	now func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source used for expiry checks and new timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithHistory loads previously stored events. They are not reported by
// Changes.
func WithHistory(quotaEvents, resourceEvents []Event) Option {
	return func(l *Ledger) {
		for _, e := range quotaEvents {
			l.quotaEvents = append(l.quotaEvents, normalize(e))
		}
		for _, e := range resourceEvents {
			l.resourceEvents = append(l.resourceEvents, normalize(e))
		}
	}
}

// New returns a Ledger using the wall clock unless WithClock is given.
func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply appends a stored event to the log it belongs to. It is used to
// replay a single mixed stream.
func (l *Ledger) Apply(e Event) error {
	switch e := normalize(e).(type) {
	case RoomQuotaWasSet:
		l.quotaEvents = append(l.quotaEvents, e)
	case ReservationWasIssued,
		ParticipantWasRegistered,
		RoomTypeWasChanged,
		DidNotIssueReservationForAlreadyReservedSession,
		DidNotIssueReservationForFullResource,
		DidNotChangeRoomTypeForNonParticipant:
		l.resourceEvents = append(l.resourceEvents, e)
	default:
		return errors.Wrapf(ErrUnknownEvent, "%T", e)
	}
	return nil
}

// QuotaEvents returns a copy of the configuration log.
func (l *Ledger) QuotaEvents() []Event {
	return append([]Event{}, l.quotaEvents...)
}

// ResourceEvents returns a copy of the resource log.
func (l *Ledger) ResourceEvents() []Event {
	return append([]Event{}, l.resourceEvents...)
}

// Changes returns the events appended by commands, in order, since the
// ledger was created or ClearChanges was last called.
func (l *Ledger) Changes() []Event {
	return append([]Event{}, l.changes...)
}

// ClearChanges forgets the pending changes once they have been stored.
func (l *Ledger) ClearChanges() {
	l.changes = nil
}

// QuotaFor returns the quota of the last matching RoomQuotaWasSet. known is
// false when no quota was ever set for the room type.
func (l *Ledger) QuotaFor(roomType RoomType) (quota int, known bool) {
	for _, e := range l.quotaEvents {
		if set, ok := e.(RoomQuotaWasSet); ok && set.RoomType == roomType {
			quota, known = set.Quota, true
		}
	}
	return quota, known
}

// ReservationsAndParticipantsFor returns the claims currently holding a room
// of the given type, in log order.
func (l *Ledger) ReservationsAndParticipantsFor(roomType RoomType) []Event {
	result := []Event{}
	for _, e := range l.currentClaims() {
		if roomTypeOf(e) == roomType {
			result = append(result, e)
		}
	}
	return result
}

// currentClaims walks the resource log backwards so that every event is
// judged against the events that came after it:
//   - a reservation counts while it is younger than ReservationExpiry and
//     its session has not registered afterwards,
//   - a registration counts until its member changes room type,
//   - only the last room type change of a member counts.
func (l *Ledger) currentClaims() []Event {
	now := l.now()
	registered := make(map[string]bool)
	moved := make(map[string]bool)

	var claims []Event
	for i := len(l.resourceEvents) - 1; i >= 0; i-- {
		switch e := l.resourceEvents[i].(type) {
		case RoomTypeWasChanged:
			if !moved[e.MemberID] {
				claims = append(claims, e)
			}
			moved[e.MemberID] = true
		case ParticipantWasRegistered:
			if !moved[e.MemberID] {
				claims = append(claims, e)
			}
			registered[e.SessionID] = true
		case ReservationWasIssued:
			if !registered[e.SessionID] && now.Sub(e.Timestamp) < ReservationExpiry {
				claims = append(claims, e)
			}
		}
	}

	for i, j := 0, len(claims)-1; i < j; i, j = i+1, j-1 {
		claims[i], claims[j] = claims[j], claims[i]
	}
	return claims
}

// sessionHasClaim reports whether the session holds a reservation or a
// participation on any room type. A room type change counts for the session
// its member registered with.
func (l *Ledger) sessionHasClaim(sessionID string) bool {
	sessionOf := make(map[string]string)
	for _, e := range l.resourceEvents {
		if reg, ok := e.(ParticipantWasRegistered); ok {
			sessionOf[reg.MemberID] = reg.SessionID
		}
	}

	for _, e := range l.currentClaims() {
		switch e := e.(type) {
		case ReservationWasIssued:
			if e.SessionID == sessionID {
				return true
			}
		case ParticipantWasRegistered:
			if e.SessionID == sessionID {
				return true
			}
		case RoomTypeWasChanged:
			if sessionOf[e.MemberID] == sessionID {
				return true
			}
		}
	}
	return false
}

func (l *Ledger) memberHasClaim(memberID string) bool {
	for _, e := range l.currentClaims() {
		switch e := e.(type) {
		case ParticipantWasRegistered:
			if e.MemberID == memberID {
				return true
			}
		case RoomTypeWasChanged:
			if e.MemberID == memberID {
				return true
			}
		}
	}
	return false
}

// UpdateRoomQuota always succeeds.
func (l *Ledger) UpdateRoomQuota(roomType RoomType, quota int) Event {
	return l.record(l.decideRoomQuota(roomType, quota))
}

// IssueReservation reserves a room for the session, or records why it
// could not. Exactly one event is appended.
func (l *Ledger) IssueReservation(roomType RoomType, sessionID string) Event {
	return l.record(l.decideReservation(roomType, sessionID))
}

// RegisterParticipant books a room without checking quota or session: the
// quota was enforced when the session reserved.
func (l *Ledger) RegisterParticipant(roomType RoomType, sessionID, memberID string) Event {
	return l.record(l.decideRegistration(roomType, sessionID, memberID))
}

// MoveParticipantToNewRoomType moves a participant regardless of the quota of
// the new room type.
func (l *Ledger) MoveParticipantToNewRoomType(memberID string, roomType RoomType) Event {
	return l.record(l.decideRoomTypeChange(memberID, roomType))
}

func (l *Ledger) decideRoomQuota(roomType RoomType, quota int) Event {
	return RoomQuotaWasSet{RoomType: roomType, Quota: quota, Timestamp: l.now()}
}

func (l *Ledger) decideReservation(roomType RoomType, sessionID string) Event {
	if l.sessionHasClaim(sessionID) {
		return DidNotIssueReservationForAlreadyReservedSession{RoomType: roomType, SessionID: sessionID}
	}
	// An unknown quota is 0.
	quota, _ := l.QuotaFor(roomType)
	if len(l.ReservationsAndParticipantsFor(roomType)) >= quota {
		return DidNotIssueReservationForFullResource{RoomType: roomType, SessionID: sessionID}
	}
	return ReservationWasIssued{RoomType: roomType, SessionID: sessionID, Timestamp: l.now()}
}

func (l *Ledger) decideRegistration(roomType RoomType, sessionID, memberID string) Event {
	return ParticipantWasRegistered{
		RoomType:  roomType,
		SessionID: sessionID,
		MemberID:  memberID,
		Timestamp: l.now(),
	}
}

func (l *Ledger) decideRoomTypeChange(memberID string, roomType RoomType) Event {
	if !l.memberHasClaim(memberID) {
		return DidNotChangeRoomTypeForNonParticipant{MemberID: memberID, RoomType: roomType}
	}
	return RoomTypeWasChanged{MemberID: memberID, RoomType: roomType, Timestamp: l.now()}
}

func (l *Ledger) record(e Event) Event {
	if set, ok := e.(RoomQuotaWasSet); ok {
		l.quotaEvents = append(l.quotaEvents, set)
	} else {
		l.resourceEvents = append(l.resourceEvents, e)
	}
	l.changes = append(l.changes, e)
	return e
}

// Availability is the occupancy of one room type at a point in time.
type Availability struct {
	RoomType   RoomType
	Quota      int
	QuotaKnown bool
	Occupied   int
	// Free is never negative, even when room type changes overfilled the room.
	Free int
}

func (l *Ledger) Availability(roomType RoomType) Availability {
	quota, known := l.QuotaFor(roomType)
	occupied := len(l.ReservationsAndParticipantsFor(roomType))
	free := quota - occupied
	if free < 0 {
		free = 0
	}
	return Availability{
		RoomType:   roomType,
		Quota:      quota,
		QuotaKnown: known,
		Occupied:   occupied,
		Free:       free,
	}
}

// RoomTypes lists the room types mentioned by either log, in order of first
// appearance, configuration log first.
func (l *Ledger) RoomTypes() []RoomType {
	seen := make(map[RoomType]bool)
	var roomTypes []RoomType
	for _, log := range [][]Event{l.quotaEvents, l.resourceEvents} {
		for _, e := range log {
			roomType := roomTypeOf(e)
			if roomType == "" || seen[roomType] {
				continue
			}
			seen[roomType] = true
			roomTypes = append(roomTypes, roomType)
		}
	}
	return roomTypes
}
