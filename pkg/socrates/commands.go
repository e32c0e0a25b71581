package socrates

import (
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
)

func init() {
	eh.RegisterCommand(func() eh.Command { return &UpdateRoomQuota{} })
	eh.RegisterCommand(func() eh.Command { return &IssueReservation{} })
	eh.RegisterCommand(func() eh.Command { return &RegisterParticipant{} })
	eh.RegisterCommand(func() eh.Command { return &MoveParticipantToNewRoomType{} })
}

const (
	UpdateRoomQuotaCommand              eh.CommandType = "UpdateRoomQuota"
	IssueReservationCommand             eh.CommandType = "IssueReservation"
	RegisterParticipantCommand          eh.CommandType = "RegisterParticipant"
	MoveParticipantToNewRoomTypeCommand eh.CommandType = "MoveParticipantToNewRoomType"
)

// UpdateRoomQuota sets the number of rooms of a type. A quota of 0 is valid.
type UpdateRoomQuota struct {
	ID       uuid.UUID
	RoomType RoomType
	Quota    int `eh:"optional"`
}

func (c UpdateRoomQuota) AggregateID() uuid.UUID          { return c.ID }
func (c UpdateRoomQuota) AggregateType() eh.AggregateType { return ConferenceAggregateType }
func (c UpdateRoomQuota) CommandType() eh.CommandType     { return UpdateRoomQuotaCommand }

// IssueReservation holds a room for a session for ReservationExpiry.
// No field can be empty.
type IssueReservation struct {
	ID        uuid.UUID
	RoomType  RoomType
	SessionID string
}

func (c IssueReservation) AggregateID() uuid.UUID          { return c.ID }
func (c IssueReservation) AggregateType() eh.AggregateType { return ConferenceAggregateType }
func (c IssueReservation) CommandType() eh.CommandType     { return IssueReservationCommand }

// RegisterParticipant turns a session into a participation of a member.
// No field can be empty.
type RegisterParticipant struct {
	ID        uuid.UUID
	RoomType  RoomType
	SessionID string
	MemberID  string
}

func (c RegisterParticipant) AggregateID() uuid.UUID          { return c.ID }
func (c RegisterParticipant) AggregateType() eh.AggregateType { return ConferenceAggregateType }
func (c RegisterParticipant) CommandType() eh.CommandType     { return RegisterParticipantCommand }

// MoveParticipantToNewRoomType is the administrative reassignment of a
// participant. No field can be empty.
type MoveParticipantToNewRoomType struct {
	ID       uuid.UUID
	MemberID string
	RoomType RoomType
}

func (c MoveParticipantToNewRoomType) AggregateID() uuid.UUID { return c.ID }
func (c MoveParticipantToNewRoomType) AggregateType() eh.AggregateType {
	return ConferenceAggregateType
}
func (c MoveParticipantToNewRoomType) CommandType() eh.CommandType {
	return MoveParticipantToNewRoomTypeCommand
}
