package participants

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MattDevy/socrates-ledger/pkg/socrates"
)

var (
	registeredAt = time.Date(2026, 8, 27, 14, 0, 0, 0, time.UTC)
	movedAt      = registeredAt.Add(time.Hour)
	movedAgainAt = movedAt.Add(time.Hour)
)

func newTestProjector() (*Projector, *memory.Repo) {
	repo := memory.NewRepo()
	repo.SetEntityFactory(func() eh.Entity { return &Participant{} })
	return NewProjector(repo), repo
}

func handle(t *testing.T, p *Projector, conferenceID uuid.UUID, version int, data eh.EventData, eventType eh.EventType) {
	t.Helper()
	event := eh.NewEvent(eventType, data, registeredAt,
		eh.ForAggregate(socrates.ConferenceAggregateType, conferenceID, version))
	require.NoError(t, p.HandleEvent(context.Background(), event))
}

func findParticipant(t *testing.T, repo eh.ReadRepo, conferenceID uuid.UUID, memberID string) *Participant {
	t.Helper()
	entity, err := repo.Find(context.Background(), ParticipantID(conferenceID, memberID))
	require.NoError(t, err)
	participant, ok := entity.(*Participant)
	require.True(t, ok)
	return participant
}

func TestParticipantID(t *testing.T) {
	conference, other := uuid.New(), uuid.New()

	assert.Equal(t, ParticipantID(conference, "member-id-1"), ParticipantID(conference, "member-id-1"))
	assert.NotEqual(t, ParticipantID(conference, "member-id-1"), ParticipantID(conference, "member-id-2"))
	assert.NotEqual(t, ParticipantID(conference, "member-id-1"), ParticipantID(other, "member-id-1"))
}

func TestProjector_Lifecycle(t *testing.T) {
	p, repo := newTestProjector()
	conferenceID := uuid.New()

	handle(t, p, conferenceID, 1, &socrates.ParticipantWasRegistered{
		RoomType:  socrates.SingleBedRoom,
		SessionID: "session-id-1",
		MemberID:  "member-id-1",
		Timestamp: registeredAt,
	}, socrates.ParticipantWasRegisteredEvent)

	participant := findParticipant(t, repo, conferenceID, "member-id-1")
	assert.Equal(t, StatusRegistered, participant.Status)
	assert.Equal(t, conferenceID, participant.ConferenceID)
	assert.Equal(t, "session-id-1", participant.SessionID)
	assert.Equal(t, socrates.SingleBedRoom, participant.RoomType)
	assert.True(t, registeredAt.Equal(participant.RegisteredAt))

	handle(t, p, conferenceID, 2, socrates.RoomTypeWasChanged{
		MemberID:  "member-id-1",
		RoomType:  socrates.KingSuite,
		Timestamp: movedAt,
	}, socrates.RoomTypeWasChangedEvent)
	handle(t, p, conferenceID, 3, &socrates.RoomTypeWasChanged{
		MemberID:  "member-id-1",
		RoomType:  socrates.Junior,
		Timestamp: movedAgainAt,
	}, socrates.RoomTypeWasChangedEvent)

	participant = findParticipant(t, repo, conferenceID, "member-id-1")
	assert.Equal(t, StatusMoved, participant.Status)
	assert.Equal(t, socrates.Junior, participant.RoomType)
	assert.Equal(t, []socrates.RoomType{socrates.SingleBedRoom, socrates.KingSuite, socrates.Junior}, participant.RoomTypes)
	assert.True(t, registeredAt.Equal(participant.RegisteredAt))
	assert.True(t, movedAgainAt.Equal(participant.ChangedAt))
	assert.Equal(t, "session-id-1", participant.SessionID)
}

func TestProjector_ReRegistration(t *testing.T) {
	p, repo := newTestProjector()
	conferenceID := uuid.New()

	handle(t, p, conferenceID, 1, socrates.ParticipantWasRegistered{
		RoomType: socrates.SingleBedRoom, SessionID: "session-id-1", MemberID: "member-id-1",
	}, socrates.ParticipantWasRegisteredEvent)
	handle(t, p, conferenceID, 2, socrates.RoomTypeWasChanged{
		MemberID: "member-id-1", RoomType: socrates.KingSuite,
	}, socrates.RoomTypeWasChangedEvent)
	handle(t, p, conferenceID, 3, socrates.ParticipantWasRegistered{
		RoomType: socrates.BedInDouble, SessionID: "session-id-2", MemberID: "member-id-1",
	}, socrates.ParticipantWasRegisteredEvent)

	participant := findParticipant(t, repo, conferenceID, "member-id-1")
	assert.Equal(t, StatusRegistered, participant.Status)
	assert.Equal(t, "session-id-2", participant.SessionID)
	assert.Equal(t, socrates.BedInDouble, participant.RoomType)
}

func TestProjector_TwoConferences(t *testing.T) {
	p, repo := newTestProjector()
	first, second := uuid.New(), uuid.New()

	handle(t, p, first, 1, socrates.ParticipantWasRegistered{
		RoomType: socrates.SingleBedRoom, SessionID: "session-id-1", MemberID: "member-id-1",
	}, socrates.ParticipantWasRegisteredEvent)
	handle(t, p, second, 1, socrates.ParticipantWasRegistered{
		RoomType: socrates.KingSuite, SessionID: "session-id-2", MemberID: "member-id-1",
	}, socrates.ParticipantWasRegisteredEvent)
	handle(t, p, second, 2, socrates.RoomTypeWasChanged{
		MemberID: "member-id-1", RoomType: socrates.Junior,
	}, socrates.RoomTypeWasChangedEvent)

	participant := findParticipant(t, repo, first, "member-id-1")
	assert.Equal(t, first, participant.ConferenceID)
	assert.Equal(t, StatusRegistered, participant.Status)
	assert.Equal(t, socrates.SingleBedRoom, participant.RoomType)
	assert.Equal(t, []socrates.RoomType{socrates.SingleBedRoom}, participant.RoomTypes)

	participant = findParticipant(t, repo, second, "member-id-1")
	assert.Equal(t, second, participant.ConferenceID)
	assert.Equal(t, StatusMoved, participant.Status)
	assert.Equal(t, []socrates.RoomType{socrates.KingSuite, socrates.Junior}, participant.RoomTypes)
}

func TestProjector_MoveBeforeRegistration(t *testing.T) {
	p, _ := newTestProjector()

	event := eh.NewEvent(socrates.RoomTypeWasChangedEvent,
		&socrates.RoomTypeWasChanged{MemberID: "member-id-1", RoomType: socrates.KingSuite}, movedAt,
		eh.ForAggregate(socrates.ConferenceAggregateType, uuid.New(), 1))

	assert.Error(t, p.HandleEvent(context.Background(), event))
}

func TestProjector_InvalidData(t *testing.T) {
	p, _ := newTestProjector()

	event := eh.NewEvent(socrates.ParticipantWasRegisteredEvent,
		&socrates.ReservationWasIssued{RoomType: socrates.KingSuite, SessionID: "session-id-1"}, registeredAt,
		eh.ForAggregate(socrates.ConferenceAggregateType, uuid.New(), 1))

	assert.Error(t, p.HandleEvent(context.Background(), event))
}
