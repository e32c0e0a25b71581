package socrates

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/aggregatestore/events"
	"github.com/looplab/eventhorizon/commandhandler/aggregate"
	"github.com/looplab/eventhorizon/commandhandler/bus"
	"github.com/looplab/eventhorizon/eventstore/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name string
		cmd  eh.Command
	}{
		{name: "quota", cmd: &UpdateRoomQuota{ID: id, RoomType: KingSuite, Quota: 0}},
		{name: "reservation", cmd: &IssueReservation{ID: id, RoomType: SingleBedRoom, SessionID: sessionID1}},
		{name: "registration", cmd: &RegisterParticipant{ID: id, RoomType: SingleBedRoom, SessionID: sessionID1, MemberID: memberID1}},
		{name: "room type change", cmd: &MoveParticipantToNewRoomType{ID: id, MemberID: memberID1, RoomType: Junior}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := EncodeCommand(tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, string(tt.cmd.CommandType()), msg.Attributes[CommandTypeAttributeKey])
			assert.NotEmpty(t, msg.ID)

			got, err := DecodeCommand(msg)
			require.NoError(t, err)
			assert.Equal(t, tt.cmd, got)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	t.Run("missing command type", func(t *testing.T) {
		_, err := DecodeCommand(&pubsub.Message{Data: []byte(`{}`)})
		assert.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("unregistered command type", func(t *testing.T) {
		_, err := DecodeCommand(&pubsub.Message{
			Data:       []byte(`{}`),
			Attributes: map[string]string{CommandTypeAttributeKey: "CleanRoom"},
		})
		assert.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("bad payload", func(t *testing.T) {
		_, err := DecodeCommand(&pubsub.Message{
			Data:       []byte(`{"Quota":"many"}`),
			Attributes: map[string]string{CommandTypeAttributeKey: string(UpdateRoomQuotaCommand)},
		})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnknownCommand)
	})
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no error", err: nil, want: false},
		{name: "unknown command", err: errors.Wrap(ErrUnknownCommand, "CleanRoom"), want: true},
		{name: "invalid event data", err: errors.Wrapf(ErrInvalidEventData, "%T", 42), want: true},
		{name: "missing field", err: &eh.CommandFieldError{Field: "SessionID"}, want: true},
		{name: "no handler", err: bus.ErrHandlerNotFound, want: true},
		{name: "timeout", err: context.DeadlineExceeded, want: false},
		{name: "store failure", err: errors.New("connection reset"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPermanent(tt.err))
		})
	}
}

func TestIsPermanent_HandlerErrors(t *testing.T) {
	ctx := context.Background()

	eventStore, err := memory.NewEventStore()
	require.NoError(t, err)
	aggregateStore, err := events.NewAggregateStore(eventStore)
	require.NoError(t, err)
	handler, err := aggregate.NewCommandHandler(ConferenceAggregateType, aggregateStore)
	require.NoError(t, err)

	err = handler.HandleCommand(ctx, &IssueReservation{ID: uuid.New(), RoomType: SingleBedRoom})
	require.Error(t, err)
	assert.True(t, IsPermanent(err), err.Error())

	err = bus.NewCommandHandler().HandleCommand(ctx,
		&IssueReservation{ID: uuid.New(), RoomType: SingleBedRoom, SessionID: sessionID1})
	require.Error(t, err)
	assert.True(t, IsPermanent(err), err.Error())
}
