package socrates

import (
	"context"

	"github.com/cockroachdb/errors"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/aggregatestore/events"
	"github.com/looplab/eventhorizon/commandhandler/aggregate"
	"github.com/looplab/eventhorizon/commandhandler/bus"
	"github.com/looplab/eventhorizon/eventhandler/projector"
	"github.com/looplab/eventhorizon/repo/memory"
	"github.com/looplab/eventhorizon/repo/mongodb"
)

// AllEvents are the event types of the conference aggregate.
var AllEvents = eh.MatchEvents{
	RoomQuotaWasSetEvent,
	ReservationWasIssuedEvent,
	ParticipantWasRegisteredEvent,
	RoomTypeWasChangedEvent,
	DidNotIssueReservationForAlreadyReservedSessionEvent,
	DidNotIssueReservationForFullResourceEvent,
	DidNotChangeRoomTypeForNonParticipantEvent,
}

// Setup will register the conference commands, aggregate and projector
func Setup(
	ctx context.Context,
	eventStore eh.EventStore,
	eventBus eh.EventBus,
	commandBus *bus.CommandHandler,
	conferenceRepo eh.ReadWriteRepo,
) error {

	// Set the EntityFactories for any memory or mongo repos
	if memoryRepo := memory.IntoRepo(ctx, conferenceRepo); memoryRepo != nil {
		memoryRepo.SetEntityFactory(func() eh.Entity { return &ConferenceView{} })
	}
	if mongoRepo := mongodb.IntoRepo(ctx, conferenceRepo); mongoRepo != nil {
		mongoRepo.SetEntityFactory(func() eh.Entity { return &ConferenceView{} })
	}

	// Register the projector with the eventBus
	conferenceProjector := projector.NewEventHandler(NewConferenceProjector(), conferenceRepo)
	conferenceProjector.SetEntityFactory(func() eh.Entity { return &ConferenceView{} })
	if err := eventBus.AddHandler(ctx, AllEvents, conferenceProjector); err != nil {
		return errors.Wrap(err, "could not add conference projector")
	}

	aggregateStore, err := events.NewAggregateStore(eventStore)
	if err != nil {
		return errors.Wrap(err, "could not create aggregate store")
	}

	commandHandler, err := aggregate.NewCommandHandler(ConferenceAggregateType, aggregateStore)
	if err != nil {
		return errors.Wrap(err, "could not create command handler")
	}

	commands := []eh.CommandType{
		UpdateRoomQuotaCommand,
		IssueReservationCommand,
		RegisterParticipantCommand,
		MoveParticipantToNewRoomTypeCommand,
	}
	for _, cmdType := range commands {
		if err := commandBus.SetHandler(commandHandler, cmdType); err != nil {
			return errors.Wrapf(err, "could not set command handler for %s", cmdType)
		}
	}
	return nil
}
