package participants

import (
	"context"

	"github.com/cockroachdb/errors"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/repo/memory"
	"github.com/looplab/eventhorizon/repo/mongodb"

	"github.com/MattDevy/socrates-ledger/pkg/socrates"
)

// Setup will register the participant directory with the event bus
func Setup(
	ctx context.Context,
	eventBus eh.EventBus,
	participantRepo eh.ReadWriteRepo,
) error {
	if memoryRepo := memory.IntoRepo(ctx, participantRepo); memoryRepo != nil {
		memoryRepo.SetEntityFactory(func() eh.Entity { return &Participant{} })
	}
	if mongoRepo := mongodb.IntoRepo(ctx, participantRepo); mongoRepo != nil {
		mongoRepo.SetEntityFactory(func() eh.Entity { return &Participant{} })
	}

	directory := NewProjector(participantRepo)
	if err := eventBus.AddHandler(ctx, eh.MatchEvents{
		socrates.ParticipantWasRegisteredEvent,
		socrates.RoomTypeWasChangedEvent,
	}, directory); err != nil {
		return errors.Wrap(err, "could not add participant directory")
	}
	return nil
}
