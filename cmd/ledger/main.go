package main

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/pubsub"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/commandhandler/bus"
	gcpEventBus "github.com/looplab/eventhorizon/eventbus/gcp"
	tracingEventBus "github.com/looplab/eventhorizon/eventbus/tracing"
	mongoEventStore "github.com/looplab/eventhorizon/eventstore/mongodb"
	tracingEventStore "github.com/looplab/eventhorizon/eventstore/tracing"
	ctracing "github.com/looplab/eventhorizon/middleware/commandhandler/tracing"
	"github.com/looplab/eventhorizon/middleware/eventhandler/observer"
	mongoRepo "github.com/looplab/eventhorizon/repo/mongodb"
	tracingRepo "github.com/looplab/eventhorizon/repo/tracing"
	"github.com/looplab/eventhorizon/repo/version"

	"github.com/MattDevy/socrates-ledger/pkg/config"
	"github.com/MattDevy/socrates-ledger/pkg/logging"
	"github.com/MattDevy/socrates-ledger/pkg/participants"
	"github.com/MattDevy/socrates-ledger/pkg/socrates"
	"github.com/MattDevy/socrates-ledger/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("could not load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level)
	slog.SetDefault(logger)

	// Connect to the emulator if not running inside docker
	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		os.Setenv("PUBSUB_EMULATOR_HOST", cfg.GCP.PubSubEmulatorHost)
	}

	// Set up tracing
	if err := tracing.InitOpenCensus(cfg.Tracing.Host, "ledger"); err != nil {
		fatal(logger, "could not init opencensus", err)
	}
	traceCloser, err := tracing.NewTracer("conference", cfg.Tracing.Host)
	if err != nil {
		fatal(logger, "could not create tracer", err)
	}
	defer func() {
		if err := traceCloser.Close(); err != nil {
			logger.Warn("could not close tracer", slog.Any("error", err))
		}
	}()

	// Create the pub sub event bus
	eventBus := NewPubSubEventBus(logger, cfg.GCP.Project, cfg.GCP.AppID)
	// Wrap the event bus to add tracing.
	eventBus = tracingEventBus.NewEventBus(eventBus)

	// Create the event store.
	eventStore := NewMongoEventStore(logger, eventBus, cfg.Mongo.URL, cfg.Mongo.Database)
	eventStore = tracingEventStore.NewEventStore(eventStore)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Add an event logger as an observer.
	eventLogger := &logging.EventLogger{Logger: logger}
	if err := eventBus.AddHandler(ctx, eh.MatchAll{},
		eh.UseEventHandlerMiddleware(eventLogger,
			observer.NewMiddleware(observer.NamedGroup("conference")),
		),
	); err != nil {
		fatal(logger, "could not add event logger", err)
	}

	// Create mongo projection repos
	conferenceRepo := NewMongoRepo(logger, cfg.Mongo.URL, cfg.Mongo.Database, "conferences")
	participantRepo := tracingRepo.NewRepo(newMongoRepo(logger, cfg.Mongo.URL, cfg.Mongo.Database, "participants"))

	// Create the command bus to handle all commands
	commandBus := bus.NewCommandHandler()
	// Add tracing middleware to init tracing spans, and the logging middleware.
	commandHandler := eh.UseCommandHandlerMiddleware(commandBus,
		ctracing.NewMiddleware(),
		logging.CommandLogger(logger),
	)

	if err := participants.Setup(ctx, eventBus, participantRepo); err != nil {
		fatal(logger, "could not set up participants", err)
	}
	if err := socrates.Setup(ctx, eventStore, eventBus, commandBus, conferenceRepo); err != nil {
		fatal(logger, "could not set up conference", err)
	}

	// Handle incoming commands until the subscription stops
	if err := ReceiveCommands(ctx, logger, cfg.GCP, commandHandler); err != nil {
		fatal(logger, "could not receive commands", err)
	}

	eventBus.Wait()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

func NewPubSubEventBus(logger *slog.Logger, project, appID string) eh.EventBus {
	eventBus, err := gcpEventBus.NewEventBus(project, appID)
	if err != nil {
		fatal(logger, "could not create event bus", err)
	}
	go func() {
		for err := range eventBus.Errors() {
			logger.Error("eventbus", slog.Any("error", err))
		}
	}()
	return eventBus
}

func NewMongoEventStore(logger *slog.Logger, eventBus eh.EventBus, url, database string) eh.EventStore {
	eventStore, err := mongoEventStore.NewEventStore(url, database,
		mongoEventStore.WithEventHandler(eventBus), // Add the event bus as a handler after save.
	)
	if err != nil {
		fatal(logger, "could not create event store", err)
	}
	return eventStore
}

// NewMongoRepo returns a versioned repo, for projections keyed by aggregate.
func NewMongoRepo(logger *slog.Logger, url, database, collection string) eh.ReadWriteRepo {
	return tracingRepo.NewRepo(version.NewRepo(newMongoRepo(logger, url, database, collection)))
}

func newMongoRepo(logger *slog.Logger, url, database, collection string) eh.ReadWriteRepo {
	repo, err := mongoRepo.NewRepo(url, database, collection)
	if err != nil {
		fatal(logger, "could not create "+collection+" repository", err)
	}
	return repo
}

// ReceiveCommands dispatches the commands published on the command topic.
// Messages are handled one at a time so that commands for a conference are
// decided against its latest state.
func ReceiveCommands(ctx context.Context, logger *slog.Logger, cfg config.GCPConfig, commandHandler eh.CommandHandler) error {
	client, err := pubsub.NewClient(ctx, cfg.Project)
	if err != nil {
		return err
	}
	defer client.Close()

	topic, err := socrates.EnsureTopic(ctx, client, socrates.ConferenceCommandsTopic)
	if err != nil {
		return err
	}

	sub := client.Subscription(cfg.Subscription)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		sub, err = client.CreateSubscription(ctx, cfg.Subscription, pubsub.SubscriptionConfig{
			Topic: topic,
		})
		if err != nil {
			return err
		}
	}
	sub.ReceiveSettings.NumGoroutines = 1
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		cmd, err := socrates.DecodeCommand(msg)
		if err != nil {
			// Redelivery would not help.
			logger.Warn("dropping message", slog.String("id", msg.ID), slog.Any("error", err))
			msg.Ack()
			return
		}
		if err := commandHandler.HandleCommand(ctx, cmd); err != nil {
			if socrates.IsPermanent(err) {
				logger.Warn("dropping command",
					slog.String("id", msg.ID),
					slog.String("type", string(cmd.CommandType())),
					slog.Any("error", err),
				)
				msg.Ack()
				return
			}
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
