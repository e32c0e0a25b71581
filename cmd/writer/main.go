package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"google.golang.org/api/option"
	"google.golang.org/grpc"

	"github.com/MattDevy/socrates-ledger/pkg/config"
	"github.com/MattDevy/socrates-ledger/pkg/logging"
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

	if err := tracing.InitOpenCensus(cfg.Tracing.Host, "writer"); err != nil {
		fatal(logger, "could not init opencensus", err)
	}

	conferenceID, err := cfg.Conference()
	if err != nil {
		conferenceID = uuid.New()
		logger.Info("using a new conference", slog.String("id", conferenceID.String()))
	}

	options := []option.ClientOption{
		option.WithEndpoint(cfg.GCP.PubSubEmulatorHost),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithInsecure()),
	}
	ctx := context.Background()
	client, err := socrates.NewClient(ctx, cfg.GCP.Project, logger, options...)
	if err != nil {
		fatal(logger, "could not create client", err)
	}
	defer client.Close()

	steps := []eh.Command{
		// Open the conference with one single bed room and no king suite
		&socrates.UpdateRoomQuota{ID: conferenceID, RoomType: socrates.SingleBedRoom, Quota: 1},
		&socrates.UpdateRoomQuota{ID: conferenceID, RoomType: socrates.KingSuite, Quota: 0},
		// Reserve the single bed room
		&socrates.IssueReservation{ID: conferenceID, RoomType: socrates.SingleBedRoom, SessionID: "session-matt"},
		// A second session finds the room full
		&socrates.IssueReservation{ID: conferenceID, RoomType: socrates.SingleBedRoom, SessionID: "session-joyce"},
		// Turn the reservation into a registration
		&socrates.RegisterParticipant{ID: conferenceID, RoomType: socrates.SingleBedRoom, SessionID: "session-matt", MemberID: "matt"},
		// Upgrade the participant even though the suites are full
		&socrates.MoveParticipantToNewRoomType{ID: conferenceID, MemberID: "matt", RoomType: socrates.KingSuite},
		// Joyce never registered
		&socrates.MoveParticipantToNewRoomType{ID: conferenceID, MemberID: "joyce", RoomType: socrates.KingSuite},
	}
	for _, cmd := range steps {
		waitEnter()
		if err := client.SendCommand(ctx, cmd); err != nil {
			fatal(logger, "could not send command", err)
		}
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}

// waitEnter will wait until the user presses the enter key
func waitEnter() {
	var null string

	fmt.Println("\nHit enter to continue...")
	fmt.Scanln(&null)
}
