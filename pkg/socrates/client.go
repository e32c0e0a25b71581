package socrates

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	eh "github.com/looplab/eventhorizon"
	"github.com/looplab/eventhorizon/commandhandler/bus"
	"google.golang.org/api/option"
)

const (
	// ConferenceCommandsTopic is the PubSub topic commands are sent/received on
	ConferenceCommandsTopic = "conference.commands"
	// CommandTypeAttributeKey is the Attribute Key that the CommandTypes are sent using
	CommandTypeAttributeKey = "CommandType"
)

// Client is a pubsub client that will send Commands to the command handler server
type Client struct {
	p      *pubsub.Client
	topic  *pubsub.Topic
	logger *slog.Logger
}

// NewClient returns an initialized Client, this will also create any topics needed
func NewClient(ctx context.Context, project string, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	client, err := pubsub.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "could not create pubsub client")
	}

	topic, err := EnsureTopic(ctx, client, ConferenceCommandsTopic)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Client{p: client, topic: topic, logger: logger}, nil
}

// EnsureTopic returns the named topic, creating it when it does not exist.
func EnsureTopic(ctx context.Context, client *pubsub.Client, name string) (*pubsub.Topic, error) {
	topic := client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "could not check topic %s", name)
	}
	if exists {
		return topic, nil
	}
	topic, err = client.CreateTopicWithConfig(ctx, name, &pubsub.TopicConfig{})
	if err != nil {
		return nil, errors.Wrapf(err, "could not create topic %s", name)
	}
	return topic, nil
}

// EncodeCommand builds the pubsub message carrying a command.
func EncodeCommand(command eh.Command) (*pubsub.Message, error) {
	data, err := json.Marshal(command)
	if err != nil {
		return nil, errors.Wrapf(err, "could not encode %s", command.CommandType())
	}
	return &pubsub.Message{
		ID:   uuid.NewString(),
		Data: data,
		Attributes: map[string]string{
			CommandTypeAttributeKey: string(command.CommandType()),
		},
		PublishTime: time.Now(),
	}, nil
}

// DecodeCommand restores the command of a message built by EncodeCommand.
func DecodeCommand(msg *pubsub.Message) (eh.Command, error) {
	commandType, ok := msg.Attributes[CommandTypeAttributeKey]
	if !ok {
		return nil, errors.Wrap(ErrUnknownCommand, "no command type set")
	}
	cmd, err := eh.CreateCommand(eh.CommandType(commandType))
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrUnknownCommand, "command type %q", commandType), err)
	}
	if err := json.Unmarshal(msg.Data, cmd); err != nil {
		return nil, errors.Wrapf(err, "bad %s command", commandType)
	}
	return cmd, nil
}

// IsPermanent reports whether handling a command failed in a way that
// redelivering the same message cannot change: an unknown command type, a
// command with a missing field or event data the aggregate cannot read.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var fieldErr *eh.CommandFieldError
	return errors.As(err, &fieldErr) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidEventData) ||
		errors.Is(err, bus.ErrHandlerNotFound)
}

// SendCommand will send any eh.Command to the command handler server
// Blocks until sent
func (c *Client) SendCommand(ctx context.Context, command eh.Command) error {
	msg, err := EncodeCommand(command)
	if err != nil {
		return err
	}

	c.logger.InfoContext(ctx, "sending command",
		slog.String("type", string(command.CommandType())),
		slog.String("content", string(msg.Data)),
	)

	res := c.topic.Publish(ctx, msg)
	if _, err := res.Get(ctx); err != nil {
		return errors.Wrapf(err, "could not publish %s", command.CommandType())
	}
	return nil
}

// Close stops the topic and releases the pubsub client.
func (c *Client) Close() error {
	c.topic.Stop()
	return c.p.Close()
}
