package config

import (
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from the environment. Defaults target the local emulators
// started next to the services.
type Config struct {
	GCP     GCPConfig
	Mongo   MongoConfig
	Tracing TracingConfig
	Log     LogConfig

	// ConferenceID is the aggregate the writer sends its commands to.
	ConferenceID string `envconfig:"CONFERENCE_ID"`
}

type GCPConfig struct {
	Project            string `envconfig:"GCP_PROJECT" default:"test"`
	AppID              string `envconfig:"GCP_APP_ID" default:"conference"`
	PubSubEmulatorHost string `envconfig:"PUBSUB_EMULATOR_HOST" default:"localhost:8085"`
	Subscription       string `envconfig:"PUBSUB_SUBSCRIPTION" default:"conference-ledger"`
}

type MongoConfig struct {
	URL      string `envconfig:"MONGO_URL" default:"mongodb://localhost:27017"`
	Database string `envconfig:"MONGO_DB" default:"conference"`
}

type TracingConfig struct {
	Host string `envconfig:"TRACING_URL" default:"localhost"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to process env config")
	}
	return cfg, nil
}

// Conference parses ConferenceID. An empty ID is an error.
func (c Config) Conference() (uuid.UUID, error) {
	if c.ConferenceID == "" {
		return uuid.Nil, errors.New("CONFERENCE_ID is not set")
	}
	id, err := uuid.Parse(c.ConferenceID)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid CONFERENCE_ID")
	}
	return id, nil
}
