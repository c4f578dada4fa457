/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/feedlane/newsfeed/internal/constants"
)

// ServerConfig holds every runtime knob of the newsfeed server. Values come
// from the environment first and may be overridden by command line flags.
type ServerConfig struct {
	Listener             string `envconfig:"API_LISTENER_ADDRESS"`
	Port                 int    `envconfig:"PORT"`
	BasePath             string `envconfig:"API_BASE_PATH"`
	QueueSize            int    `envconfig:"EVENTS_QUEUE_SIZE"`
	MaxNewsfeeds         int    `envconfig:"MAX_NEWSFEEDS"`
	EventsPerNewsfeed    int    `envconfig:"EVENTS_PER_NEWSFEED"`
	SubsPerNewsfeed      int    `envconfig:"SUBSCRIPTIONS_PER_NEWSFEED"`
	NewsfeedIDLength     int    `envconfig:"NEWSFEED_ID_LENGTH"`
	ProcessorConcurrency int    `envconfig:"PROCESSOR_CONCURRENCY"`
	EventStorageDSN      string `envconfig:"EVENT_STORAGE_DSN"`
}

// SetServerFlags creates the flag instances for the serve command.
func SetServerFlags(flags *pflag.FlagSet, config *ServerConfig) error {
	flags.StringVar(
		&config.Listener,
		constants.ListenerFlagName,
		fmt.Sprintf("%s:%d", constants.DefaultListenerFlagIP, constants.DefaultServicePort),
		"API listener address",
	)
	flags.StringVar(
		&config.BasePath,
		constants.BasePathFlagName,
		constants.DefaultBasePath,
		"Base path the API routes are mounted under",
	)
	flags.IntVar(
		&config.QueueSize,
		constants.QueueSizeFlagName,
		constants.DefaultQueueSize,
		"Capacity of the event queue in work items",
	)
	flags.IntVar(
		&config.MaxNewsfeeds,
		constants.MaxNewsfeedsFlagName,
		constants.DefaultMaxNewsfeeds,
		"Maximum number of distinct newsfeeds per store",
	)
	flags.IntVar(
		&config.EventsPerNewsfeed,
		constants.EventsPerNewsfeedFlagName,
		constants.DefaultEventsPerNewsfeed,
		"Maximum number of events retained per newsfeed",
	)
	flags.IntVar(
		&config.SubsPerNewsfeed,
		constants.SubsPerNewsfeedFlagName,
		constants.DefaultSubsPerNewsfeed,
		"Maximum number of subscriptions per newsfeed",
	)
	flags.IntVar(
		&config.NewsfeedIDLength,
		constants.NewsfeedIDLengthFlagName,
		constants.DefaultNewsfeedIDLength,
		"Maximum number of characters in a newsfeed id",
	)
	flags.IntVar(
		&config.ProcessorConcurrency,
		constants.ProcessorConcurrencyFlagName,
		constants.DefaultProcessorConcurrency,
		"Number of workers in the event processor pool",
	)
	flags.StringVar(
		&config.EventStorageDSN,
		constants.EventStorageDSNFlagName,
		constants.DefaultEventStorageDSN,
		"Storage DSN; memory:// or a redis:// URL",
	)
	return nil
}

// LoadFromEnv loads config values from the environment. Flags that were set
// explicitly keep their values; everything else falls back to the
// environment and then to the flag defaults.
func (c *ServerConfig) LoadFromEnv() error {
	loaded := ServerConfig{}
	if err := envconfig.Process("", &loaded); err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	if loaded.Listener != "" {
		c.Listener = loaded.Listener
	}
	if loaded.Port != 0 {
		host := strings.Split(c.Listener, ":")[0]
		c.Listener = fmt.Sprintf("%s:%d", host, loaded.Port)
	}
	if loaded.BasePath != "" {
		c.BasePath = loaded.BasePath
	}
	if loaded.QueueSize != 0 {
		c.QueueSize = loaded.QueueSize
	}
	if loaded.MaxNewsfeeds != 0 {
		c.MaxNewsfeeds = loaded.MaxNewsfeeds
	}
	if loaded.EventsPerNewsfeed != 0 {
		c.EventsPerNewsfeed = loaded.EventsPerNewsfeed
	}
	if loaded.SubsPerNewsfeed != 0 {
		c.SubsPerNewsfeed = loaded.SubsPerNewsfeed
	}
	if loaded.NewsfeedIDLength != 0 {
		c.NewsfeedIDLength = loaded.NewsfeedIDLength
	}
	if loaded.ProcessorConcurrency != 0 {
		c.ProcessorConcurrency = loaded.ProcessorConcurrency
	}
	if loaded.EventStorageDSN != "" {
		c.EventStorageDSN = loaded.EventStorageDSN
	}
	return nil
}

// Validate checks the semantic constraints on the configuration.
func (c *ServerConfig) Validate() error {
	if c.Listener == "" {
		return fmt.Errorf("listener address must not be empty")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("event queue size must be positive, got %d", c.QueueSize)
	}
	if c.MaxNewsfeeds <= 0 {
		return fmt.Errorf("maximum newsfeed count must be positive, got %d", c.MaxNewsfeeds)
	}
	if c.EventsPerNewsfeed <= 0 {
		return fmt.Errorf("events per newsfeed must be positive, got %d", c.EventsPerNewsfeed)
	}
	if c.SubsPerNewsfeed <= 0 {
		return fmt.Errorf("subscriptions per newsfeed must be positive, got %d", c.SubsPerNewsfeed)
	}
	if c.NewsfeedIDLength <= 0 {
		return fmt.Errorf("newsfeed id length must be positive, got %d", c.NewsfeedIDLength)
	}
	if c.ProcessorConcurrency <= 0 {
		return fmt.Errorf("processor concurrency must be positive, got %d", c.ProcessorConcurrency)
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base path must start with a slash, got %q", c.BasePath)
	}
	switch {
	case c.EventStorageDSN == "",
		strings.HasPrefix(c.EventStorageDSN, "memory://"),
		strings.HasPrefix(c.EventStorageDSN, "redis://"),
		strings.HasPrefix(c.EventStorageDSN, "rediss://"):
	default:
		return fmt.Errorf("unsupported event storage DSN %q", c.EventStorageDSN)
	}
	return nil
}
