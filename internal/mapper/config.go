package mapper

import (
	"time"

	"github.com/consumergraph/consumergraph/internal/offsets"
)

const (
	// DefaultPollTimeout applies when the configured timeout is below 1ms
	DefaultPollTimeout = 5000 * time.Millisecond

	// DefaultGroupID is the consumer group the mapper joins
	DefaultGroupID = "topic-consumer-mapper"
)

// Config holds the poll loop settings
type Config struct {
	// Topic defaults to the broker's offsets topic
	Topic string

	// PollTimeoutMs bounds each wait for records
	PollTimeoutMs int
}

// EffectiveTimeout returns the poll timeout, falling back to
// DefaultPollTimeout when PollTimeoutMs is below 1
func (c Config) EffectiveTimeout() time.Duration {
	if c.PollTimeoutMs < 1 {
		return DefaultPollTimeout
	}
	return time.Duration(c.PollTimeoutMs) * time.Millisecond
}

// EffectiveTopic returns the subscribed topic
func (c Config) EffectiveTopic() string {
	if c.Topic == "" {
		return offsets.Topic
	}
	return c.Topic
}
