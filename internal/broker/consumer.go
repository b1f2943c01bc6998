package broker

import (
	"context"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/consumergraph/consumergraph/internal/logger"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxBatch bounds the number of records returned by one Poll
	DefaultMaxBatch = 500

	// pollSlice is the longest single client poll, so that a wakeup is
	// noticed promptly inside a long bounded wait
	pollSlice = 100 * time.Millisecond

	cooperativeProtocol = "COOPERATIVE"
)

// ConsumerConfig holds the settings for a Consumer
type ConsumerConfig struct {
	BootstrapServers string
	GroupID          string
	ClientID         string
	MaxBatch         int
	// Properties are passed through to librdkafka verbatim
	Properties map[string]string
}

// Consumer is a poll-based group consumer backed by confluent-kafka-go.
// It must only be used from one goroutine.
type Consumer struct {
	consumer *kafka.Consumer
	listener RebalanceListener
	maxBatch int
	log      zerolog.Logger
}

// NewConsumer creates a group consumer. Offsets are never committed: the
// consumer always starts from the partitions' beginning.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	conf := &kafka.ConfigMap{
		"bootstrap.servers":    cfg.BootstrapServers,
		"group.id":             cfg.GroupID,
		"enable.auto.commit":   false,
		"auto.offset.reset":    "earliest",
		"enable.partition.eof": false,
	}
	if cfg.ClientID != "" {
		if err := conf.SetKey("client.id", cfg.ClientID); err != nil {
			return nil, &ClientError{Op: "configure", Err: err}
		}
	}
	for k, v := range cfg.Properties {
		if err := conf.SetKey(k, v); err != nil {
			return nil, &ClientError{Op: "configure", Err: err}
		}
	}

	c, err := kafka.NewConsumer(conf)
	if err != nil {
		return nil, &ClientError{Op: "create consumer", Err: err}
	}

	maxBatch := cfg.MaxBatch
	if maxBatch < 1 {
		maxBatch = DefaultMaxBatch
	}

	return &Consumer{
		consumer: c,
		maxBatch: maxBatch,
		log: logger.WithComponent("broker").With().
			Str("group_id", cfg.GroupID).
			Logger(),
	}, nil
}

// Subscribe subscribes to topic. Rebalance notifications are delivered to
// listener from within Poll.
func (c *Consumer) Subscribe(topic string, listener RebalanceListener) error {
	c.listener = listener
	if err := c.consumer.SubscribeTopics([]string{topic}, c.rebalance); err != nil {
		return &ClientError{Op: "subscribe", Err: err}
	}
	c.log.Info().Str("topic", topic).Msg("Subscribed")
	return nil
}

// SeekToBeginning assigns partitions with their start position set to the
// earliest retained offset. It is meant to be called from
// RebalanceListener.PartitionsAssigned.
func (c *Consumer) SeekToBeginning(partitions []Partition) error {
	tps := make([]kafka.TopicPartition, 0, len(partitions))
	for _, p := range partitions {
		topic := p.Topic
		tps = append(tps, kafka.TopicPartition{
			Topic:     &topic,
			Partition: p.Partition,
			Offset:    kafka.OffsetBeginning,
		})
	}

	var err error
	if c.consumer.GetRebalanceProtocol() == cooperativeProtocol {
		err = c.consumer.IncrementalAssign(tps)
	} else {
		err = c.consumer.Assign(tps)
	}
	if err != nil {
		return &ClientError{Op: "assign", Err: err}
	}
	return nil
}

// Poll waits up to timeout for records. Once the first record arrives,
// whatever is already buffered is drained without further waiting. When ctx
// is done before any record arrives, ErrWakeup is returned.
func (c *Consumer) Poll(ctx context.Context, timeout time.Duration) ([]Record, error) {
	deadline := time.Now().Add(timeout)
	var records []Record

	for {
		if ctx.Err() != nil {
			if len(records) > 0 {
				return records, nil
			}
			return nil, ErrWakeup
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return records, nil
		}
		if wait > pollSlice {
			wait = pollSlice
		}
		if len(records) > 0 {
			wait = 0
		}

		ev := c.consumer.Poll(int(wait / time.Millisecond))
		if ev == nil {
			if len(records) > 0 {
				return records, nil
			}
			continue
		}

		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				c.log.Warn().Err(e.TopicPartition.Error).Msg("Message error")
				continue
			}
			records = append(records, toRecord(e))
			if len(records) >= c.maxBatch {
				return records, nil
			}
		case kafka.Error:
			if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
				return nil, &ClientError{Op: "poll", Err: e}
			}
			c.log.Warn().Err(e).Str("code", e.Code().String()).Msg("Kafka client error")
		default:
			c.log.Debug().Str("event", ev.String()).Msg("Ignored event")
		}
	}
}

// Close leaves the group and releases the client
func (c *Consumer) Close() error {
	if err := c.consumer.Close(); err != nil {
		return &ClientError{Op: "close", Err: err}
	}
	c.log.Info().Msg("Consumer closed")
	return nil
}

func (c *Consumer) rebalance(_ *kafka.Consumer, ev kafka.Event) error {
	if c.listener == nil {
		return nil
	}

	switch e := ev.(type) {
	case kafka.AssignedPartitions:
		c.log.Info().
			Str("protocol", c.consumer.GetRebalanceProtocol()).
			Int("partitions", len(e.Partitions)).
			Msg("Partitions assigned")
		return c.listener.PartitionsAssigned(toPartitions(e.Partitions))
	case kafka.RevokedPartitions:
		c.log.Info().
			Int("partitions", len(e.Partitions)).
			Bool("lost", c.consumer.AssignmentLost()).
			Msg("Partitions revoked")
		return c.listener.PartitionsRevoked(toPartitions(e.Partitions))
	default:
		c.log.Warn().Str("event", ev.String()).Msg("Unexpected rebalance event")
		return nil
	}
}

func toPartitions(tps []kafka.TopicPartition) []Partition {
	partitions := make([]Partition, 0, len(tps))
	for _, tp := range tps {
		var topic string
		if tp.Topic != nil {
			topic = *tp.Topic
		}
		partitions = append(partitions, Partition{Topic: topic, Partition: tp.Partition})
	}
	return partitions
}

func toRecord(m *kafka.Message) Record {
	var topic string
	if m.TopicPartition.Topic != nil {
		topic = *m.TopicPartition.Topic
	}
	return Record{
		Topic:     topic,
		Partition: m.TopicPartition.Partition,
		Offset:    int64(m.TopicPartition.Offset),
		Key:       m.Key,
		Value:     m.Value,
		Timestamp: m.Timestamp,
	}
}
