package consumer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"

	"github.com/telconova/notifier/internal/config"
	"github.com/telconova/notifier/internal/services"
	"github.com/telconova/notifier/internal/types"
)

// eventMessage is the wire format for domain events arriving over Kafka.
type eventMessage struct {
	EventType types.EventTrigger `json:"event_type"`
	Payload   map[string]any     `json:"payload"`
}

// Consumer feeds domain events from a Kafka topic into event processing. It is
// an optional ingestion path next to the HTTP trigger endpoint.
type Consumer struct {
	group  sarama.ConsumerGroup
	topic  string
	cancel context.CancelFunc
	done   chan struct{}
}

// Start connects the consumer group and begins consuming in the background.
// Returns nil without starting anything when no brokers are configured.
func Start() (*Consumer, error) {
	if config.KafkaBrokers == "" {
		log.Info().Msg("no Kafka brokers configured, event consumer disabled")
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	brokers := strings.Split(config.KafkaBrokers, ",")

	group, err := sarama.NewConsumerGroup(brokers, config.KafkaConsumerGroup, cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Consumer{
		group:  group,
		topic:  config.KafkaTopic,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go c.run(ctx)
	go c.logErrors()

	log.Info().Strs("brokers", brokers).Str("topic", c.topic).Str("group", config.KafkaConsumerGroup).
		Msg("event consumer started")

	return c, nil
}

func (c *Consumer) run(ctx context.Context) {
	defer close(c.done)

	handler := &eventHandler{}

	for {
		// Consume blocks for the lifetime of a session and returns on
		// rebalance; loop until the context is cancelled.
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			log.Error().Err(err).Msg("event consumer session failed")
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Consumer) logErrors() {
	for err := range c.group.Errors() {
		log.Error().Err(err).Msg("event consumer error")
	}
}

// Stop shuts the consumer down and waits for the consume loop to exit.
func (c *Consumer) Stop() {
	if c == nil {
		return
	}

	c.cancel()
	<-c.done

	if err := c.group.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event consumer group")
	}
}

type eventHandler struct{}

func (h *eventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *eventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *eventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event eventMessage

		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Error().Err(err).Int64("offset", message.Offset).Msg("skipping malformed event message")
			session.MarkMessage(message, "")
			continue
		}

		if !event.EventType.Valid() {
			log.Error().Str("event_type", string(event.EventType)).Int64("offset", message.Offset).
				Msg("skipping event with unknown trigger")
			session.MarkMessage(message, "")
			continue
		}

		services.ProcessEvent(event.EventType, event.Payload)
		session.MarkMessage(message, "")
	}

	return nil
}
