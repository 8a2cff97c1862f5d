package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/retry"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter покрывает используемую часть kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher пишет события в топик Kafka, ключ сообщения — id записи.
type KafkaPublisher struct {
	writer messageWriter
	policy retry.Policy
	log    *zap.Logger
}

// NewKafkaPublisher создает издателя по настройкам cfg.
func NewKafkaPublisher(cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}
	return newKafkaPublisher(w, cfg, log)
}

func newKafkaPublisher(w messageWriter, cfg config.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		log:    log,
		policy: retry.Policy{
			MaxRetries: cfg.MaxRetries,
			Backoff:    retry.NewBackoff(cfg.Backoff, cfg.BackoffCap, cfg.BackoffJitter),
			OnRetry: func(err error, attempt int, wait time.Duration) {
				log.Warn("kafka write failed, retrying",
					zap.Error(err),
					zap.Int("attempt", attempt),
					zap.Duration("wait", wait),
				)
			},
		},
	}
}

// Publish сериализует событие в JSON и пишет его с повторами.
func (p *KafkaPublisher) Publish(ctx context.Context, event ItemEvent) error {
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	if err := retry.Do(ctx, p.policy, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msg)
	}); err != nil {
		return fmt.Errorf("publish %s for item %d: %w", event.Type, event.ItemID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encodeMessage(event ItemEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ItemID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}

// New возвращает KafkaPublisher либо NopPublisher, если брокеры не заданы.
func New(cfg config.KafkaConfig, log *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info("kafka brokers not configured, item events disabled")
		return NopPublisher{}
	}
	log.Info("publishing item events", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return NewKafkaPublisher(cfg, log)
}
