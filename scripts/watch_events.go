package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/events"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Печатает события жизненного цикла предметов из Kafka.
func main() {
	group := flag.String("group", "", "Consumer group (empty reads the partition from the beginning)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
		log.Fatal("Kafka brokers or topic not configured")
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	readerCfg := kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    cfg.Kafka.Topic,
		GroupID:  *group,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	if *group == "" {
		readerCfg.StartOffset = kafka.FirstOffset
	}
	r := kafka.NewReader(readerCfg)
	defer func() {
		if err := r.Close(); err != nil {
			zl.Warn("kafka reader close error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("watching item events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			zl.Error("read message failed", zap.Error(err))
			return
		}

		var ev events.ItemEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zl.Warn("skip malformed event", zap.Int64("offset", msg.Offset), zap.Error(err))
			continue
		}
		zl.Info("item event",
			zap.String("type", ev.Type),
			zap.Int64("item_id", ev.ItemID),
			zap.String("name", ev.Name),
			zap.Time("occurred_at", ev.OccurredAt),
			zap.Int64("offset", msg.Offset),
		)
	}
}
