// The reaper worker retries blob deletes for orphaned assets. The API
// publishes asset.orphaned whenever a best-effort image delete fails;
// each event gets one retry here, so cleanup never blocks a caller and
// never loops unbounded.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Shivang14d04/BlogCircle/internal/config"
	"github.com/Shivang14d04/BlogCircle/internal/events"
	"github.com/Shivang14d04/BlogCircle/internal/storage"
)

const deleteTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := config.Load()
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required")
		os.Exit(1)
	}

	s3Client, err := storage.NewS3Client(context.Background(), cfg.AWSRegion, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey)
	if err != nil {
		logger.Error("s3 client setup failed", "error", err)
		os.Exit(1)
	}
	store := storage.NewS3Storage(s3Client, cfg.S3Bucket)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(events.ExchangeName, "topic", true, false, false, false, nil); err != nil {
		logger.Error("failed to declare exchange", "error", err)
		os.Exit(1)
	}

	q, err := ch.QueueDeclare(events.OrphanQueueName, true, false, false, false, nil)
	if err != nil {
		logger.Error("failed to declare queue", "error", err)
		os.Exit(1)
	}

	if err := ch.QueueBind(q.Name, events.AssetOrphanedKey, events.ExchangeName, false, nil); err != nil {
		logger.Error("failed to bind queue", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(q.Name, "asset-reaper", false, false, false, false, nil)
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		os.Exit(1)
	}

	logger.Info("asset reaper started", "queue", q.Name)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("worker shutting down")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			handleAssetOrphaned(logger, store, d)
		}
	}
}

func handleAssetOrphaned(logger *slog.Logger, store storage.Storage, d amqp.Delivery) {
	var e events.AssetOrphaned
	if err := json.Unmarshal(d.Body, &e); err != nil {
		logger.Error("invalid event body", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if e.Type != events.TypeAssetOrphaned || e.Payload.Key == "" {
		logger.Debug("ignoring event", "type", e.Type)
		_ = d.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := store.Delete(ctx, e.Payload.Key); err != nil {
		logger.Error("orphan delete retry failed",
			"asset_id", e.Payload.AssetID,
			"key", e.Payload.Key,
			"slug", e.Payload.Slug,
			"error", err,
		)
		_ = d.Nack(false, false)
		return
	}

	logger.Info("orphaned asset reclaimed",
		"asset_id", e.Payload.AssetID,
		"slug", e.Payload.Slug,
		"reason", e.Payload.Reason,
	)
	if err := d.Ack(false); err != nil {
		logger.Error("failed to ack", "error", err)
	}
}
