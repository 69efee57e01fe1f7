// Command resizer consumes object-created events from RabbitMQ and writes
// 300x300 copies of new images under resized-images/.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	amqp "github.com/streadway/amqp"

	"myflix/internal/config"
	"myflix/internal/imaging"
	"myflix/internal/logging"
	"myflix/pkg/objectstore"
	"myflix/pkg/rabbitmq"
)

func main() {
	cfg, err := config.LoadResizer(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := objectstore.Open(ctx, cfg.StorageDriver, objectstore.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object store")
	}

	mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.ImageEventsQueue}, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
	}
	defer mqClient.Close()

	processor := imaging.NewProcessor(store, &logger)

	err = mqClient.Consume(ctx, newHandler(ctx, processor, &logger), cfg.ImageEventsRequeue)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped")
		return
	}
	logger.Info().Msg("resizer stopped")
}

// newHandler turns each delivery into pipeline runs. Undecodable bodies and
// failed records return an error so the message is nacked.
func newHandler(ctx context.Context, processor *imaging.Processor, logger *zerolog.Logger) rabbitmq.Handler {
	return func(msg amqp.Delivery) error {
		evt, err := imaging.ParseEvent(msg.Body)
		if err != nil {
			return err
		}

		var failed []string
		for _, res := range processor.HandleEvent(ctx, evt) {
			logger.Debug().
				Str("key", res.Key).
				Str("status", string(res.Status)).
				Int("code", res.Code).
				Msg("event record processed")
			if res.Failed() {
				failed = append(failed, fmt.Sprintf("%s: %s", res.Key, res.Message))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d record(s) failed: %v", len(failed), failed)
		}
		return nil
	}
}
