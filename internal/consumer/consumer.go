package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/config"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
)

const maxAttempts = 3

var (
	retryBackoff = 300 * time.Millisecond
	fetchBackoff = 300 * time.Millisecond
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg kafka.Message) error
}

// permanentError marks a message that no retry can fix.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error { return &permanentError{err: err} }

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

func Start(ctx context.Context, cfg config.Config) error {
	r := newReader(cfg)
	svc := NewService(cfg)
	defer svc.Close()

	return run(ctx, r, svc)
}

func run(ctx context.Context, r messageReader, h messageHandler) error {
	defer func() {
		if err := r.Close(); err != nil {
			logger.Warnf("reader close error: %v", err)
		}
	}()

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return err
			}
			logger.Warnf("fetch error: %v", err)
			select {
			case <-time.After(fetchBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		logger.Debugf("fetched partition=%d offset=%d key=%q", msg.Partition, msg.Offset, string(msg.Key))

		var hErr error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			hErr = h.HandleMessage(ctx, msg)
			if hErr == nil || isPermanent(hErr) {
				break
			}
			logger.Warnf("handle failed attempt=%d offset=%d err=%v", attempt, msg.Offset, hErr)
			if attempt == maxAttempts {
				break
			}
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if hErr != nil {
			// Committed anyway so one bad job cannot block the partition.
			logger.Errorf("dropping message offset=%d err=%v", msg.Offset, hErr)
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			logger.Warnf("commit failed offset=%d err=%v", msg.Offset, err)
		} else {
			logger.Debugf("committed offset=%d", msg.Offset)
		}
	}
}

func newReader(cfg config.Config) *kafka.Reader {
	rc := kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        cfg.KafkaGroupId,
		Topic:          cfg.KafkaTopic,
		MinBytes:       cfg.KafkaMinBytes,
		MaxBytes:       cfg.KafkaMaxBytes,
		MaxWait:        cfg.KafkaMaxWait,
		CommitInterval: cfg.KafkaCommitEvery,
	}

	switch cfg.KafkaStartOffset {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	rc.Dialer = &kafka.Dialer{
		Timeout:  10 * time.Second,
		ClientID: cfg.KafkaClientId,
	}
	return kafka.NewReader(rc)
}
