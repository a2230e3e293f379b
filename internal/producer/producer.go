package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/yangjie500/media_merger_ffmpeg/internal/jobs"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/config"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Submit writes one merge job to the input topic and returns it with its
// correlation id filled in.
func Submit(ctx context.Context, cfg config.Config, req jobs.MergeRequest) (jobs.MergeRequest, error) {
	w := newWriter(cfg)
	defer w.Close()

	return submit(ctx, w, req)
}

func submit(ctx context.Context, w messageWriter, req jobs.MergeRequest) (jobs.MergeRequest, error) {
	if err := req.Validate(); err != nil {
		return req, err
	}
	if req.CorrelationID == "" {
		req.CorrelationID = uuid.NewString()
	}

	value, err := json.Marshal(req)
	if err != nil {
		return req, fmt.Errorf("marshal merge request: %w", err)
	}

	msg := kafka.Message{
		Key:   jobs.Key(req.VideoID, req.CorrelationID),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return req, fmt.Errorf("write merge request: %w", err)
	}
	return req, nil
}

func newWriter(cfg config.Config) *kafka.Writer {
	wc := kafka.WriterConfig{
		Topic:    cfg.KafkaTopic,
		Brokers:  cfg.KafkaBrokers,
		Balancer: &kafka.LeastBytes{},
	}

	return kafka.NewWriter(wc)
}
