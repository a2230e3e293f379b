package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/yangjie500/media_merger_ffmpeg/internal/jobs"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/config"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/ffmpegx"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/prompttext"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/s3x"
)

type ObjectStore interface {
	GetObjectToFile(ctx context.Context, bucket, key, path string) error
	PutObjectFromFile(ctx context.Context, bucket, key, path, contentType string) (string, error)
}

type Merger interface {
	Merge(ctx context.Context, req ffmpegx.MergeRequest) ffmpegx.MergeResult
}

type Prober interface {
	Probe(ctx context.Context, path string) (ffmpegx.StreamInfo, error)
}

type ResultWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Service struct {
	cfg          config.Config
	merger       Merger
	prober       Prober
	newStore     func(ctx context.Context, region string) (ObjectStore, error)
	resultWriter ResultWriter
}

func NewService(cfg config.Config) *Service {
	var w ResultWriter

	if cfg.KafkaProducerTopic != "" {
		w = kafka.NewWriter(kafka.WriterConfig{
			Brokers:  cfg.KafkaProducerBroker,
			Topic:    cfg.KafkaProducerTopic,
			Balancer: &kafka.LeastBytes{},
		})
	}

	tc := cfg.Toolchain()
	return &Service{
		cfg:    cfg,
		merger: ffmpegx.NewMerger(tc),
		prober: tc,
		newStore: func(ctx context.Context, region string) (ObjectStore, error) {
			var opts []s3x.Option
			if cfg.S3Endpoint != "" {
				opts = append(opts, s3x.WithEndpoint(cfg.S3Endpoint))
			}
			return s3x.New(ctx, region, opts...)
		},
		resultWriter: w,
	}
}

func (s *Service) Close() {
	if s.resultWriter != nil {
		_ = s.resultWriter.Close()
	}
}

// HandleMessage runs one merge job. Transport failures, including a failed
// write of the "merged" result, are returned so the reader loop can retry;
// a failed merge is reported as a "failed" result and is not retried.
func (s *Service) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var req jobs.MergeRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return permanent(fmt.Errorf("parse merge request: %w", err))
	}
	if err := req.Validate(); err != nil {
		return permanent(err)
	}
	if req.CorrelationID == "" {
		req.CorrelationID = fallbackCorrelationID(msg)
	}

	caption, err := prompttext.Normalize(req.Caption)
	if err != nil {
		logger.Warnf("correlationID=%s caption ignored: %v", req.CorrelationID, err)
		caption = ""
	}

	region := req.Region
	if region == "" {
		region = s.cfg.Region
	}
	if region == "" {
		return permanent(fmt.Errorf("missing AWS region (event.Region empty and AWS_REGION not configured)"))
	}

	// Derive output location if missing
	outBucket := req.OutputBucket
	if outBucket == "" {
		outBucket = s.cfg.OutputBucket
	}
	if outBucket == "" {
		outBucket = req.VideoBucket
	}
	outKey := req.OutputKey
	if outKey == "" {
		outKey = jobs.DeriveOutputKey(req.VideoKey)
	}

	// Work dir (unique per job)
	workDir := s.cfg.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("work dir: %w", err)
	}
	jobDir, err := os.MkdirTemp(workDir, "merge-*")
	if err != nil {
		return fmt.Errorf("mktemp: %w", err)
	}
	defer os.RemoveAll(jobDir)

	// Local names keep the object extension so ffmpeg picks the right demuxer.
	videoPath := filepath.Join(jobDir, "video_in"+extOr(req.VideoKey, ".mp4"))
	audioPath := filepath.Join(jobDir, "audio_in"+extOr(req.AudioKey, ".wav"))
	mergedPath := filepath.Join(jobDir, "merged_out"+extOr(outKey, ".mp4"))

	store, err := s.newStore(ctx, region)
	if err != nil {
		return fmt.Errorf("s3 init: %w", err)
	}

	logger.Infof("correlationID=%s downloading s3://%s/%s", req.CorrelationID, req.VideoBucket, req.VideoKey)
	if err := store.GetObjectToFile(ctx, req.VideoBucket, req.VideoKey, videoPath); err != nil {
		return fmt.Errorf("download video: %w", err)
	}
	logger.Infof("correlationID=%s downloading s3://%s/%s", req.CorrelationID, req.AudioBucket, req.AudioKey)
	if err := store.GetObjectToFile(ctx, req.AudioBucket, req.AudioKey, audioPath); err != nil {
		return fmt.Errorf("download audio: %w", err)
	}

	logger.Infof("correlationID=%s merging -> %s", req.CorrelationID, mergedPath)
	mres := s.merger.Merge(ctx, ffmpegx.MergeRequest{
		VideoPath:  videoPath,
		AudioPath:  audioPath,
		OutputPath: mergedPath,
	})

	res := jobs.MergeResult{
		VideoID:       req.VideoID,
		TargetSec:     mres.TargetDuration,
		Constrained:   mres.Constrained,
		Caption:       caption,
		CorrelationID: req.CorrelationID,
	}

	if !mres.OK {
		res.Status = jobs.StatusFailed
		res.Error = mres.Err.Error()
		// Returning here would rerun a merge that already failed.
		if err := s.emitResult(ctx, res); err != nil {
			logger.Warnf("correlationID=%s emit result failed: %v", req.CorrelationID, err)
		}
		logger.Errorf("correlationID=%s merge failed: %v", req.CorrelationID, mres.Err)
		return nil
	}

	// Probe output for duration (optional)
	si, err := s.prober.Probe(ctx, mergedPath)
	if err != nil {
		logger.Warnf("correlationID=%s probe output: %v", req.CorrelationID, err)
	}

	logger.Infof("correlationID=%s uploading s3://%s/%s", req.CorrelationID, outBucket, outKey)
	etag, err := store.PutObjectFromFile(ctx, outBucket, outKey, mergedPath, "")
	if err != nil {
		return fmt.Errorf("upload merged: %w", err)
	}

	res.Status = jobs.StatusMerged
	res.OutputBucket = outBucket
	res.OutputKey = outKey
	res.ETag = etag
	res.DurationSec = si.Duration
	if st, err := os.Stat(mergedPath); err == nil {
		res.SizeBytes = st.Size()
	}

	if err := s.emitResult(ctx, res); err != nil {
		return fmt.Errorf("emit result: %w", err)
	}

	logger.Infof("correlationID=%s merge completed: s3://%s/%s (duration=%.2fs)", req.CorrelationID, outBucket, outKey, si.Duration)
	return nil
}

func (s *Service) emitResult(ctx context.Context, res jobs.MergeResult) error {
	if s.resultWriter == nil {
		return nil // No output topic configured; it's OK to skip emitting
	}

	val, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return s.resultWriter.WriteMessages(ctx, kafka.Message{
		Key:   jobs.Key(res.VideoID, res.CorrelationID),
		Value: val,
		Time:  time.Now().UTC(),
	})
}

// fallbackCorrelationID names a job by its log position, so every attempt
// and redelivery of one message logs under the same id.
func fallbackCorrelationID(msg kafka.Message) string {
	pos := fmt.Sprintf("kafka://%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(pos)).String()
}

func extOr(key, def string) string {
	if ext := path.Ext(key); ext != "" {
		return ext
	}
	return def
}
