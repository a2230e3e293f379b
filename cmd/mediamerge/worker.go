package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yangjie500/media_merger_ffmpeg/internal/consumer"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/kafkautil"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
)

func newWorkerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume merge jobs from Kafka until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := cfg.ValidateWorker(); err != nil {
				return err
			}
			if err := cfg.Toolchain().EnsureBinariesExist(); err != nil {
				return err
			}

			if cfg.AutoCreateTopics && cfg.KafkaProducerTopic != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
				err := kafkautil.EnsureTopicWithRetry(ctx, cfg.KafkaProducerBroker,
					cfg.KafkaProducerTopic,
					cfg.KafkaOutputTopicPartitions,
					cfg.KafkaOutputTopicReplication,
					nil, 5, 300*time.Millisecond)
				cancel()
				if err != nil {
					logger.Warnf("ensure output topic %q: %v", cfg.KafkaProducerTopic, err)
				} else {
					logger.Infof("output topic ready: %s", cfg.KafkaProducerTopic)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			logger.Infof("worker starting topic=%s group=%s brokers=%v", cfg.KafkaTopic, cfg.KafkaGroupId, cfg.KafkaBrokers)
			if err := consumer.Start(ctx, cfg); err != nil && ctx.Err() == nil {
				logger.Errorf("worker stopped with error: %v", err)
				return err
			}
			logger.Infof("worker exited")
			return nil
		},
	}
}
