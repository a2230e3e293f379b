package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yangjie500/media_merger_ffmpeg/internal/jobs"
	"github.com/yangjie500/media_merger_ffmpeg/internal/producer"
)

func newSubmitCmd(a *app) *cobra.Command {
	var (
		req     jobs.MergeRequest
		caption string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send one merge job to the input topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateProducer(); err != nil {
				return err
			}
			if caption != "" {
				b, err := json.Marshal(caption)
				if err != nil {
					return err
				}
				req.Caption = b
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			sent, err := producer.Submit(ctx, a.cfg, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sent.CorrelationID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.VideoBucket, "video-bucket", "", "bucket holding the video")
	f.StringVar(&req.VideoKey, "video-key", "", "object key of the video")
	f.StringVar(&req.AudioBucket, "audio-bucket", "", "bucket holding the audio")
	f.StringVar(&req.AudioKey, "audio-key", "", "object key of the audio")
	f.StringVar(&req.VideoID, "video-id", "", "id used as partition key")
	f.StringVar(&req.AudioID, "audio-id", "", "audio id echoed back")
	f.StringVar(&req.Region, "region", "", "AWS region (default: worker's AWS_REGION)")
	f.StringVar(&req.OutputBucket, "output-bucket", "", "bucket for the merged file")
	f.StringVar(&req.OutputKey, "output-key", "", "key for the merged file (default: <video>_merged.mp4)")
	f.StringVar(&req.CorrelationID, "correlation-id", "", "correlation id (default: random uuid)")
	f.StringVar(&caption, "caption", "", "caption text passed through to the result")
	return cmd
}
