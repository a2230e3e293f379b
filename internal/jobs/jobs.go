// Package jobs holds the Kafka wire format of merge jobs and their results.
package jobs

import (
	"encoding/json"
	"errors"
	"path"
	"strings"
)

const (
	StatusMerged = "merged"
	StatusFailed = "failed"
)

// MergeRequest asks the worker to merge two S3 objects.
type MergeRequest struct {
	MediaKey string `json:"media_id,omitempty"`

	VideoBucket string `json:"video_bucket"`
	VideoKey    string `json:"video_key"`
	AudioBucket string `json:"audio_bucket"`
	AudioKey    string `json:"audio_key"`
	VideoID     string `json:"video_id"`
	AudioID     string `json:"audio_id,omitempty"`
	Region      string `json:"region,omitempty"`

	CorrelationID string `json:"correlation_id,omitempty"`
	OutputBucket  string `json:"output_bucket,omitempty"` // default: OUTPUT_BUCKET, then VideoBucket
	OutputKey     string `json:"output_key,omitempty"`    // default: derived from VideoKey

	// Caption is whatever the caption generator produced, string or object.
	Caption json.RawMessage `json:"caption,omitempty"`
}

type MergeResult struct {
	Status        string  `json:"status"`
	VideoID       string  `json:"video_id"`
	OutputBucket  string  `json:"output_bucket,omitempty"`
	OutputKey     string  `json:"output_key,omitempty"`
	ETag          string  `json:"etag,omitempty"`
	SizeBytes     int64   `json:"size_bytes,omitempty"`
	DurationSec   float64 `json:"duration_sec,omitempty"`
	TargetSec     float64 `json:"target_sec,omitempty"`
	Constrained   bool    `json:"constrained"`
	Caption       string  `json:"caption,omitempty"`
	CorrelationID string  `json:"correlation_id,omitempty"`
	Error         string  `json:"err,omitempty"`
}

func (r MergeRequest) Validate() error {
	var missing []string
	if r.VideoBucket == "" {
		missing = append(missing, "video_bucket")
	}
	if r.VideoKey == "" {
		missing = append(missing, "video_key")
	}
	if r.AudioBucket == "" {
		missing = append(missing, "audio_bucket")
	}
	if r.AudioKey == "" {
		missing = append(missing, "audio_key")
	}
	if len(missing) > 0 {
		return errors.New("merge request missing " + strings.Join(missing, ", "))
	}
	return nil
}

// DeriveOutputKey puts "<name>_merged.mp4" next to the video key.
func DeriveOutputKey(videoKey string) string {
	if videoKey == "" {
		return "video_merged.mp4"
	}

	dir := path.Dir(videoKey)
	base := path.Base(videoKey)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	return path.Join(dir, name+"_merged.mp4")
}

// Key is the partition key; results and requests for one video stay ordered.
func Key(videoID, fallback string) []byte {
	if videoID != "" {
		return []byte(videoID)
	}
	return []byte(fallback)
}
