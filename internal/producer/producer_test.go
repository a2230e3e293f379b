package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yangjie500/media_merger_ffmpeg/internal/jobs"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func validRequest() jobs.MergeRequest {
	return jobs.MergeRequest{
		VideoBucket: "media-extractor",
		VideoKey:    "connor/video.mp4",
		AudioBucket: "media-extractor",
		AudioKey:    "connor/audio.m4a",
		VideoID:     "vid-123",
	}
}

func TestSubmit_AssignsCorrelationID(t *testing.T) {
	w := &fakeWriter{}
	sent, err := submit(context.Background(), w, validRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, sent.CorrelationID)

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("vid-123"), w.msgs[0].Key)

	var got jobs.MergeRequest
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, sent.CorrelationID, got.CorrelationID)
	assert.Equal(t, "connor/audio.m4a", got.AudioKey)
}

func TestSubmit_KeepsCorrelationID(t *testing.T) {
	req := validRequest()
	req.CorrelationID = "req-abc-001"
	req.VideoID = ""

	w := &fakeWriter{}
	sent, err := submit(context.Background(), w, req)
	require.NoError(t, err)
	assert.Equal(t, "req-abc-001", sent.CorrelationID)
	assert.Equal(t, []byte("req-abc-001"), w.msgs[0].Key)
}

func TestSubmit_Errors(t *testing.T) {
	_, err := submit(context.Background(), &fakeWriter{}, jobs.MergeRequest{})
	assert.Error(t, err)

	_, err = submit(context.Background(), &fakeWriter{err: errors.New("leader not available")}, validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write merge request")
}
