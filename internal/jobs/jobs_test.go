package jobs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveOutputKey(t *testing.T) {
	assert.Equal(t, "connor/video_merged.mp4", DeriveOutputKey("connor/video.mp4"))
	assert.Equal(t, "clip_merged.mp4", DeriveOutputKey("clip.mov"))
	assert.Equal(t, "a/b/noext_merged.mp4", DeriveOutputKey("a/b/noext"))
	assert.Equal(t, "video_merged.mp4", DeriveOutputKey(""))
}

func TestValidate(t *testing.T) {
	err := MergeRequest{VideoBucket: "b", VideoKey: "v.mp4"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio_bucket")
	assert.Contains(t, err.Error(), "audio_key")
	assert.NotContains(t, err.Error(), "video_key")

	ok := MergeRequest{VideoBucket: "b", VideoKey: "v.mp4", AudioBucket: "b", AudioKey: "a.wav"}
	assert.NoError(t, ok.Validate())
}

func TestMergeRequest_CaptionAcceptsObject(t *testing.T) {
	var req MergeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"video_key":"v.mp4","caption":{"text":"hi"}}`), &req))
	assert.JSONEq(t, `{"text":"hi"}`, string(req.Caption))
}

func TestKey(t *testing.T) {
	assert.Equal(t, []byte("vid-1"), Key("vid-1", "corr"))
	assert.Equal(t, []byte("corr"), Key("", "corr"))
}
