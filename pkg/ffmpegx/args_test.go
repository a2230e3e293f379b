package ffmpegx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeArgs_Capped(t *testing.T) {
	got := MergeArgs{Video: "v.mp4", Audio: "a.wav", Output: "o.mp4", Duration: 6}.Args()
	want := []string{
		"-v", "error", "-nostdin", "-y",
		"-i", "v.mp4",
		"-i", "a.wav",
		"-t", "6",
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "aac",
		"o.mp4",
	}
	assert.Equal(t, want, got)
}

func TestMergeArgs_Shortest(t *testing.T) {
	got := MergeArgs{Video: "v.mp4", Audio: "a.wav", Output: "o.mp4", AudioCodec: "libopus"}.Args()
	want := []string{
		"-v", "error", "-nostdin", "-y",
		"-i", "v.mp4",
		"-i", "a.wav",
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy", "-c:a", "libopus",
		"-shortest",
		"o.mp4",
	}
	assert.Equal(t, want, got)
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "4.5", formatSeconds(4.5))
	assert.Equal(t, "10", formatSeconds(10))
	assert.Equal(t, "0.333", formatSeconds(0.333))
}
