package ffmpegx

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Toolchain locates the ffmpeg and ffprobe executables used by a Merger.
// Zero value means "ffmpeg" and "ffprobe" from PATH with no timeout.
type Toolchain struct {
	FFmpeg  string
	FFprobe string

	// Timeout caps every child process when > 0.
	Timeout time.Duration
}

func (tc Toolchain) ffmpegPath() string {
	if tc.FFmpeg != "" {
		return tc.FFmpeg
	}
	return "ffmpeg"
}

// ffprobePath falls back to a sibling of an explicit ffmpeg path, so that
// pointing at one binary of a static build is enough.
func (tc Toolchain) ffprobePath() string {
	if tc.FFprobe != "" {
		return tc.FFprobe
	}
	if tc.FFmpeg != "" && strings.ContainsRune(tc.FFmpeg, filepath.Separator) {
		return SiblingProbe(tc.FFmpeg)
	}
	return "ffprobe"
}

// SiblingProbe returns the ffprobe path next to the given ffmpeg binary,
// keeping its extension (ffmpeg.exe -> ffprobe.exe).
func SiblingProbe(ffmpegBin string) string {
	ext := filepath.Ext(ffmpegBin)
	return filepath.Join(filepath.Dir(ffmpegBin), "ffprobe"+ext)
}

// EnsureBinariesExist reports a *ToolNotFoundError for the first of
// ffmpeg/ffprobe that cannot be located.
func (tc Toolchain) EnsureBinariesExist() error {
	if _, err := exec.LookPath(tc.ffmpegPath()); err != nil {
		return &ToolNotFoundError{Tool: "ffmpeg", Path: tc.ffmpegPath(), Err: err}
	}
	if _, err := exec.LookPath(tc.ffprobePath()); err != nil {
		return &ToolNotFoundError{Tool: "ffprobe", Path: tc.ffprobePath(), Err: err}
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
