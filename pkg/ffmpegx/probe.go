package ffmpegx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

type StreamInfo struct {
	HasVideo bool
	HasAudio bool
	Format   string
	Duration float64
}

type durationReport struct {
	Format *struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type streamReport struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// Duration returns the container duration of path in seconds. Any failure,
// including a report without a positive numeric duration, is a *ProbeError,
// except a missing ffprobe which is a *ToolNotFoundError.
func (tc Toolchain) Duration(ctx context.Context, path string) (float64, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}

	stdout, stderr, err := tc.run(ctx, tc.ffprobePath(), durationArgs(path)...)
	if err != nil {
		if isNotFound(err) {
			return 0, &ToolNotFoundError{Tool: "ffprobe", Path: tc.ffprobePath(), Err: err}
		}
		return 0, &ProbeError{Path: path, Stderr: tail(stderr, 8<<10), Err: err}
	}

	var rep durationReport
	if err := json.Unmarshal(stdout, &rep); err != nil {
		return 0, &ProbeError{Path: path, Err: fmt.Errorf("parse report: %w", err)}
	}
	if rep.Format == nil {
		return 0, &ProbeError{Path: path, Err: errors.New("report has no format section")}
	}

	d, err := parseSeconds(rep.Format.Duration)
	if err != nil {
		return 0, &ProbeError{Path: path, Err: err}
	}
	return d, nil
}

// Probe reports stream kinds, container format and duration of path.
func (tc Toolchain) Probe(ctx context.Context, path string) (StreamInfo, error) {
	var si StreamInfo
	if _, err := os.Stat(path); err != nil {
		return si, &ProbeError{Path: path, Err: err}
	}

	stdout, stderr, err := tc.run(ctx, tc.ffprobePath(), streamArgs(path)...)
	if err != nil {
		if isNotFound(err) {
			return si, &ToolNotFoundError{Tool: "ffprobe", Path: tc.ffprobePath(), Err: err}
		}
		return si, &ProbeError{Path: path, Stderr: tail(stderr, 8<<10), Err: err}
	}

	var out streamReport
	if err := json.Unmarshal(stdout, &out); err != nil {
		return si, &ProbeError{Path: path, Err: fmt.Errorf("parse report: %w", err)}
	}

	si.Format = out.Format.FormatName
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			si.HasVideo = true
		case "audio":
			si.HasAudio = true
		}
	}

	// Some containers carry no duration; that is not an error here.
	if d, err := parseSeconds(out.Format.Duration); err == nil {
		si.Duration = d
	}
	return si, nil
}

func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0, errors.New("duration not reported")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return 0, fmt.Errorf("duration %q is not a positive number", s)
	}
	return d, nil
}
