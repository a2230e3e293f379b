package ffmpegx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
)

type MergeRequest struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
}

// MergeResult is the outcome of one Merge call. Err is nil iff OK.
type MergeResult struct {
	OK bool

	// Constrained is true when the output was capped with -t instead of
	// relying on -shortest.
	Constrained    bool
	VideoDuration  float64
	AudioDuration  float64
	TargetDuration float64

	// Output is the merged file, set only when OK.
	Output string

	// Args is the ffmpeg argv as run. Its last element is the temporary
	// file (see tempOutput) that is renamed to Output on success.
	Args        []string
	Diagnostics string
	Err         error
}

// Merger muxes a video stream and an audio stream into one file, trimmed to
// the shorter of the two.
type Merger struct {
	tc Toolchain
}

func NewMerger(tc Toolchain) *Merger {
	return &Merger{tc: tc}
}

func (m *Merger) Toolchain() Toolchain { return m.tc }

// Merge never returns a bare failure: every error is logged and carried in
// the result. On failure the output path is left as it was.
func (m *Merger) Merge(ctx context.Context, req MergeRequest) MergeResult {
	var res MergeResult

	if err := mustReadable(req.VideoPath); err != nil {
		return m.fail(res, &MissingInputError{Role: "video", Path: req.VideoPath, Err: err})
	}
	if err := mustReadable(req.AudioPath); err != nil {
		return m.fail(res, &MissingInputError{Role: "audio", Path: req.AudioPath, Err: err})
	}
	if err := m.tc.EnsureBinariesExist(); err != nil {
		return m.fail(res, err)
	}

	vDur, vErr := m.tc.Duration(ctx, req.VideoPath)
	aDur, aErr := m.tc.Duration(ctx, req.AudioPath)
	for _, err := range []error{vErr, aErr} {
		var tnf *ToolNotFoundError
		if errors.As(err, &tnf) {
			return m.fail(res, err)
		}
	}

	margs := MergeArgs{Video: req.VideoPath, Audio: req.AudioPath}
	if vErr != nil || aErr != nil {
		if vErr != nil {
			logger.Warnf("video duration unavailable: %v", vErr)
		}
		if aErr != nil {
			logger.Warnf("audio duration unavailable: %v", aErr)
		}
		logger.Warnf("merging without duration constraint (shortest stream)")
	} else {
		res.VideoDuration = vDur
		res.AudioDuration = aDur
		res.TargetDuration = math.Min(vDur, aDur)
		res.Constrained = true
		margs.Duration = res.TargetDuration
		logger.Infof("video=%.2fs audio=%.2fs output=%.2fs", vDur, aDur, res.TargetDuration)
	}

	tmpFile := tempOutput(req.OutputPath)
	_ = os.Remove(tmpFile)
	margs.Output = tmpFile
	res.Args = margs.Args()

	logger.Debugf("%s %s", m.tc.ffmpegPath(), strings.Join(res.Args, " "))
	_, stderr, runErr := m.tc.run(ctx, m.tc.ffmpegPath(), res.Args...)
	res.Diagnostics = tail(stderr, 16<<10)
	if runErr != nil {
		_ = os.Remove(tmpFile)
		if isNotFound(runErr) {
			return m.fail(res, &ToolNotFoundError{Tool: "ffmpeg", Path: m.tc.ffmpegPath(), Err: runErr})
		}
		return m.fail(res, &TranscodeError{ExitCode: exitCode(runErr), Stderr: res.Diagnostics, Err: runErr})
	}

	if err := os.Rename(tmpFile, req.OutputPath); err != nil {
		_ = os.Remove(tmpFile)
		return m.fail(res, fmt.Errorf("rename output: %w", err))
	}

	res.OK = true
	res.Output = req.OutputPath
	logger.Infof("merged %s + %s -> %s", req.VideoPath, req.AudioPath, req.OutputPath)
	return res
}

func (m *Merger) fail(res MergeResult, err error) MergeResult {
	res.OK = false
	res.Err = err
	logger.Errorf("merge failed: %v", err)
	return res
}

// MergeAV merges with a one-off Merger and returns only the error.
func MergeAV(ctx context.Context, tc Toolchain, videoPath, audioPath, outPath string) error {
	return NewMerger(tc).Merge(ctx, MergeRequest{
		VideoPath:  videoPath,
		AudioPath:  audioPath,
		OutputPath: outPath,
	}).Err
}

// tempOutput keeps the extension so ffmpeg still picks the muxer from it.
func tempOutput(out string) string {
	ext := filepath.Ext(out)
	stem := strings.TrimSuffix(filepath.Base(out), ext)
	return filepath.Join(filepath.Dir(out), "."+stem+".tmp"+ext)
}

func mustReadable(p string) error {
	st, err := os.Stat(p)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%w: path is a directory", fs.ErrInvalid)
	}
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	f.Close()
	return nil
}
