package ffmpegx

import "fmt"

// MissingInputError means a required input file is absent or unreadable.
type MissingInputError struct {
	Role string // "video" or "audio"
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s input %q: %v", e.Role, e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// ProbeError means ffprobe ran (or tried to) but no usable duration came back.
type ProbeError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *ProbeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("ffprobe %q: %v, stderr=%s", e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("ffprobe %q: %v", e.Path, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ToolNotFoundError means ffmpeg or ffprobe could not be located or started.
type ToolNotFoundError struct {
	Tool string
	Path string
	Err  error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found (%s): %v", e.Tool, e.Path, e.Err)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// TranscodeError means ffmpeg ran and failed.
type TranscodeError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("ffmpeg merge failed (exit %d): %v, stderr=%s", e.ExitCode, e.Err, e.Stderr)
}

func (e *TranscodeError) Unwrap() error { return e.Err }
