package ffmpegx

import "strconv"

// MergeArgs describes one video+audio merge invocation. Args renders it in
// the fixed order ffmpeg expects: inputs, output options, output path.
type MergeArgs struct {
	Video  string
	Audio  string
	Output string

	// Duration caps the output in seconds. Zero means no cap, in which case
	// -shortest lets ffmpeg stop at the end of the shorter stream.
	Duration float64

	// AudioCodec defaults to aac.
	AudioCodec string
}

func (m MergeArgs) Args() []string {
	aCodec := m.AudioCodec
	if aCodec == "" {
		aCodec = "aac"
	}

	args := []string{
		"-v", "error",
		"-nostdin",
		"-y",
		"-i", m.Video,
		"-i", m.Audio,
	}
	if m.Duration > 0 {
		args = append(args, "-t", formatSeconds(m.Duration))
	}
	args = append(args,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", aCodec,
	)
	if m.Duration <= 0 {
		args = append(args, "-shortest")
	}
	return append(args, m.Output)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// durationArgs asks ffprobe for the container duration only.
func durationArgs(path string) []string {
	return []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	}
}

func streamArgs(path string) []string {
	return []string{
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	}
}
