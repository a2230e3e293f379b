// Package mediafile finds and classifies the generated clips and tracks that
// feed a merge.
package mediafile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	Video
	Audio
)

func (k Kind) String() string {
	switch k {
	case Video:
		return "video"
	case Audio:
		return "audio"
	default:
		return "unknown"
	}
}

// Ext is the container extension the generation steps produce for a kind.
func (k Kind) Ext() string {
	switch k {
	case Video:
		return ".mp4"
	case Audio:
		return ".wav"
	default:
		return ""
	}
}

// KindOf infers the kind from the file extension, case-insensitively.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case Video.Ext():
		return Video
	case Audio.Ext():
		return Audio
	default:
		return Unknown
	}
}

// DurationProber is satisfied by ffmpegx.Toolchain.
type DurationProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type MediaFile struct {
	Path string
	Kind Kind
}

func New(path string) MediaFile {
	return MediaFile{Path: path, Kind: KindOf(path)}
}

// Duration asks p every time; the value is never cached because the file
// may be rewritten between calls.
func (f MediaFile) Duration(ctx context.Context, p DurationProber) (float64, error) {
	return p.Duration(ctx, f.Path)
}

// FindFirst returns the first regular file directly inside dir whose
// extension matches kind, in lexical order. ok is false when none exists.
func FindFirst(dir string, kind Kind) (path string, ok bool, err error) {
	if kind == Unknown {
		return "", false, fmt.Errorf("find in %q: unknown media kind", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("read dir %q: %w", dir, err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if KindOf(e.Name()) != kind {
			continue
		}
		return filepath.Join(dir, e.Name()), true, nil
	}
	return "", false, nil
}
