package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/ffmpegx"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/mediafile"
)

type mergeOptions struct {
	video          string
	audio          string
	output         string
	inputDir       string
	outputDir      string
	outputFilename string
	ffmpegPath     string
}

func newMergeCmd(a *app) *cobra.Command {
	var o mergeOptions

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge one video and one audio file",
		Long: `Merge a video and an audio file. Inputs that are not named are taken
from the input directory: the first .mp4 as video and the first .wav as
audio, in name order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o.applyDefaults(a)
			req, err := o.resolve()
			if err != nil {
				return err
			}

			res := ffmpegx.NewMerger(o.toolchain(a)).Merge(cmd.Context(), req)
			if !res.OK {
				if res.Diagnostics != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), res.Diagnostics)
				}
				return res.Err
			}
			fmt.Fprintln(cmd.OutOrStdout(), req.OutputPath)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.video, "video", "", "video file (default: first .mp4 in --input-dir)")
	f.StringVar(&o.audio, "audio", "", "audio file (default: first .wav in --input-dir)")
	f.StringVarP(&o.output, "output", "o", "", "output file (default: --output-dir/--output-filename)")
	f.StringVarP(&o.inputDir, "input-dir", "i", "", "folder searched for inputs (default: MERGE_INPUT_DIR or ./input)")
	f.StringVar(&o.outputDir, "output-dir", "", "folder for the output (default: MERGE_OUTPUT_DIR or ./output)")
	f.StringVar(&o.outputFilename, "output-filename", "", "output name (default: MERGE_OUTPUT_FILENAME or merged_media.mp4)")
	f.StringVar(&o.ffmpegPath, "ffmpeg-path", "", "ffmpeg executable if not on PATH; ffprobe is looked up next to it")
	return cmd
}

func (o *mergeOptions) applyDefaults(a *app) {
	if o.inputDir == "" {
		o.inputDir = a.cfg.InputDir
	}
	if o.outputDir == "" {
		o.outputDir = a.cfg.OutputDir
	}
	if o.outputFilename == "" {
		o.outputFilename = a.cfg.OutputFilename
	}
}

func (o *mergeOptions) toolchain(a *app) ffmpegx.Toolchain {
	tc := a.cfg.Toolchain()
	if o.ffmpegPath != "" {
		if _, err := os.Stat(o.ffmpegPath); err != nil {
			logger.Warnf("provided ffmpeg path does not exist: %s", o.ffmpegPath)
		}
		tc.FFmpeg = o.ffmpegPath
	}
	return tc
}

// resolve fills in discovered inputs and the default output, creating the
// input and output folders when they are missing.
func (o *mergeOptions) resolve() (ffmpegx.MergeRequest, error) {
	var req ffmpegx.MergeRequest

	if o.video == "" || o.audio == "" {
		if err := os.MkdirAll(o.inputDir, 0o755); err != nil {
			return req, fmt.Errorf("input dir: %w", err)
		}
	}

	var err error
	if req.VideoPath, err = pick(o.video, o.inputDir, mediafile.Video); err != nil {
		return req, err
	}
	if req.AudioPath, err = pick(o.audio, o.inputDir, mediafile.Audio); err != nil {
		return req, err
	}

	req.OutputPath = o.output
	if req.OutputPath == "" {
		req.OutputPath = filepath.Join(o.outputDir, o.outputFilename)
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return req, fmt.Errorf("output dir: %w", err)
	}
	return req, nil
}

func pick(explicit, dir string, kind mediafile.Kind) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	p, ok, err := mediafile.FindFirst(dir, kind)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no %s %s file found in %s", kind.Ext(), kind, dir)
	}
	logger.Infof("found %s: %s", kind, p)
	return p, nil
}
