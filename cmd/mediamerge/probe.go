package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/mediafile"
)

func newProbeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "probe FILE...",
		Short: "Print duration and streams of media files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := a.cfg.Toolchain()
			var failed int
			for _, p := range args {
				si, err := tc.Probe(cmd.Context(), p)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", p, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tkind=%s\tformat=%s\tduration=%.3fs\tvideo=%t\taudio=%t\n",
					p, mediafile.KindOf(p), si.Format, si.Duration, si.HasVideo, si.HasAudio)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be probed", failed, len(args))
			}
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var ffmpegPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that ffmpeg and ffprobe can be found",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := a.cfg.Toolchain()
			if ffmpegPath != "" {
				tc.FFmpeg = ffmpegPath
			}
			if err := tc.EnsureBinariesExist(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Dependency Check: FAIL\n%v\n", err)
				return errors.New("dependency check failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Dependency Check: PASS")
			return nil
		},
	}
	cmd.Flags().StringVar(&ffmpegPath, "ffmpeg-path", "", "ffmpeg executable to check instead of FFMPEG_BIN")
	return cmd
}
