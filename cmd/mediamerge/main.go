package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/config"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
)

type app struct {
	envFile  string
	logLevel string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mediamerge",
		Short: "Merge generated video clips with generated music",
		Long: `mediamerge muxes a video clip and a music track into one file, cut to
the shorter of the two. The video stream is copied and the audio is
re-encoded to AAC.

Examples:
  mediamerge merge                         # first .mp4 + first .wav in ./input
  mediamerge merge --video clip.mp4 --audio music.wav --output out.mp4
  mediamerge probe out.mp4
  mediamerge worker --env-file configs/.env.production`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default: LOG_LEVEL or info)")

	root.AddCommand(
		newMergeCmd(a),
		newProbeCmd(a),
		newCheckCmd(a),
		newWorkerCmd(a),
		newSubmitCmd(a),
	)
	return root
}

func (a *app) load() error {
	cfg, err := config.LoadAll(a.envFile)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	// LOG_LEVEL may have come from the dotenv file.
	logger.SetLevelFromEnv()
	if a.logLevel != "" {
		l, err := logger.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(l)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
