package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/traffic-sim/render"
)

var windowScale float64 // Window scale factor for play

// playCmd opens a window and lets a human drive with the keyboard
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Drive the car yourself (arrows to steer and throttle, L toggles radar, R resets)",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		cfg, err := resolveEnvConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Opening viewer: seed=%d lanes=%d", cfg.Seed, cfg.NumLanes)
		if err := render.Run(cfg, render.Options{Scale: windowScale}); err != nil {
			logrus.Fatalf("Viewer failed: %v", err)
		}
	},
}
