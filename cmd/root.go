// Package cmd holds the CLI surface: the root command opens the interactive
// window, subcommands cover headless runs and version info. Configuration is
// layered defaults < config file < BOIDS_* environment < flags.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PancakeLord3000/Boid-Simulation/internal/app"
	"github.com/PancakeLord3000/Boid-Simulation/internal/logging"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/simulation"
)

var (
	cfgFile string
	cfg     *simulation.Config
)

var rootCmd = &cobra.Command{
	Use:   "boids",
	Short: "3D boids flocking simulation",
	Long: `boids runs an interactive 3D flocking simulation: steer the flock with
the control panel, orbit the camera with the mouse, and optionally record
the run to an mp4 video.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logging.Init(logging.Config{
			Level:      cfg.LogLevel,
			File:       cfg.LogFile,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), cfg, logging.L())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a JSON config file")
	rootCmd.PersistentFlags().Int("num-boids", 0, "initial flock population")
	rootCmd.PersistentFlags().Int("fps", 0, "simulation ticks per second")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed (0 picks a time-based seed per run)")
	rootCmd.PersistentFlags().Bool("record", false, "record the run to a video")
	rootCmd.PersistentFlags().String("duration", "", "recording duration in seconds")
	rootCmd.PersistentFlags().String("output-dir", "", "directory for video artifacts")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	cobra.CheckErr(viper.BindPFlag("num_boids", rootCmd.PersistentFlags().Lookup("num-boids")))
	cobra.CheckErr(viper.BindPFlag("fps", rootCmd.PersistentFlags().Lookup("fps")))
	cobra.CheckErr(viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed")))
	cobra.CheckErr(viper.BindPFlag("record", rootCmd.PersistentFlags().Lookup("record")))
	cobra.CheckErr(viper.BindPFlag("duration", rootCmd.PersistentFlags().Lookup("duration")))
	cobra.CheckErr(viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir")))
	cobra.CheckErr(viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")))
}

// loadConfig assembles the effective configuration. A config file is first
// validated against the JSON schema, so schema errors surface with field
// paths instead of silently producing zero values.
func loadConfig(cmd *cobra.Command) (*simulation.Config, error) {
	v := viper.GetViper()

	for key, val := range configDefaults() {
		v.SetDefault(key, val)
	}

	v.SetEnvPrefix("BOIDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		if _, err := simulation.LoadConfig(cfgFile); err != nil {
			return nil, err
		}
		v.SetConfigFile(cfgFile)
		v.SetConfigType("json")
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	c := new(simulation.Config)
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	return c, nil
}

// configDefaults flattens DefaultConfig into viper keys, so flags and
// environment variables override the same baseline the config file does.
func configDefaults() map[string]any {
	d := simulation.DefaultConfig()
	return map[string]any{
		"num_boids":        d.NumBoids,
		"boid_size":        d.BoidSize,
		"separation":       d.Separation,
		"cohesion":         d.Cohesion,
		"alignment":        d.Alignment,
		"max_speed":        d.MaxSpeed,
		"max_force":        d.MaxForce,
		"cube_size":        d.CubeSize,
		"center_alignment": d.CenterAlignment,
		"fps":              d.FPS,
		"seed":             d.Seed,
		"window_width":     d.WindowWidth,
		"window_height":    d.WindowHeight,
		"record":           d.Record,
		"duration":         d.Duration,
		"output_dir":       d.OutputDir,
		"log_level":        d.LogLevel,
		"log_file":         d.LogFile,
	}
}

// Execute runs the CLI with the given context; cancellation propagates into
// the running simulation.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
