package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PancakeLord3000/Boid-Simulation/internal/logging"
	"github.com/PancakeLord3000/Boid-Simulation/pkg/simulation"
)

var headlessCmd = &cobra.Command{
	Use:   "headless",
	Short: "Run the simulation without a window",
	Long: `headless runs the simulation loop for the configured duration and logs
flock statistics once per simulated second. Useful for benchmarking the
physics and for soak-testing parameter sets on machines without a display.`,
	RunE: runHeadless,
}

func init() {
	rootCmd.AddCommand(headlessCmd)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	log := logging.L()
	ctx := cmd.Context()

	ctrl := simulation.NewController(cfg.FPS, cfg.Seed, log)
	budget := cfg.FPS * cfg.DurationSeconds()
	ctrl.Start(ctx, cfg.Params(), budget)
	defer ctrl.Stop()

	log.Info("headless run",
		zap.Int("boids", cfg.NumBoids),
		zap.Int("fps", cfg.FPS),
		zap.Int("seconds", cfg.DurationSeconds()))

	for {
		select {
		case <-ctx.Done():
			log.Info("headless run interrupted")
			return nil
		case <-ctrl.Done():
			log.Info("headless run finished")
			return nil
		case s := <-ctrl.Snapshots():
			if s.Tick > 0 && s.Tick%cfg.FPS == 0 {
				log.Info("flock state",
					zap.Int("tick", s.Tick),
					zap.Int("boids", len(s.Boids)),
					zap.Int("groups", s.Groups))
			}
		}
	}
}
