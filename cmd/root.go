package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/supplychain-sim/supplychain-sim/sim"
	"github.com/supplychain-sim/supplychain-sim/sim/policy"
	"github.com/supplychain-sim/supplychain-sim/sim/topology"
	"github.com/supplychain-sim/supplychain-sim/sim/trace"
)

var (
	// CLI flags for the episode driver
	topologyPath   string // Path to the YAML scenario spec
	ticks          int64  // Episode length in ticks
	episodes       int    // Number of episodes to run (reset between)
	seed           int64  // Master seed override (-1 = use the spec's seed)
	logLevel       string // Log verbosity level
	traceDBPath    string // SQLite trace database path ("" = tracing off)
	targetLevel    int64  // Base-stock order-up-to level for the baseline policy
	productionRate int64  // Constant production rate for the baseline policy
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "supplychain-sim",
	Short: "Discrete-event simulator for multi-facility supply-chain networks",
}

// runCmd executes episodes using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run supply-chain episodes under the baseline policy",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if topologyPath == "" {
			logrus.Fatalf("Topology spec not provided. Exiting simulation.")
		}

		spec, err := topology.Load(topologyPath)
		if err != nil {
			logrus.Fatalf("unable to load topology spec: %v", err)
		}
		if seed >= 0 {
			spec.Seed = seed
		}

		world, err := topology.Build(spec)
		if err != nil {
			logrus.Fatalf("unable to build world: %v", err)
		}

		logrus.Infof("Starting simulation %q with %d facilities, horizon=%d ticks, episodes=%d, seed=%d",
			spec.Name, len(spec.Facilities), ticks, episodes, spec.Seed)

		var sink *trace.SQLiteSink
		if traceDBPath != "" {
			sink, err = trace.OpenSQLiteSink(traceDBPath, spec.Name)
			if err != nil {
				logrus.Fatalf("unable to open trace db: %v", err)
			}
			defer sink.Close()
			logrus.Infof("Tracing to %s (run %s)", traceDBPath, sink.RunID())
		}

		s := sim.NewSimulator(world, ticks)
		s.Policy = &policy.BaseStockPolicy{
			TargetLevel:    targetLevel,
			ProductionRate: productionRate,
		}
		if sink != nil {
			s.Trace = trace.NewEpisodeTrace()
		}

		for episode := 0; episode < episodes; episode++ {
			metrics := s.RunEpisode()
			metrics.Print()

			if sink != nil {
				summary := trace.Summary{
					Episode:           episode,
					Ticks:             metrics.Ticks,
					OrdersPlaced:      metrics.OrdersPlaced,
					QuantityOrdered:   metrics.QuantityOrdered,
					QuantityDelivered: metrics.QuantityDelivered,
					OrdersAbandoned:   metrics.OrdersAbandoned,
					QuantityAbandoned: metrics.QuantityAbandoned,
					QuantitySold:      metrics.QuantitySold,
					TotalDemand:       metrics.TotalDemand,
					TransportCost:     metrics.TransportCost,
				}
				if err := sink.WriteEpisode(s.Trace, summary); err != nil {
					logrus.Fatalf("unable to persist episode %d: %v", episode, err)
				}
			}

			s.Reset()
		}

		logrus.Info("Simulation complete.")
	},
}

func init() {
	runCmd.Flags().StringVar(&topologyPath, "topology", "", "Path to the YAML topology spec (required)")
	runCmd.Flags().Int64Var(&ticks, "ticks", 1000, "Episode length in ticks")
	runCmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to run")
	runCmd.Flags().Int64Var(&seed, "seed", -1, "Master seed override (-1 keeps the spec's seed)")
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&traceDBPath, "trace-db", "", "SQLite trace database path (empty disables tracing)")
	runCmd.Flags().Int64Var(&targetLevel, "target-level", 50, "Base-stock order-up-to level")
	runCmd.Flags().Int64Var(&productionRate, "production-rate", 10, "Constant production rate for manufacture units")

	rootCmd.AddCommand(runCmd)
}

// Execute runs the root command; on error the process exits non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
