package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dynmech/internal/combat"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Auto-play battles with the enemy policy on both sides",
	Long: `With --n 1 a single battle is played and its full log and record are
written to --out. Larger --n runs a batch on a worker pool and writes the
win-rate summary instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("n")
		workers, _ := cmd.Flags().GetInt("workers")
		maxTurns, _ := cmd.Flags().GetInt("max-turns")
		out, _ := cmd.Flags().GetString("out")
		seed := viper.GetInt64("seed")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.log.Sync()

		if n <= 1 {
			res, err := a.engine.Simulate(a.set.Roster, seed, maxTurns, true, combat.WithLogger(a.log))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, combat.MarshalPretty(res), 0o644); err != nil {
				return err
			}
			winner := string(res.Winner)
			if res.TimedOut {
				winner = "none (turn cap)"
			}
			fmt.Printf("Single battle finished. Winner=%s, turns=%d -> %s\n", winner, res.Turns, out)
			return nil
		}

		sum, err := a.engine.RunBatch(a.set.Roster, seed, n, workers, maxTurns)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, combat.MarshalPretty(sum), 0o644); err != nil {
			return err
		}
		a.log.Info("batch done", zap.Int("runs", sum.Runs), zap.Float64("win_rate", sum.WinRate))
		fmt.Printf("Batch finished. Runs=%d, player win rate=%.1f%%, avg turns=%.1f -> %s\n",
			sum.Runs, sum.WinRate*100, sum.AvgTurns, out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Int("n", 1, "number of battles")
	simulateCmd.Flags().Int("workers", 8, "worker goroutines for batch runs")
	simulateCmd.Flags().Int("max-turns", combat.DefaultMaxTurns, "turn cap per battle")
	simulateCmd.Flags().String("out", "out.json", "output file (single result or batch summary)")
}
