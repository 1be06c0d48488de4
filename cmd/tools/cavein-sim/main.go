package main

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/annel0/mmo-cavein/internal/cavein"
	"github.com/annel0/mmo-cavein/internal/config"
	_ "github.com/annel0/mmo-cavein/internal/world/block/implementations"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	seed       int64
	coreConfig cavein.Config

	rootCmd = &cobra.Command{
		Use:   "cavein-sim",
		Short: "Offline scenarios for the cave-in simulation",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			coreConfig = cfg.CaveIn.ToCore()
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			return nil
		},
	}

	trialsCmd = &cobra.Command{
		Use:   "trials",
		Short: "Measure collapse frequency for a voxel at a distance from a strength-1 support",
		RunE:  runTrialsCommand,
	}

	planeCmd = &cobra.Command{
		Use:   "plane",
		Short: "Gather a collapse in a large unsupported plane and check it stays bounded",
		RunE:  runPlaneCommand,
	}

	columnCmd = &cobra.Command{
		Use:   "column",
		Short: "Evaluate an unstable column standing on a support block",
		RunE:  runColumnCommand,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config (defaults if empty)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "Random seed (0 = time based)")

	rootCmd.AddCommand(trialsCmd)
	trialsCmd.Flags().Int("distance", 1, "Horizontal distance to the support")
	trialsCmd.Flags().Int("trials", 10000, "Number of trials")

	rootCmd.AddCommand(planeCmd)
	planeCmd.Flags().Int("size", 50, "Plane edge length")

	rootCmd.AddCommand(columnCmd)
	columnCmd.Flags().String("support", "timber", "Support block: stone, timber, pillar")
	columnCmd.Flags().Int("height", 6, "Column height")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func runTrialsCommand(cmd *cobra.Command, args []string) error {
	distance, _ := cmd.Flags().GetInt("distance")
	trials, _ := cmd.Flags().GetInt("trials")

	report, err := runTrials(coreConfig, distance, trials, seed)
	if err != nil {
		return err
	}

	fmt.Printf("🎲 %d trials, distance %d, seed %d\n", report.Trials, report.Distance, seed)
	fmt.Printf("   instability: %.3f\n", report.Instability)
	fmt.Printf("   expected:    %.4f\n", report.Expected)
	fmt.Printf("   observed:    %.4f (%d collapses)\n", report.Observed(), report.Collapses)
	if report.Expected > 0 {
		fmt.Printf("   deviation:   %+.1f%%\n", (report.Observed()/report.Expected-1)*100)
	}
	return nil
}

func runPlaneCommand(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetInt("size")

	report, err := runPlane(coreConfig, size, seed)
	if err != nil {
		return err
	}

	ev := report.Evaluation
	fmt.Printf("🧱 Plane %dx%d, seed %d\n", report.Size, report.Size, seed)
	fmt.Printf("   search:  visited=%d candidates=%d unconnected=%v instability=%.2f\n",
		ev.Visited, len(ev.Candidates), ev.Unconnected, ev.Instability)
	fmt.Printf("   gather:  blocks=%d cap=%d depth=%d visited=%d\n",
		len(report.Gather.Positions), report.Gather.Cap, report.Gather.MaxDepth, report.Gather.Visited)
	fmt.Printf("   elapsed: %v\n", report.Elapsed)
	if len(report.Gather.Positions) > report.Gather.Cap {
		return fmt.Errorf("gathered %d blocks over cap %d", len(report.Gather.Positions), report.Gather.Cap)
	}
	fmt.Println("✅ Gather stayed within its cap")
	return nil
}

func runColumnCommand(cmd *cobra.Command, args []string) error {
	support, _ := cmd.Flags().GetString("support")
	height, _ := cmd.Flags().GetInt("height")

	rows, err := runColumn(coreConfig, support, height)
	if err != nil {
		return err
	}

	fmt.Printf("🏛️  Column of %d on %s\n", height, support)
	fmt.Printf("   %-16s %8s %11s %11s\n", "pos", "strength", "unconnected", "instability")
	for _, r := range rows {
		inst := fmt.Sprintf("%.3f", r.Instability)
		if math.IsInf(r.Instability, 0) {
			inst = "inf"
		}
		fmt.Printf("   %-16v %8d %11v %11s\n", r.Pos, r.Strength, r.Unconnected, inst)
	}
	return nil
}
