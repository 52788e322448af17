package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmra/induction/internal/collab"
	"github.com/kmra/induction/internal/daemon"
	"github.com/kmra/induction/internal/domain"
)

func init() {
	decideCmd.Flags().StringVar(&decideSeed, "seed", "", "Path to a fleet fixture JSON file (overrides config fleet.seed_file)")
	rootCmd.AddCommand(decideCmd)
}

var decideSeed string

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Force one evaluator tick against a fleet snapshot and print the resulting decisions",
	Long: `Builds a Service against the configured (or seeded) fleet, runs one
autonomous-decision-engine evaluation pass, and prints every decision it
produced, without starting the service's loops or HTTP surface.`,
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if decideSeed != "" {
		cfg.Fleet.SeedFile = decideSeed
	}

	var fleet []domain.Trainset
	if cfg.Fleet.SeedFile != "" {
		fleet, err = collab.LoadFleetFixture(cfg.Fleet.SeedFile)
		if err != nil {
			return err
		}
	}

	svc, err := daemon.New(cfg, fleet)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx := context.Background()
	decisions, err := svc.Engine.Tick(ctx)
	if err != nil {
		return fmt.Errorf("evaluator tick: %w", err)
	}

	if len(decisions) == 0 {
		fmt.Println("no decisions produced this tick")
		return nil
	}
	for _, d := range decisions {
		fmt.Printf("%s  %-28s  urgency=%-8s  confidence=%.2f  approval=%v  affected=%v\n",
			d.ID, d.Type, d.Urgency, d.Confidence, d.RequiresHumanApproval, d.AffectedTrainsets)
		fmt.Printf("    %s\n", d.Rationale)
	}
	return nil
}
