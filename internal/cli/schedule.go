package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmra/induction/internal/collab"
	"github.com/kmra/induction/internal/daemon"
	"github.com/kmra/induction/internal/domain"
	"github.com/kmra/induction/internal/optimizer"
)

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSeed, "seed", "", "Path to a fleet fixture JSON file (overrides config fleet.seed_file)")
	scheduleCmd.Flags().StringVar(&scheduleBulk, "bulk", "", "Path to a BulkOptimizationRequest fixture JSON file; runs it through the optimizer directly and skips the scheduler")
	rootCmd.AddCommand(scheduleCmd)
}

var (
	scheduleSeed string
	scheduleBulk string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Force one scheduling tick and print the resulting schedule",
	Long: `Builds a Service against the configured (or seeded) fleet and runs one
scheduling-loop pass, without starting the service's loops or HTTP surface.

With --bulk, a named list of optimization requests is read from a fixture
file and run sequentially through the Assignment Optimizer directly,
bypassing the scheduling-need predicate and confidence routing.`,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if scheduleSeed != "" {
		cfg.Fleet.SeedFile = scheduleSeed
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

	if scheduleBulk != "" {
		return runBulkOptimization(ctx, svc, scheduleBulk)
	}

	trainsets, err := svc.Fleet.Fleet(ctx)
	if err != nil {
		return fmt.Errorf("read fleet: %w", err)
	}
	views := make([]domain.TrainsetView, len(trainsets))
	for i, t := range trainsets {
		views[i] = svc.Engine.Decorate(t)
	}

	sched, needed, err := svc.Scheduler.RunOnce(ctx, views)
	if err != nil {
		return fmt.Errorf("generate schedule: %w", err)
	}
	if !needed {
		fmt.Println("scheduling-need predicate did not trigger this tick")
		return nil
	}
	fmt.Printf("schedule %s  type=%s  confidence=%.2f  trainsets=%d  routed=%s\n",
		sched.ID, sched.Type, sched.Confidence, len(sched.Result.Assignment), sched.Routed)
	return nil
}

func runBulkOptimization(ctx context.Context, svc *daemon.Service, path string) error {
	bulk, err := collab.LoadBulkOptimizationFixture(path)
	if err != nil {
		return err
	}

	trainsets, err := svc.Fleet.Fleet(ctx)
	if err != nil {
		return fmt.Errorf("read fleet: %w", err)
	}
	views := make([]domain.TrainsetView, len(trainsets))
	for i, t := range trainsets {
		views[i] = svc.Engine.Decorate(t)
	}

	fmt.Printf("bulk optimization %q: %d request(s)\n", bulk.Name, len(bulk.Requests))
	for i, req := range bulk.Requests {
		result, err := optimizer.Run(ctx, req, views)
		if err != nil {
			fmt.Printf("  [%d] %s: error: %v\n", i, req.Algorithm, err)
			continue
		}
		fmt.Printf("  [%d] %s: status=%s score=%.2f assigned=%d\n",
			i, req.Algorithm, result.Status, result.Score, len(result.Assignment))
	}
	return nil
}
