package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kmra/induction/internal/collab"
	"github.com/kmra/induction/internal/daemon"
	"github.com/kmra/induction/internal/domain"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveSeed, "seed", "", "Path to a fleet fixture JSON file (overrides config fleet.seed_file)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
	serveSeed string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the induction service",
	Long:  `Start the decision engine, scheduler, and ambient HTTP surface.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}

	if serveHost != "" {
		cfg.API.Host = serveHost
	}
	if servePort > 0 {
		cfg.API.Port = servePort
	}
	if serveSeed != "" {
		cfg.Fleet.SeedFile = serveSeed
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

	return svc.Serve(context.Background())
}
