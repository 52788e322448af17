package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kmra/induction/internal/daemon"
)

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Base URL of a running induction service (overrides config)")
	rootCmd.AddCommand(statusCmd)
}

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a one-shot snapshot of a running induction service",
	Long:  `Fetch /health and /api/status from a running service and print them.`,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr := statusAddr
	if addr == "" {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		addr = fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port)
	}

	client := &http.Client{Timeout: 5 * time.Second}

	health, err := fetchJSON(client, addr+"/health")
	if err != nil {
		return fmt.Errorf("fetch /health: %w", err)
	}
	status, err := fetchJSON(client, addr+"/api/status")
	if err != nil {
		return fmt.Errorf("fetch /api/status: %w", err)
	}

	out, err := json.MarshalIndent(map[string]interface{}{"health": health, "status": status}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func fetchJSON(client *http.Client, url string) (interface{}, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
