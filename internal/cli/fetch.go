package cli

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run a single fetch cycle and print the result as JSON",
		RunE:  runFetch,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := newApp(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.pipeline.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch cycle: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"cycle_id": result.CycleID,
		"inserted": result.Inserted,
		"data":     result.Draw,
	})
}
