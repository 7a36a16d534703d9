package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/casegraph/internal/ui"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the casegraph server",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := cgClient.Health(context.Background())
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			printJSON(status)
		} else if status.Status == "ok" {
			fmt.Printf("Health: %s (%d open views)\n", ui.RenderOK(status.Status), status.Views)
		} else {
			fmt.Printf("Health: %s\n", ui.RenderWarn(status.Status))
		}

		if status.Status != "ok" {
			return fmt.Errorf("unhealthy: %s", status.Status)
		}
		return nil
	},
}
