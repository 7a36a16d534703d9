package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/casegraph/internal/client"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/spf13/cobra"
)

var overlayCmd = &cobra.Command{
	Use:     "overlay",
	Short:   "Manage the remembered overlay position of a case",
	GroupID: "graph",
}

var overlayShowCmd = &cobra.Command{
	Use:   "show <case-id>",
	Short: "Show the remembered overlay position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := cgClient.GetOverlayPosition(context.Background(), args[0])
		if client.IsNotFound(err) {
			fmt.Println("no remembered position")
			return nil
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(pos)
			return nil
		}
		printOverlayPosition(os.Stdout, pos)
		return nil
	},
}

var overlaySetCmd = &cobra.Command{
	Use:   "set <case-id> <left,top>",
	Short: "Remember an overlay position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := parsePoint(args[1])
		if err != nil {
			return err
		}
		pos, err := cgClient.SetOverlayPosition(context.Background(), args[0], model.OverlayPosition{Left: p.X, Top: p.Y})
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(pos)
			return nil
		}
		printOverlayPosition(os.Stdout, pos)
		return nil
	},
}

var overlayClearCmd = &cobra.Command{
	Use:   "clear <case-id>",
	Short: "Forget the remembered overlay position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cgClient.DeleteOverlayPosition(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Println("overlay position cleared")
		return nil
	},
}

func init() {
	overlayCmd.AddCommand(overlayShowCmd)
	overlayCmd.AddCommand(overlaySetCmd)
	overlayCmd.AddCommand(overlayClearCmd)
}
