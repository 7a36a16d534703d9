package main

import (
	"context"
	"os"

	"github.com/alfredjeanlab/casegraph/internal/client"
	"github.com/alfredjeanlab/casegraph/internal/model"
	"github.com/spf13/cobra"
)

var placementCmd = &cobra.Command{
	Use:     "placement",
	Short:   "Compute where the details overlay would be placed",
	GroupID: "graph",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		anchorStr, _ := cmd.Flags().GetString("anchor")
		viewportStr, _ := cmd.Flags().GetString("viewport")
		sizeStr, _ := cmd.Flags().GetString("size")
		preferredStr, _ := cmd.Flags().GetString("preferred")

		req := &client.PlacementRequest{}
		var err error
		if req.Anchor, err = parsePoint(anchorStr); err != nil {
			return err
		}
		if req.Viewport, err = parseSize(viewportStr); err != nil {
			return err
		}
		if sizeStr != "" {
			size, err := parseSize(sizeStr)
			if err != nil {
				return err
			}
			req.Size = &size
		}
		if preferredStr != "" {
			p, err := parsePoint(preferredStr)
			if err != nil {
				return err
			}
			req.Preferred = &model.OverlayPosition{Left: p.X, Top: p.Y}
		}

		p, err := cgClient.ComputePlacement(context.Background(), req)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
			return nil
		}
		printPlacement(os.Stdout, p)
		return nil
	},
}

func init() {
	placementCmd.Flags().String("anchor", "0,0", "anchor point x,y")
	placementCmd.Flags().String("viewport", "1280x800", "viewport WIDTHxHEIGHT")
	placementCmd.Flags().String("size", "", "overlay WIDTHxHEIGHT (default 360x272)")
	placementCmd.Flags().String("preferred", "", "remembered position left,top")
}
