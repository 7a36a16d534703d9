package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:     "layout <case-id>",
	Short:   "Show the computed layout of a case",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := cgClient.GetLayout(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(l)
			return nil
		}
		printLayout(os.Stdout, l)
		return nil
	},
}

var svgCmd = &cobra.Command{
	Use:     "svg <case-id>",
	Short:   "Render the layout of a case as SVG",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewID, _ := cmd.Flags().GetString("view")
		out, _ := cmd.Flags().GetString("output")

		svg, err := cgClient.GetLayoutSVG(context.Background(), args[0], viewID)
		if err != nil {
			return err
		}
		if out == "" || out == "-" {
			_, err = os.Stdout.Write(svg)
			return err
		}
		if err := os.WriteFile(out, svg, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", out, len(svg))
		return nil
	},
}

func init() {
	svgCmd.Flags().String("view", "", "apply this view's pan transform and selection")
	svgCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
}
