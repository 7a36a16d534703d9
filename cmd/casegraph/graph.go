package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var casesCmd = &cobra.Command{
	Use:     "cases",
	Short:   "List cases",
	GroupID: "graph",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := cgClient.ListCases(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(cases)
			return nil
		}
		printCases(os.Stdout, cases)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:     "graph <case-id>",
	Short:   "Show the timeline graph of a case",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		raw, _ := cmd.Flags().GetBool("raw")
		if raw {
			resp, err := cgClient.GetTimelineGraph(ctx, args[0])
			if err != nil {
				return err
			}
			printJSON(resp)
			return nil
		}

		rm, err := cgClient.GetRenderModel(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(rm)
			return nil
		}
		printRenderModel(os.Stdout, rm)
		return nil
	},
}

func init() {
	graphCmd.Flags().Bool("raw", false, "print the timeline graph response as JSON")
}
