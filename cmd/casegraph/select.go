package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:     "select <case-id> <node-id>",
	Short:   "Show highlight and details for a node",
	GroupID: "graph",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeType, _ := cmd.Flags().GetString("type")
		sel, err := cgClient.GetSelection(context.Background(), args[0], args[1], nodeType)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(sel)
			return nil
		}
		printSelection(os.Stdout, sel)
		return nil
	},
}

func init() {
	selectCmd.Flags().String("type", "", "node type (meeting, task, stakeholder); defaults to the node's own")
}
