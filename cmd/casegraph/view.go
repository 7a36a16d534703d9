package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/alfredjeanlab/casegraph/internal/client"
	"github.com/alfredjeanlab/casegraph/internal/timeline"
	"github.com/alfredjeanlab/casegraph/internal/viewstate"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:     "view",
	Short:   "Open and drive interactive timeline views",
	GroupID: "views",
}

func showView(v *client.View) {
	if jsonOutput {
		printJSON(v)
		return
	}
	printView(os.Stdout, v)
}

var viewOpenCmd = &cobra.Command{
	Use:   "open <case-id>",
	Short: "Open a view of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewportStr, _ := cmd.Flags().GetString("viewport")
		viewport, err := parseSize(viewportStr)
		if err != nil {
			return err
		}
		v, err := cgClient.OpenView(context.Background(), args[0], viewport)
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewShowCmd = &cobra.Command{
	Use:   "show <view-id>",
	Short: "Show a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cgClient.GetView(context.Background(), args[0])
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open views",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, _ := cmd.Flags().GetString("case")
		views, err := cgClient.ListViews(context.Background(), caseID)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(views)
			return nil
		}
		printViewList(os.Stdout, views)
		return nil
	},
}

var viewCloseCmd = &cobra.Command{
	Use:   "close <view-id>",
	Short: "Close a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cgClient.CloseView(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("view %s closed\n", args[0])
		return nil
	},
}

var viewCaseCmd = &cobra.Command{
	Use:   "case <view-id> <case-id>",
	Short: "Point a view at another case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cgClient.SwitchCase(context.Background(), args[0], args[1])
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewResizeCmd = &cobra.Command{
	Use:   "resize <view-id> <WIDTHxHEIGHT>",
	Short: "Change the viewport size of a view",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		viewport, err := parseSize(args[1])
		if err != nil {
			return err
		}
		v, err := cgClient.ResizeView(context.Background(), args[0], viewport)
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewWheelCmd = &cobra.Command{
	Use:   "wheel <view-id> <delta-y>",
	Short: "Zoom a view as a wheel event would",
	Long: `Zoom a view as a wheel event would.

A negative delta zooms in, a positive delta zooms out. The focus point stays
fixed on screen. Put -- before a negative delta so it is not read as a flag.
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deltaY, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid delta %q: %w", args[1], err)
		}
		focusStr, _ := cmd.Flags().GetString("focus")
		focus, err := parsePoint(focusStr)
		if err != nil {
			return err
		}
		v, err := cgClient.Wheel(context.Background(), args[0], deltaY, focus.X, focus.Y)
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewSelectCmd = &cobra.Command{
	Use:   "select <view-id> <node-id>",
	Short: "Select a node in a view",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		anchorStr, _ := cmd.Flags().GetString("anchor")
		anchor, err := parsePoint(anchorStr)
		if err != nil {
			return err
		}
		v, err := cgClient.Select(context.Background(), args[0], args[1], anchor)
		if err != nil {
			return err
		}
		showView(v)
		if !jsonOutput && v.Selected != nil {
			fmt.Println()
			printSelection(os.Stdout, v.Selected)
		}
		return nil
	},
}

var viewClearCmd = &cobra.Command{
	Use:   "clear <view-id>",
	Short: "Clear the selection of a view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cgClient.ClearSelection(context.Background(), args[0])
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

var viewDragCmd = &cobra.Command{
	Use:   "drag <view-id>",
	Short: "Drag the canvas or the details overlay",
	Long: `Drag the canvas or the details overlay.

Sends a pointer down at --from, a move to --to and a pointer up, the same
sequence a mouse drag produces.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		pointerID, _ := cmd.Flags().GetInt("pointer")

		from, err := parsePoint(fromStr)
		if err != nil {
			return err
		}
		to, err := parsePoint(toStr)
		if err != nil {
			return err
		}

		v, err := dragSequence(context.Background(), cgClient, args[0], target, pointerID, from, to)
		if err != nil {
			return err
		}
		showView(v)
		return nil
	},
}

// dragSequence sends down, move and up for one pointer and returns the view
// after the last event.
func dragSequence(ctx context.Context, c client.CaseGraphClient, viewID, target string, pointerID int, from, to timeline.Point) (*client.View, error) {
	steps := []viewstate.PointerEvent{
		{Kind: viewstate.PointerDown, Target: target, PointerID: pointerID, ClientX: from.X, ClientY: from.Y},
		{Kind: viewstate.PointerMove, Target: target, PointerID: pointerID, ClientX: to.X, ClientY: to.Y},
		{Kind: viewstate.PointerUp, Target: target, PointerID: pointerID, ClientX: to.X, ClientY: to.Y},
	}
	var v *client.View
	for _, ev := range steps {
		var err error
		v, err = c.Pointer(ctx, viewID, ev)
		if err != nil {
			return nil, fmt.Errorf("pointer %s: %w", ev.Kind, err)
		}
	}
	return v, nil
}

func init() {
	viewOpenCmd.Flags().String("viewport", "1280x800", "viewport WIDTHxHEIGHT")
	viewListCmd.Flags().String("case", "", "only views of this case")
	viewWheelCmd.Flags().String("focus", "0,0", "focus point x,y in viewport coordinates")
	viewSelectCmd.Flags().String("anchor", "0,0", "anchor point x,y of the clicked node")
	viewDragCmd.Flags().String("target", viewstate.TargetCanvas, "what to drag (canvas or overlay)")
	viewDragCmd.Flags().String("from", "0,0", "start point x,y")
	viewDragCmd.Flags().String("to", "0,0", "end point x,y")
	viewDragCmd.Flags().Int("pointer", 1, "pointer id")

	viewCmd.AddCommand(viewOpenCmd)
	viewCmd.AddCommand(viewShowCmd)
	viewCmd.AddCommand(viewListCmd)
	viewCmd.AddCommand(viewCloseCmd)
	viewCmd.AddCommand(viewCaseCmd)
	viewCmd.AddCommand(viewResizeCmd)
	viewCmd.AddCommand(viewWheelCmd)
	viewCmd.AddCommand(viewSelectCmd)
	viewCmd.AddCommand(viewClearCmd)
	viewCmd.AddCommand(viewDragCmd)
}
