package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"debtwatch/internal/workflow"
)

func newWorkflowCommand(ctx *commandContext) *cobra.Command {
	workflowCmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect and drive the guided workflow",
	}

	workflowCmd.AddCommand(newWorkflowStatusCommand(ctx))
	workflowCmd.AddCommand(newWorkflowGotoCommand(ctx))
	workflowCmd.AddCommand(newWorkflowNextCommand(ctx))
	workflowCmd.AddCommand(newWorkflowBackCommand(ctx))
	workflowCmd.AddCommand(newWorkflowCompleteCommand(ctx))
	workflowCmd.AddCommand(newWorkflowResetCommand(ctx))

	return workflowCmd
}

func newWorkflowStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show each step's completion and accessibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, 3)
			for _, step := range orch.Steps() {
				marker := " "
				if step.IsActive {
					marker = ">"
				}
				rows = append(rows, []string{
					marker,
					string(step.Definition.ID),
					step.Definition.Title,
					workflowStepState(step),
					yesNo(step.IsAccessible),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{
					{title: ""},
					{title: "Step"},
					{title: "Title"},
					{title: "State"},
					{title: "Accessible"},
				},
				rows,
			))
			fmt.Fprintf(out, "Progress: %d%%\n", orch.Progress())
			return nil
		},
	}
}

func workflowStepState(step workflow.StepStatus) string {
	switch {
	case step.IsComplete:
		return "complete"
	case step.IsActive:
		return "active"
	default:
		return "pending"
	}
}

func newWorkflowGotoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <step>",
		Short: "Jump to a step if its predecessors are complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := workflow.ParseStepID(args[0])
			if !ok {
				return fmt.Errorf("unknown step %q (expected one of: %s)", args[0], stepNames())
			}

			out := cmd.OutOrStdout()
			orch, err := ctx.orchestrator(printingNavigator(out))
			if err != nil {
				return err
			}
			if !orch.GoToStep(id) {
				return fmt.Errorf("step %q is locked; complete the earlier steps first", id)
			}
			return nil
		},
	}
}

func newWorkflowNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Advance to the next step",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			orch, err := ctx.orchestrator(printingNavigator(out))
			if err != nil {
				return err
			}
			if !orch.NextStep() {
				fmt.Fprintln(out, "Already at the last reachable step")
			}
			return nil
		},
	}
}

func newWorkflowBackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the previous step",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			orch, err := ctx.orchestrator(printingNavigator(out))
			if err != nil {
				return err
			}
			if !orch.PreviousStep() {
				fmt.Fprintln(out, "Already at the first step")
			}
			return nil
		},
	}
}

func newWorkflowCompleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <step>",
		Short: "Mark a step's completion flags by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := workflow.ParseStepID(args[0])
			if !ok {
				return fmt.Errorf("unknown step %q (expected one of: %s)", args[0], stepNames())
			}

			orch, err := ctx.orchestrator(nil)
			if err != nil {
				return err
			}

			patch := make(map[string]any)
			for _, key := range id.CompletionFlags() {
				patch[key] = true
			}
			orch.MarkStepComplete(id, patch)

			fmt.Fprintf(cmd.OutOrStdout(), "Marked %s complete\n", id)
			return nil
		},
	}
}

func newWorkflowResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard all workflow progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, err := ctx.orchestrator(nil)
			if err != nil {
				return err
			}
			if err := orch.ResetWorkflow(); err != nil {
				return fmt.Errorf("reset workflow: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Workflow reset to the import step")
			return nil
		},
	}
}

func printingNavigator(out io.Writer) workflow.Navigator {
	return workflow.NavigatorFunc(func(path string) {
		fmt.Fprintf(out, "Now at %s\n", path)
	})
}

func stepNames() string {
	names := make([]string, 0, 3)
	for _, def := range workflow.Definitions() {
		names = append(names, string(def.ID))
	}
	return strings.Join(names, ", ")
}
