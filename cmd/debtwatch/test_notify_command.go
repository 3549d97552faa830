package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured sinks",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			service := ctx.notifier(out, true)
			if err := service.Info(cmd.Context(), "Test Notification",
				"Debtwatch notifications are working"); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			return nil
		},
	}
}
