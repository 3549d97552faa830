package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"debtwatch/internal/config"
	"debtwatch/internal/upload"
	"debtwatch/internal/workflow"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload CSV files to the analytics backend",
	}

	uploadCmd.AddCommand(newUploadTicketsCommand(ctx))
	uploadCmd.AddCommand(newUploadUsageCommand(ctx))

	return uploadCmd
}

func newUploadTicketsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tickets <file>",
		Short: "Upload a ticket CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(ctx, cmd, upload.TypeTickets, args[0], "", false)
		},
	}
}

func newUploadUsageCommand(ctx *commandContext) *cobra.Command {
	var organization string
	var force bool

	cmd := &cobra.Command{
		Use:   "usage <file>",
		Short: "Upload a usage CSV export for an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(ctx, cmd, upload.TypeUsage, args[0], organization, force)
		},
	}

	cmd.Flags().StringVarP(&organization, "organization", "o", "", "Organization the usage data belongs to")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite usage data uploaded within the last 30 days")
	return cmd
}

func runUpload(ctx *commandContext, cmd *cobra.Command, uploadType upload.Type, path, organization string, force bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	store, err := ctx.ensureStore()
	if err != nil {
		return err
	}
	api, err := ctx.apiClient()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := colorizeWriter(out)

	if uploadType == upload.TypeUsage && strings.TrimSpace(organization) == "" {
		organization = cfg.Upload.DefaultOrganization
	}

	pipeline := upload.NewPipeline(uploadType, api,
		upload.WithLogger(logger),
		upload.WithNotifier(ctx.uploadNotifier(out)),
		upload.WithHistory(store),
		upload.WithConflictPolicy(conflictPolicy(cfg)),
	)

	file, err := upload.FileInfoFromPath(path)
	if err != nil {
		return err
	}
	if err := pipeline.SelectFile(file); err != nil {
		return err
	}

	if uploadType == upload.TypeUsage && !cfg.ConflictBlocks() && !force {
		if warning := pipeline.CheckConflict(cmd.Context(), organization); warning != nil {
			fmt.Fprintln(out, renderStatusLine("Conflict", statusWarn, warning.Message, colorize))
		}
	}

	if err := pipeline.Start(cmd.Context(), organization, force); err != nil {
		var blocked *upload.ConflictBlockedError
		if errors.As(err, &blocked) {
			return fmt.Errorf("%s (re-run with --force to overwrite)", blocked.Warning.Message)
		}
		return err
	}

	session, err := pipeline.Await(cmd.Context())
	if err != nil {
		return err
	}
	if session.Status != upload.StatusComplete {
		return errors.New(session.Message)
	}

	printUploadSummary(out, session, organization, colorize)
	return recordWorkflowProgress(ctx, cmd, uploadType, session)
}

func conflictPolicy(cfg *config.Config) upload.ConflictPolicy {
	if cfg.ConflictBlocks() {
		return upload.PolicyBlock
	}
	return upload.PolicyAdvisory
}

func printUploadSummary(out io.Writer, session upload.Session, organization string, colorize bool) {
	fmt.Fprintln(out, renderStatusLine("Upload", statusOK, session.Message, colorize))
	if session.SelectedFile != nil {
		size := humanize.Bytes(uint64(session.SelectedFile.Size))
		fmt.Fprintln(out, renderStatusLine("File", statusInfo,
			fmt.Sprintf("%s (%s)", session.SelectedFile.Name, size), colorize))
	}
	if organization != "" {
		fmt.Fprintln(out, renderStatusLine("Organization", statusInfo, organization, colorize))
	}
	if session.Result != nil {
		fmt.Fprintln(out, renderStatusLine("Rows inserted", statusInfo,
			fmt.Sprintf("%d", session.Result.ValidRows), colorize))
		for _, rowErr := range session.Result.Errors {
			fmt.Fprintln(out, renderStatusLine("Row error", statusWarn, rowErr, colorize))
		}
	}
}

// recordWorkflowProgress merges the completed upload into the import step's
// data so subsequent workflow commands see the step unlock. When the merge
// completes the import step, a workflow notification announces it.
func recordWorkflowProgress(ctx *commandContext, cmd *cobra.Command, uploadType upload.Type, session upload.Session) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	orch, err := ctx.orchestrator(nil)
	if err != nil {
		return err
	}
	wasComplete := orch.IsComplete(workflow.StepImport)

	rows := 0
	if session.Result != nil {
		rows = session.Result.ValidRows
	}

	switch uploadType {
	case upload.TypeTickets:
		orch.UpdateStepData(workflow.StepImport, map[string]any{
			workflow.KeyTicketsUploaded: true,
			workflow.KeyTicketCount:     rows,
		})
	case upload.TypeUsage:
		orch.UpdateStepData(workflow.StepImport, map[string]any{
			workflow.KeyUsageUploaded:    true,
			workflow.KeyUsageRecordCount: rows,
		})
	}

	if !wasComplete && orch.IsComplete(workflow.StepImport) {
		notifier := ctx.notifier(cmd.OutOrStdout(), cfg.Notifications.Workflow)
		_ = notifier.Success(cmd.Context(), "Import Complete",
			"Both CSV files are uploaded; the configuration step is unlocked")
	}
	return nil
}
