package main

import (
	"fmt"

	"github.com/fyrsmithlabs/deployd/internal/config"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <workflow-id>",
	Short: "Roll back an in-flight workflow",
	Long: `Rollback abandons a suspended or in-flight workflow and records the
outcome as a failure pattern. Completed workflows cannot be rolled
back.`,
	Args: cobra.ExactArgs(1),
	RunE: runRollback,
}

func runRollback(cmd *cobra.Command, args []string) error {
	a, err := newApp(func(c *config.Config) { c.Workflow.Interactive = true })
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := a.journal.Load(args[0])
	if err != nil {
		return renderFailure(cmd, a, err)
	}

	switch entry.Phase {
	case workflow.PhaseRolledBack:
		// Repeat rollbacks are a no-op success.
		return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
			"workflowId": entry.WorkflowID,
			"phase":      entry.Phase,
		}))
	case workflow.PhaseCompleted, workflow.PhaseFailed:
		return renderFailure(cmd, a, fmt.Errorf("%w: cannot roll back a %s workflow", workflow.ErrIllegalTransition, entry.Phase))
	}

	sessionID, res, err := replaySession(cmd, a, entry)
	if err != nil {
		return finalizeFailure(cmd, a, sessionID, entry, err)
	}
	if res.Phase == workflow.PhaseCompleted {
		return renderFailure(cmd, a, fmt.Errorf("%w: workflow completed during replay", workflow.ErrIllegalTransition))
	}

	orch := a.registry.Orchestrator()
	if err := orch.Rollback(cmd.Context(), sessionID); err != nil {
		return renderFailure(cmd, a, err)
	}

	view, err := orch.Session(sessionID)
	if err != nil {
		return err
	}

	entry.Phase = view.Phase
	entry.Suspended = false
	entry.Questions = nil
	if err := a.journal.Save(entry); err != nil {
		return err
	}
	mirrorOutcome(cmd.Context(), a, entry.WorkflowID, view, "rolled back")

	return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
		"workflowId": entry.WorkflowID,
		"phase":      view.Phase,
	}))
}
