package main

import (
	"errors"
	"fmt"

	"github.com/fyrsmithlabs/deployd/internal/config"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	deployRequirements string
	deployInteractive  bool
	deployNoInput      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy <app-name>",
	Short: "Deploy an application through the phased workflow",
	Long: `Deploy drives an application through discovery, planning, validation,
and deployment. In interactive mode the planner may pause with
questions; answers are read from stdin unless --no-input is given, in
which case the suspended workflow is saved and can be resumed with
"deployd continue".

Examples:
  # Deploy non-interactively
  deployd deploy shop -r "web server with postgres database"

  # Interactive deploy, answering questions inline
  deployd deploy shop -r "web server" --interactive

  # Suspend instead of prompting, resume later
  deployd deploy shop -r "web server" --interactive --no-input`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().StringVarP(&deployRequirements, "requirements", "r", "", "deployment requirements in plain language (required)")
	deployCmd.Flags().BoolVar(&deployInteractive, "interactive", false, "allow the planner to ask questions")
	deployCmd.Flags().BoolVar(&deployNoInput, "no-input", false, "never prompt; suspend instead and save the session")
	_ = deployCmd.MarkFlagRequired("requirements")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	a, err := newApp(func(c *config.Config) {
		if cmd.Flags().Changed("interactive") {
			c.Workflow.Interactive = deployInteractive
		}
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	orch := a.registry.Orchestrator()

	id, err := orch.InitializeWorkflow(ctx, workflow.StartRequest{
		AppName:      args[0],
		Requirements: deployRequirements,
	})
	if err != nil {
		return renderFailure(cmd, a, err)
	}

	entry := &journalEntry{
		WorkflowID:   id,
		AppName:      args[0],
		Requirements: deployRequirements,
		Phase:        workflow.PhaseDiscovery,
		Responses:    map[string]any{},
	}

	return driveWorkflow(cmd, a, id, entry)
}

// driveWorkflow runs a session to a terminal phase, prompting through
// suspensions unless --no-input parks the session in the journal. Used
// by both deploy and continue.
func driveWorkflow(cmd *cobra.Command, a *app, sessionID string, entry *journalEntry) error {
	ctx := cmd.Context()
	orch := a.registry.Orchestrator()

	res, runErr := runWorkflow(ctx, a, sessionID)
	for runErr == nil && res.Suspended {
		if deployNoInput {
			entry.Phase = res.Phase
			entry.Suspended = true
			entry.Questions = res.Questions
			if err := a.journal.Save(entry); err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
				"workflowId": entry.WorkflowID,
				"phase":      res.Phase,
				"suspended":  true,
				"questions":  res.Questions,
			}))
		}

		responses, err := promptAnswers(cmd.InOrStdin(), cmd.OutOrStdout(), res.Questions)
		if err != nil {
			return err
		}
		for k, v := range responses {
			entry.Responses[k] = v
		}

		res, runErr = orch.ContinueWorkflow(ctx, sessionID, responses)
		if runErr == nil && !res.Suspended && !res.Phase.IsTerminal() {
			res, runErr = runWorkflow(ctx, a, sessionID)
		}
	}

	view, viewErr := orch.Session(sessionID)
	if viewErr != nil {
		return viewErr
	}

	entry.Phase = view.Phase
	entry.Suspended = false
	entry.Questions = nil
	if err := a.journal.Save(entry); err != nil {
		return err
	}

	if runErr != nil {
		mirrorOutcome(ctx, a, entry.WorkflowID, view, runErr.Error())
		return renderFailure(cmd, a, runErr)
	}

	mirrorOutcome(ctx, a, entry.WorkflowID, view, "")
	return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
		"workflowId": entry.WorkflowID,
		"phase":      view.Phase,
	}))
}

// renderFailure emits the failure envelope and returns an error so the
// process exits non-zero.
func renderFailure(cmd *cobra.Command, a *app, cause error) error {
	msg := fmt.Sprintf("Deployment failed: %v", cause)
	if err := render(cmd.OutOrStdout(), a.cfg.Output.Format, errorEnvelope(msg)); err != nil {
		return err
	}
	return errors.New(msg)
}
