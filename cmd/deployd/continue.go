package main

import (
	"fmt"

	"github.com/fyrsmithlabs/deployd/internal/config"
	"github.com/fyrsmithlabs/deployd/internal/workflow"
	"github.com/spf13/cobra"
)

var continueSet []string

var continueCmd = &cobra.Command{
	Use:   "continue <workflow-id>",
	Short: "Resume a suspended workflow",
	Long: `Continue resumes a workflow that suspended with questions. Answers come
from repeated --set key=value flags or, when none are given, from stdin
prompts.

Examples:
  deployd continue 2f9c41d8-... --set replicas=3
  deployd continue 2f9c41d8-...`,
	Args: cobra.ExactArgs(1),
	RunE: runContinue,
}

func init() {
	continueCmd.Flags().StringArrayVar(&continueSet, "set", nil, "answer as key=value (repeatable)")
}

func runContinue(cmd *cobra.Command, args []string) error {
	// The saved workflow suspended, so the replay must also run
	// interactively to reproduce the suspension point.
	a, err := newApp(func(c *config.Config) { c.Workflow.Interactive = true })
	if err != nil {
		return err
	}
	defer a.close()

	entry, err := a.journal.Load(args[0])
	if err != nil {
		return renderFailure(cmd, a, err)
	}
	if entry.Phase.IsTerminal() {
		return renderFailure(cmd, a, fmt.Errorf("workflow %s already %s", entry.WorkflowID, entry.Phase))
	}

	sessionID, res, err := replaySession(cmd, a, entry)
	if err != nil {
		return renderFailure(cmd, a, err)
	}

	if res.Suspended {
		var responses map[string]any
		if len(continueSet) > 0 {
			responses, err = parseSetFlags(continueSet)
		} else {
			responses, err = promptAnswers(cmd.InOrStdin(), cmd.OutOrStdout(), res.Questions)
		}
		if err != nil {
			return err
		}
		for k, v := range responses {
			entry.Responses[k] = v
		}

		res, err = a.registry.Orchestrator().ContinueWorkflow(cmd.Context(), sessionID, responses)
		if err != nil {
			return finalizeFailure(cmd, a, sessionID, entry, err)
		}
	}

	return driveWorkflow(cmd, a, sessionID, entry)
}

// replaySession rebuilds an in-memory session from a journal entry by
// starting a fresh workflow and replaying the recorded answers, then
// running it up to its suspension point (or a terminal phase when the
// answers now suffice).
func replaySession(cmd *cobra.Command, a *app, entry *journalEntry) (string, workflow.ExecuteResult, error) {
	ctx := cmd.Context()
	orch := a.registry.Orchestrator()

	sessionID, err := orch.InitializeWorkflow(ctx, workflow.StartRequest{
		AppName:      entry.AppName,
		Requirements: entry.Requirements,
	})
	if err != nil {
		return "", workflow.ExecuteResult{}, err
	}
	if entry.Responses == nil {
		entry.Responses = map[string]any{}
	}
	for k, v := range entry.Responses {
		if err := orch.SetContext(sessionID, k, v); err != nil {
			return "", workflow.ExecuteResult{}, err
		}
	}

	res, err := runWorkflow(ctx, a, sessionID)
	if err != nil {
		return sessionID, res, err
	}
	return sessionID, res, nil
}

// finalizeFailure records a failed replayed workflow in the journal and
// renders the failure envelope.
func finalizeFailure(cmd *cobra.Command, a *app, sessionID string, entry *journalEntry, cause error) error {
	view, err := a.registry.Orchestrator().Session(sessionID)
	if err == nil {
		entry.Phase = view.Phase
		entry.Suspended = false
		entry.Questions = nil
		_ = a.journal.Save(entry)
		mirrorOutcome(cmd.Context(), a, entry.WorkflowID, view, cause.Error())
	}
	return renderFailure(cmd, a, cause)
}
