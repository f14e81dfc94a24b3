package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [workflow-id]",
	Short: "Show workflow status",
	Long: `Status shows one workflow by ID, or all known workflows when no ID is
given, most recently updated first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		entry, err := a.journal.Load(args[0])
		if err != nil {
			return renderFailure(cmd, a, err)
		}
		return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(entry))
	}

	entries, err := a.journal.List()
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
		"workflows": entries,
	}))
}
