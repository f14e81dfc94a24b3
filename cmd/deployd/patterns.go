package main

import (
	"fmt"

	"github.com/fyrsmithlabs/deployd/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	patternsQuery string
	patternsLimit int
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Inspect remembered deployment patterns",
	Long: `Patterns searches the persistent pattern collection written by previous
deployments. Requires vectorstore.enabled in the configuration.

Examples:
  deployd patterns
  deployd patterns --query "web server postgres" --limit 3`,
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().StringVar(&patternsQuery, "query", workflow.DefaultResourceType, "search text")
	patternsCmd.Flags().IntVar(&patternsLimit, "limit", 10, "maximum matches to return")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	vs := a.registry.VectorStore()
	if vs == nil {
		return renderFailure(cmd, a, fmt.Errorf("vector store is disabled; set vectorstore.enabled to true"))
	}

	ctx := cmd.Context()
	collection := a.cfg.VectorStore.Collection

	exists, err := vs.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if !exists {
		return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
			"collection": collection,
			"count":      0,
			"matches":    []any{},
		}))
	}

	info, err := vs.GetCollectionInfo(ctx, collection)
	if err != nil {
		return err
	}

	results, err := vs.SearchInCollection(ctx, collection, patternsQuery, patternsLimit, nil)
	if err != nil {
		return err
	}

	matches := make([]map[string]any, 0, len(results))
	for _, r := range results {
		matches = append(matches, map[string]any{
			"id":       r.ID,
			"score":    r.Score,
			"content":  r.Content,
			"metadata": r.Metadata,
		})
	}

	return render(cmd.OutOrStdout(), a.cfg.Output.Format, resultEnvelope(map[string]any{
		"collection": collection,
		"count":      info.PointCount,
		"matches":    matches,
	}))
}
