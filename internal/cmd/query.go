package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/store"
)

var (
	queryWhere      string
	queryLatestOnly bool
)

var queryCmd = &cobra.Command{
	Use:   "query COLLECTION",
	Short: "List documents in a collection matching a single-clause predicate",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryWhere, "where", "", `predicate, e.g. "value.age > 25" (required)`)
	queryCmd.Flags().BoolVar(&queryLatestOnly, "latest-only", false, "show only the latest matching version per key")
	queryCmd.MarkFlagRequired("where")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryWhere == "" {
		return fmt.Errorf("--where is required")
	}
	pred, err := store.ParsePredicate(queryWhere)
	if err != nil {
		return err
	}

	results := activeStore.QueryDocuments(args[0], pred, queryLatestOnly)
	return renderDocumentSets(results)
}
