package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/cli"
	"github.com/colinmarc/ledgerctl/internal/store"
)

var listLatestOnly bool

var listCmd = &cobra.Command{
	Use:   "list COLLECTION",
	Short: "List documents in a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listLatestOnly, "latest-only", false, "show only the latest live version per key")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	results := activeStore.ListDocuments(args[0], listLatestOnly)
	return renderDocumentSets(results)
}

func renderDocumentSets(results []store.DocumentSet) error {
	if jsonOutput {
		return printJSON(results)
	}

	tbl := cli.NewTable("KEY", "VERSION", "TXID", "OP", "VALUE")
	for _, ds := range results {
		for _, r := range ds.Records {
			value := string(r.Value)
			if r.IsTombstone() {
				value = "null"
			}
			tbl.AddRow(ds.Key, strconv.Itoa(r.Version), strconv.FormatInt(int64(r.TxID), 10), string(r.Operation()), value)
		}
	}
	fmt.Print(tbl.Render())
	return nil
}
