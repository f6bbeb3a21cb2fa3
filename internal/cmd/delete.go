package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:   "delete COLLECTION KEY",
	Short: "Append a tombstone, soft-deleting a document",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	collection, key := args[0], args[1]

	if !activeStore.Delete(collection, key) {
		return store.NewNotFoundError("%s/%s not found", collection, key)
	}
	if jsonOutput {
		return printJSON(map[string]string{"status": "deleted", "collection": collection, "key": key})
	}
	fmt.Printf("%s/%s deleted\n", collection, key)
	return nil
}
