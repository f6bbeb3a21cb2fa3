package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/store"
)

var evictCmd = &cobra.Command{
	Use:   "evict COLLECTION KEY",
	Short: "Permanently remove a key's entire history and advance the rollback watermark",
	Args:  cobra.ExactArgs(2),
	RunE:  runEvict,
}

func init() {
	rootCmd.AddCommand(evictCmd)
}

func runEvict(cmd *cobra.Command, args []string) error {
	collection, key := args[0], args[1]

	if !activeStore.Evict(collection, key) {
		return store.NewNotFoundError("%s/%s not found", collection, key)
	}
	if jsonOutput {
		return printJSON(map[string]any{
			"status":             "evicted",
			"collection":         collection,
			"key":                key,
			"rollback_watermark": activeStore.HighestRemovedTombstoneID(),
		})
	}
	fmt.Printf("%s/%s evicted (rollback watermark now %d)\n", collection, key, activeStore.HighestRemovedTombstoneID())
	return nil
}
