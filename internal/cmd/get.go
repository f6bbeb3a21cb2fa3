package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/style"
)

var getVersion int

var getCmd = &cobra.Command{
	Use:   "get COLLECTION KEY",
	Short: "Fetch a document, optionally at a specific version",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().IntVar(&getVersion, "version", 0, "fetch this version instead of the latest live one")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	collection, key := args[0], args[1]

	var version *int
	if cmd.Flags().Changed("version") {
		version = &getVersion
	}

	rec, err := activeStore.Get(collection, key, version)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(rec)
	}
	fmt.Printf("%s %s/%s @v%d (txid %d)\n", style.Dim.Render(string(rec.Operation())), collection, key, rec.Version, rec.TxID)
	fmt.Println(string(rec.Value))
	return nil
}
