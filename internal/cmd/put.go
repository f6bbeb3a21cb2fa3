package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/cli"
	"github.com/colinmarc/ledgerctl/internal/store"
)

var putValueFlag string

var putCmd = &cobra.Command{
	Use:   "put COLLECTION KEY",
	Short: "Insert or update a document, appending a new version",
	Args:  cobra.ExactArgs(2),
	RunE:  runPut,
}

func init() {
	putCmd.Flags().StringVar(&putValueFlag, "value", "", "JSON document value (reads stdin, then prompts interactively, if omitted)")
	rootCmd.AddCommand(putCmd)
}

func runPut(cmd *cobra.Command, args []string) error {
	collection, key := args[0], args[1]

	raw, err := resolvePutValue(collection, key)
	if err != nil {
		return err
	}
	if !json.Valid(raw) {
		return store.NewInvalidInputError("%s/%s: value is not valid JSON", collection, key)
	}

	rec := activeStore.Upsert(collection, key, raw)

	if jsonOutput {
		return printJSON(rec)
	}
	fmt.Printf("%s/%s: version %d (txid %d, %s)\n", collection, key, rec.Version, rec.TxID, rec.Operation())
	return nil
}

func resolvePutValue(collection, key string) ([]byte, error) {
	if putValueFlag != "" {
		return []byte(putValueFlag), nil
	}

	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("reading value from stdin: %w", err)
		}
		return data, nil
	}

	if !cli.IsInteractive() {
		return nil, fmt.Errorf("no --value given and no piped stdin on a non-interactive terminal")
	}
	value, err := cli.PromptForValue(collection, key)
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}
