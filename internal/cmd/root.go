// Package cmd implements the ledgerctl command-line surface: a thin
// CLI standing in for the out-of-scope HTTP transport, talking
// directly to an in-process internal/store.Store.
package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/config"
	"github.com/colinmarc/ledgerctl/internal/store"
)

var (
	configPath string
	storeFlag  string
	jsonOutput bool

	activeConfig *config.Config
	activeStore  *store.Store
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Inspect and mutate a versioned document store",
	Long:          "ledgerctl is a command-line client for the versioned document store engine: put, get, delete, evict, list, query, and tail its change feed.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Runnable() || skipsStoreLoad(cmd) {
			return nil
		}
		return loadStore()
	},
}

// Execute runs the ledgerctl CLI; it's the sole entry point called
// from cmd/ledgerctl/main.go.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfigPath := os.Getenv("LEDGERCTL_CONFIG")
	if defaultConfigPath == "" {
		defaultConfigPath = "ledgerctl.toml"
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to ledgerctl.toml")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "path to the snapshot file (overrides the config file)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of a table")
}

// skipsStoreLoad reports whether cmd operates without touching the
// store, so PersistentPreRunE shouldn't fail the whole invocation just
// because no config file exists yet.
func skipsStoreLoad(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "guide":
		return true
	case "init":
		return cmd.Parent() != nil && cmd.Parent().Name() == "config"
	default:
		return false
	}
}

func loadStore() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		if storeFlag == "" {
			return fmt.Errorf("loading config: %w (pass --store directly, or run 'ledgerctl config init')", err)
		}
		cfg = config.Default(storeFlag)
	}
	if storeFlag != "" {
		cfg.StorePath = storeFlag
	}
	activeConfig = cfg

	logger := log.New(os.Stderr, "ledgerctl: ", log.LstdFlags)
	activeStore = store.New(
		store.WithPersistence(store.NewFilePersistence(cfg.StorePath)),
		store.WithLogger(logger),
	)
	return nil
}

// printJSON writes v to stdout as indented JSON, for --json output.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ExitCode maps an engine error to a process exit code the way a real
// transport would map it to an HTTP status: not-found is distinguished
// from a malformed request, which is distinguished from everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case store.IsNotFound(err):
		return 1
	case store.IsInvalidQuery(err), store.IsInvalidInput(err):
		return 2
	default:
		return 3
	}
}
