package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/cli"
)

var (
	gcMaxVersions int
	gcMaxAge      string
	gcOlderThan   string
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Discard old versions beyond the retention policy",
	Long: "gc discards old versions per key, keeping the newest --max-versions. " +
		"--max-age and --older-than both additionally discard anything beyond a cutoff age; " +
		"--older-than accepts natural-language phrases (\"2 weeks ago\") as well as Go durations.",
	RunE: runGC,
}

func init() {
	gcCmd.Flags().IntVar(&gcMaxVersions, "max-versions", 0, "versions to keep per key (0 uses the config default)")
	gcCmd.Flags().StringVar(&gcMaxAge, "max-age", "", "discard versions older than this Go duration (e.g. 720h)")
	gcCmd.Flags().StringVar(&gcOlderThan, "older-than", "", "discard versions older than this natural-language phrase or Go duration")
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
	if gcMaxAge != "" && gcOlderThan != "" {
		return fmt.Errorf("--max-age and --older-than are mutually exclusive")
	}

	maxVersions := gcMaxVersions
	if maxVersions == 0 {
		maxVersions = activeConfig.GC.MaxVersions
	}

	var maxAge *time.Duration
	switch {
	case gcOlderThan != "":
		d, err := cli.ParseOlderThan(gcOlderThan)
		if err != nil {
			return err
		}
		maxAge = &d
	case gcMaxAge != "":
		d, err := time.ParseDuration(gcMaxAge)
		if err != nil {
			return fmt.Errorf("invalid --max-age: %w", err)
		}
		maxAge = &d
	case activeConfig.GC.MaxAge != "":
		d, err := time.ParseDuration(activeConfig.GC.MaxAge)
		if err != nil {
			return fmt.Errorf("invalid gc.max_age in config: %w", err)
		}
		maxAge = &d
	}

	removed := activeStore.GarbageCollect(maxVersions, maxAge)
	if jsonOutput {
		return printJSON(map[string]int{"removed": removed})
	}
	fmt.Printf("removed %d version(s)\n", removed)
	return nil
}
