package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/cli"
)

const guideMarkdown = `# ledgerctl guide

## Predicates

` + "`query`" + ` and ` + "`changes --where`" + ` accept a single comparison clause:

- ` + "`value.path op literal`" + ` where op is one of ` + "`= != > >= < <=`" + `
- ` + "`value.path BETWEEN low AND high`" + ` (inclusive)
- ` + "`value.path IN (a, b, c)`" + ` / ` + "`NOT IN`" + `
- ` + "`value.path IS NULL`" + ` / ` + "`IS NOT NULL`" + `

Compound clauses joined with AND/OR are not supported; run multiple
queries and intersect client-side if you need that.

## Change feed

` + "`changes --start N`" + ` returns the writes with a transaction id
greater than N, oldest first, at most ` + "`--limit`" + ` of them. If N is behind the rollback watermark
(set by ` + "`evict`" + `), the response carries ` + "`needs_rollback: true`" + `
and no changes — re-read full state with ` + "`list`" + ` or ` + "`query`" + `
and resume from the returned ` + "`max_txid`" + `.

## Garbage collection

` + "`gc`" + ` keeps the newest ` + "`--max-versions`" + ` per key and, if
` + "`--max-age`" + ` or ` + "`--older-than`" + ` is set, additionally drops
anything past that cutoff. Evicting a tombstone this way advances the
rollback watermark just like ` + "`evict`" + ` does.
`

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Print a Markdown guide to predicates, the change feed, and gc",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print(cli.RenderMarkdown(guideMarkdown))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
