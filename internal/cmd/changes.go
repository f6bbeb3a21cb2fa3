package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/cli"
	"github.com/colinmarc/ledgerctl/internal/store"
)

var (
	changesStart      int64
	changesLimit      int
	changesWhere      string
	changesCollection string
	changesFollow     bool
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Tail the monotonic change feed",
	RunE:  runChanges,
}

func init() {
	changesCmd.Flags().Int64Var(&changesStart, "start", 0, "only return changes with txid greater than this cursor")
	changesCmd.Flags().IntVar(&changesLimit, "limit", 0, "maximum number of changes to return (0 uses the config default, negative is unlimited)")
	changesCmd.Flags().StringVar(&changesWhere, "where", "", "predicate to filter returned documents")
	changesCmd.Flags().StringVar(&changesCollection, "collection", "", "restrict the feed to one collection")
	changesCmd.Flags().BoolVar(&changesFollow, "follow", false, "keep polling the snapshot file for new changes, like tail -f")
	rootCmd.AddCommand(changesCmd)
}

func runChanges(cmd *cobra.Command, args []string) error {
	var pred *store.Predicate
	if changesWhere != "" {
		p, err := store.ParsePredicate(changesWhere)
		if err != nil {
			return err
		}
		pred = p
	}

	var collection *string
	if changesCollection != "" {
		collection = &changesCollection
	}

	limit := changesLimit
	if limit == 0 {
		limit = activeConfig.ChangeFeedLimit
	}

	cursor := store.TxID(changesStart)
	feed := activeStore.GetChangesAfter(cursor, limit, pred, collection)
	if err := renderChangeFeed(feed); err != nil {
		return err
	}
	if n := len(feed.Changes); n > 0 {
		cursor = feed.Changes[n-1].Record.TxID
	}
	if !changesFollow {
		return nil
	}

	watcher, err := cli.NewSnapshotWatcher(activeConfig.StorePath)
	if err != nil {
		return fmt.Errorf("watching %s for changes: %w", activeConfig.StorePath, err)
	}
	defer watcher.Stop()
	watcher.Start()

	persistence := store.NewFilePersistence(activeConfig.StorePath)
	for {
		select {
		case <-watcher.Events():
			// The snapshot was rewritten by another process; our
			// in-memory store is stale, so reload before scanning.
			reloaded := store.New(store.WithPersistence(persistence))
			feed := reloaded.GetChangesAfter(cursor, limit, pred, collection)
			if err := renderChangeFeed(feed); err != nil {
				return err
			}
			if feed.NeedsRollback {
				return nil
			}
			if n := len(feed.Changes); n > 0 {
				cursor = feed.Changes[n-1].Record.TxID
			}
		case err := <-watcher.Errors():
			return fmt.Errorf("watching snapshot: %w", err)
		}
	}
}

func renderChangeFeed(feed store.ChangeFeed) error {
	if jsonOutput {
		return printJSON(feed)
	}
	if feed.NeedsRollback {
		fmt.Printf("needs_rollback=true max_txid=%d: cursor is behind the rollback watermark, resync from scratch\n", feed.MaxTxID)
		return nil
	}

	tbl := cli.NewTable("TXID", "COLLECTION", "KEY", "OP", "VALUE")
	for _, c := range feed.Changes {
		value := string(c.Record.Value)
		if c.Record.IsTombstone() {
			value = "null"
		}
		tbl.AddRow(strconv.FormatInt(int64(c.Record.TxID), 10), c.Collection, c.Record.Key, string(c.Operation), value)
	}
	fmt.Print(tbl.Render())
	return nil
}
