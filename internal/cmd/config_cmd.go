package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/colinmarc/ledgerctl/internal/config"
)

var configInitStorePath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the ledgerctl config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default ledgerctl.toml",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configInitStorePath, "store", "store.json", "snapshot path to record in the new config")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if err := config.WriteDefault(configPath, configInitStorePath); err != nil {
		return err
	}
	fmt.Printf("wrote %s (store_path=%s)\n", configPath, configInitStorePath)
	return nil
}
