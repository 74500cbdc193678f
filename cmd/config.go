package cmd

import (
	"fmt"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective settings, or manage config profiles with a subcommand",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		cfg, source, err := config.LoadMerged(store, config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		if label, err := store.CurrentLabel(); err == nil && !flagIgnoreConfig {
			fmt.Printf("Profile: %s\n", label)
		}
		fmt.Printf("Source:  %s\n\n", source)
		cfg.Print()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
