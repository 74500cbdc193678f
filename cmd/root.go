package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
)

var rootCmd = &cobra.Command{
	Use:   "parkdl",
	Short: "Download MangaPark chapters as page folders or CBZ files",
	Long: "parkdl lists a manga's chapters oldest first and downloads their pages.\n" +
		"Settings come from the active config profile (see `parkdl config`), overridden by flags.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log HTTP requests and chapter selection")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "skip the active profile, use built-in defaults and flags only")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "parkdl:", err)
		os.Exit(1)
	}
}
