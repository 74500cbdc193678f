package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()
		defaultPath := filepath.Join(store.ConfigsDir(), config.DefaultLabel+".yaml")

		if _, err := os.Stat(defaultPath); err == nil {
			fmt.Println("Configuration already exists at:")
			fmt.Println("  ", defaultPath)
			fmt.Println("Use `parkdl config reset` to recreate it.")
			return nil
		}

		fmt.Println("Configuration file will be saved at:")
		fmt.Println("  ", defaultPath)
		fmt.Println()

		fmt.Println("Default configuration:")
		config.DefaultConfig().Print()
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Create Default config at %s? [y/N]: ", defaultPath)
		resp, _ := reader.ReadString('\n')
		resp = strings.TrimSpace(strings.ToLower(resp))

		if resp != "y" && resp != "yes" {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := store.InitDefault()
		if err != nil && !errors.Is(err, os.ErrExist) {
			return fmt.Errorf("failed to create config: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Printf("This config is now active (label: %s).\n", config.DefaultLabel)

		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
