package cmd

import (
	"fmt"

	"github.com/brogergvhs/parkdl/internal/message"

	"github.com/spf13/cobra"
)

var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the parkdl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("parkdl version:", Version)
		fmt.Println("message schema:", message.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
