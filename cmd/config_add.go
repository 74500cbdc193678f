package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/spf13/cobra"
)

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config with default values",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Enter label for new config: ")
			label, _ = reader.ReadString('\n')
		}

		path, err := config.DefaultStore().Create(strings.TrimSpace(label))
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
}
