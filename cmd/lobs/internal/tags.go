package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goplus/lobs/internal/exporters"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the available exporters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, tag := range exporters.Default().Tags() {
			fmt.Fprintln(cmd.OutOrStdout(), tag)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
