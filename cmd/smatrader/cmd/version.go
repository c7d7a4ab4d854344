package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the smatrader CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("smatrader version %s\n", version)
		fmt.Println("Multi-instrument SMA crossover backtester")
		fmt.Println("https://github.com/rustyeddy/smatrader")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
