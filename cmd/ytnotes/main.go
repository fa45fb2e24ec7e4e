package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "ytnotes",
	Short: "Turn YouTube video transcripts into structured study notes",
	Long: `ytnotes fetches a YouTube video's captions, formats them into a
timestamped transcript and synthesizes structured study notes from them.

Run "ytnotes serve" for the HTTP + MCP server, or "ytnotes notes <url>"
for one-shot generation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ytnotes version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ytnotes version %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(transcriptCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
