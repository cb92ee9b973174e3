// poker is the planning poker backend: a realtime websocket server that
// coordinates shared estimation sessions.
//
// Usage:
//
//	poker serve              - Start the server
//
// Flags:
//
//	--listen <addr>   - Listen address (default: :3000)
//	--config <path>   - Path to YAML config file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "poker",
	Short: "Planning Poker backend - realtime estimation sessions",
	Long: `Planning Poker backend coordinates shared estimation sessions over
websockets: participants join a named session, pick stories, vote, and
reveal or hide the round together.

Examples:
  poker serve
  poker serve --listen :8080
  poker serve --config ./poker.yaml`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
