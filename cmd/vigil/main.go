package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vigilmon/vigil/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - runtime configuration for the vigil monitoring node",
	Long: `Vigil manages the runtime-created configuration objects of a vigil
monitoring node: durable staged config packages, validated object creation,
and dependency-aware deletion, without restarting the node.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		jsonLog, _ := cmd.Flags().GetBool("json-log")

		log.Init(log.Config{
			Level:      log.Level(level),
			JSONOutput: jsonLog,
			Output:     os.Stderr,
		})
	},
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Vigil version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("data-dir", "/var/lib/vigil", "Data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-log", false, "Log in JSON format")

	// Add subcommands
	rootCmd.AddCommand(objectCmd)
	rootCmd.AddCommand(packageCmd)
}
