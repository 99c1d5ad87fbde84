package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"planforge/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.SugaredLogger
)

const version = "1.0.0"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "planforge",
	Short: "planforge - deterministic savings allocation engine",
	Long: `planforge computes how a client should split a fixed monthly savings
budget across tax-advantaged vehicles.

It classifies the client into one of nine investor profiles, weights the
active savings domains, resolves vehicle eligibility and limits against a
versioned catalog, then runs a waterfall allocation with projections and
advisory limit checks. The same engine backs one-shot plans and interactive
rebalancing sessions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New("planforge", verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the planforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("planforge %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults apply when missing)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
