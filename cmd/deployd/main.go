// Package main implements the deployd CLI for AI-assisted deployment
// workflows.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the --config flag value; empty means the default
	// ~/.config/deployd/config.yaml.
	configPath string
	// outputFormat overrides output.format from the config when set.
	outputFormat string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deployd",
	Short: "AI-assisted deployment workflows",
	Long: `deployd drives application deployments through a phased workflow:
discovery, planning, validation, deployment. Terminal outcomes are
remembered as patterns and prior successes inform future plans.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/deployd/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: json or yaml (default from config)")
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the deployd version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deployd %s\n", version)
	},
}
