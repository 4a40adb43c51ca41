// Package main is the signalgrid command: it runs the intersection control
// engine and exposes its decision policy and phase model.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/anggasct/signalgrid/pkg/config"
	"github.com/anggasct/signalgrid/pkg/observers"
)

var (
	// Global flags
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool

	// Set by PersistentPreRunE
	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "signalgrid",
	Short: "signalgrid - traffic signal control center",
	Long: `signalgrid runs a fleet of signalised intersections.

Every tick advances the phase timers, occasionally lets the decision policy
adjust one intersection and perturbs the simulated traffic. Operators can
switch the control mode and force signals from the console.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		if logFormat != "" {
			loaded.Logging.Format = logFormat
		}
		if noColor {
			loaded.Logging.NoColor = true
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		level, err := loaded.GetLogLevel()
		if err != nil {
			return err
		}
		logger = observers.NewDefaultLogger(cmd.ErrOrStderr(), level, loaded.Logging.Format, loaded.Logging.NoColor)
		slog.SetDefault(logger)
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "signalgrid.yaml", "Configuration file (missing file uses defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text, json (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colorised log output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(dotCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
