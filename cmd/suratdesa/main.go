// Command suratdesa runs the village letter-request portal and its
// maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/config"
	"github.com/waygalih/suratdesa/internal/logging"
)

var (
	// Global flags override the matching environment settings.
	driverFlag   string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "suratdesa",
	Short: "Portal pengajuan surat Desa Way Galih",
	Long: `suratdesa serves the resident letter-request API and the staff review
workflow, and carries the maintenance commands used around it.

Settings come from the environment or a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "store driver: oxidb, mongo or memory (overrides STORE_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedAdminCmd)
	rootCmd.AddCommand(seedDemoCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies the global flags and builds the
// logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	if driverFlag != "" {
		cfg.StoreDriver = driverFlag
	}
	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	log, err := logging.New(cfg.LogLevel, cfg.GelfAddr)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
