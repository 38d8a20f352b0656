// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/shopkeep/shopkeep/internal/config"
	"github.com/shopkeep/shopkeep/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	cfg        config.Config
)

var rootCmd = &cobra.Command{
	Use:   "shopkeep",
	Short: "shopkeep is the administration backend of multi-tenant stores",
	Long: `shopkeep is the administration backend of multi-tenant stores.
It manages store roles, staff and the permissions guarding every admin route.`,
	Args:          cobra.OnlyValidArgs,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Path to the configuration directory")
}

// loadConfig reads the configuration and initialises the logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
