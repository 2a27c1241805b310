package main

import (
	"os"

	cfg "galleryserv/src/configuration"
	"galleryserv/src/logger"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	config *cfg.Properties
	log    *logger.Logger
)

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "galleryserv",
	Short:   "Identity-scoped photo gallery backend over object storage",
	Long: `galleryserv serves a per-user photo gallery. Photos live in an S3
compatible bucket; clients upload and download them through short-lived
signed URLs issued by this server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		config, err = cfg.Parse()
		if err != nil {
			return err
		}
		log = logger.New(&logger.Config{
			Level:  config.LogLevel,
			Format: config.LogFormat,
			Output: os.Stdout,
		})
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
