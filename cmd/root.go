package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portfolio-site/pkg/config"
	"portfolio-site/pkg/log"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	v := viper.New()
	config.Setup(v)
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "portfolio-site",
		Short: "Portfolio site serves the advisory landing page and its background videos",
		Long: `Portfolio site is a command line application that serves the landing page of a
financial advisory practice, resolves its background video assets from a manifest or a
Google Cloud Storage bucket, checks that they play, and collects contact form submissions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(v, configFile); err != nil {
				return err
			}
			log.Configure(log.Config{Level: v.GetString("log_level"), Output: cmd.ErrOrStderr()})
			return nil
		},
	}

	// Define persistent flags that will be available for all commands
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Read settings from a YAML config file")
	flags.StringP("bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	flags.StringP("port", "p", "", "Set the PORT (overrides environment variable)")
	flags.StringP("manifest", "m", "", "Set the ASSET_MANIFEST (overrides environment variable)")
	flags.String("log-level", "", "Set the LOG_LEVEL (overrides environment variable)")

	_ = v.BindPFlag("bucket_name", flags.Lookup("bucket"))
	_ = v.BindPFlag("port", flags.Lookup("port"))
	_ = v.BindPFlag("asset_manifest", flags.Lookup("manifest"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))

	// Add commands to root
	rootCmd.AddCommand(newListAssetsCmd(v))
	rootCmd.AddCommand(newShowAssetCmd(v))
	rootCmd.AddCommand(newExportCmd(v))
	rootCmd.AddCommand(newServeCmd(v))
	rootCmd.AddCommand(newPreflightCmd(v))

	return rootCmd
}

// LoadConfig resolves configuration from flags, environment, config file and defaults
func LoadConfig(v *viper.Viper) (*config.Config, error) {
	return config.FromViper(v)
}
