package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"portfolio-site/pkg/assets"
)

// newExportCmd creates a new command for exporting the asset manifest
func newExportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "export [format]",
		Short: "Export the asset manifest",
		Long: `Export the resolved asset manifest in the specified format. Supported formats: json, yaml.
The yaml output can be fed back through --manifest.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"json", "yaml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "json"
			if len(args) > 0 {
				format = args[0]
			}
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			reg, err := newApp(cfg).assets.Registry(cmd.Context())
			if err != nil {
				return err
			}
			return exportManifest(cmd.OutOrStdout(), reg.Manifest(), format)
		},
	}
}

// exportManifest writes m in the specified format
func exportManifest(w io.Writer, m assets.Manifest, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format: %s (supported formats: json, yaml)", format)
	}
}
