package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portfolio-site/pkg/assets"
)

// newListAssetsCmd creates a new command for listing background assets
func newListAssetsCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list-assets",
		Short: "List all background assets",
		Long:  `List all background video assets organized by theme, followed by the backup assets.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			reg, err := newApp(cfg).assets.Registry(cmd.Context())
			if err != nil {
				return err
			}
			listAssets(cmd.OutOrStdout(), reg)
			return nil
		},
	}
}

// listAssets displays every theme and its assets
func listAssets(w io.Writer, reg *assets.Registry) {
	groups := reg.Groups()
	total := 0

	fmt.Fprintln(w, "Background Assets:")
	fmt.Fprintln(w, "==================")

	for _, group := range groups {
		fmt.Fprintf(w, "Theme: %s\n", group.Theme)
		for _, asset := range group.Assets {
			marker := ""
			if asset.ID == reg.Default().ID {
				marker = " [default]"
			}
			fmt.Fprintf(w, "  - %s (%s)%s\n", asset.ID, asset.Title, marker)
			total++
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Backups:")
	for _, asset := range reg.Backups() {
		marker := ""
		if asset.ID == reg.FallbackAsset().ID {
			marker = " [fallback]"
		}
		fmt.Fprintf(w, "  - %s (%s, %s)%s\n", asset.ID, asset.Title, asset.Theme, marker)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total: %d assets across %d themes, %d backups\n", total, len(groups), len(reg.Backups()))
}
