package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portfolio-site/pkg/assets"
	"portfolio-site/pkg/playback"
)

// newShowAssetCmd creates a new command for showing asset details
func newShowAssetCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show-asset [id]",
		Short: "Show a background asset",
		Long:  `Show detailed information about the asset an id resolves to. Unknown ids resolve to the default asset.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			reg, err := newApp(cfg).assets.Registry(cmd.Context())
			if err != nil {
				return err
			}
			showAsset(cmd.OutOrStdout(), reg, args[0])
			return nil
		},
	}
}

// showAsset displays the resolved asset and its playback sources
func showAsset(w io.Writer, reg *assets.Registry, id string) {
	asset := reg.Resolve(id)
	if _, ok := reg.Lookup(id); !ok {
		fmt.Fprintf(w, "Unknown id %q, showing the default asset\n\n", id)
	}

	fmt.Fprintf(w, "Asset: %s\n", asset.ID)
	fmt.Fprintf(w, "Title: %s\n", asset.Title)
	fmt.Fprintf(w, "Theme: %s\n", asset.Theme)
	if asset.Duration > 0 {
		fmt.Fprintf(w, "Duration: %ds\n", asset.Duration)
	}
	fmt.Fprintln(w, "================")
	for i, src := range playback.SourcesFor(asset) {
		fmt.Fprintf(w, "%d. %s\n", i+1, src.Type)
		fmt.Fprintf(w, "   URL: %s\n", src.URL)
	}
	fmt.Fprintf(w, "Poster: %s\n", assets.OptimizedPoster(asset, 0, 0))
	if asset.ID == reg.FallbackAsset().ID {
		fmt.Fprintln(w, "This is the fallback asset.")
	} else {
		fmt.Fprintf(w, "Fallback: %s\n", reg.FallbackAsset().ID)
	}
}
