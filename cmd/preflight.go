package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"portfolio-site/pkg/services"
)

// newPreflightCmd creates a new command that checks assets actually play
func newPreflightCmd(v *viper.Viper) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "preflight [ids...]",
		Short: "Check that background videos load",
		Long: `Run the playback controller against every asset (or the given ids) using the real
asset URLs, including retries and the fallback asset, and report where each one ends up.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(v)
			if err != nil {
				return err
			}
			outcomes, err := runPreflight(cmd.Context(), newApp(cfg).preflight, args)
			if err != nil {
				return err
			}
			failed := printOutcomes(cmd.OutOrStdout(), outcomes)
			if strict && failed > 0 {
				return fmt.Errorf("%d asset(s) fall back to the poster", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any asset ends up poster-only")
	return cmd
}

func runPreflight(ctx context.Context, svc *services.PreflightService, ids []string) ([]services.Outcome, error) {
	if len(ids) == 0 {
		return svc.Warm(ctx)
	}
	outcomes := make([]services.Outcome, 0, len(ids))
	for _, id := range ids {
		out, err := svc.Check(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("preflight %s: %w", id, err)
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// printOutcomes writes a table of outcomes and returns how many are not playable
func printOutcomes(w io.Writer, outcomes []services.Outcome) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ASSET\tFINAL\tPHASE\tATTEMPTS\tNOTE")
	failed := 0
	for _, o := range outcomes {
		note := ""
		switch {
		case !o.Playable():
			failed++
			note = o.Error
		case o.UsedFallback:
			note = "fallback " + o.Asset.ID
		}
		if o.PosterError != "" {
			note += " poster: " + o.PosterError
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", o.RequestedID, o.Asset.ID, o.Phase, o.Attempts, note)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nChecked %d assets, %d poster-only\n", len(outcomes), failed)
	return failed
}
