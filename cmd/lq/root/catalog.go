package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifequest/internal/ui"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the default habits and rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			catalog := cfg.Engine.Catalog

			fmt.Fprintln(out, ui.Heading(ui.IconDone, "Daily Tasks"))
			for _, h := range catalog.Habits {
				fmt.Fprintln(out, "  "+ui.HabitLabel(h.Name, h.Points))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Heading(ui.IconGift, "Rewards"))
			for _, r := range catalog.Rewards {
				fmt.Fprintln(out, "  "+ui.RewardLabel(r.Name, r.Cost))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.LabelValue("Low balance below", cfg.Engine.LowBalanceThreshold))
			return nil
		},
	}

	return cmd
}
