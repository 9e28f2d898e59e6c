package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sourcetalk/cmd/sourcetalk/ui"
	"sourcetalk/internal/query"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show how many catalogs, materials and suppliers there are",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newContentClient()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context(), cfg.GetContentTimeout())
		defer cancel()

		totals := make([]int, len(query.Resources))
		g, gctx := errgroup.WithContext(ctx)
		for i, resource := range query.Resources {
			g.Go(func() error {
				n, err := client.Total(gctx, resource)
				if err != nil {
					return fmt.Errorf("%s: %w", resource, err)
				}
				totals[i] = n
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		table := ui.NewTable("Overview", "Listing", "Records")
		for i, resource := range query.Resources {
			table.AddRow(string(resource), humanize.Comma(int64(totals[i])))
		}
		fmt.Fprint(cmd.OutOrStdout(), table.View(ui.DefaultStyles()))
		return nil
	},
}
