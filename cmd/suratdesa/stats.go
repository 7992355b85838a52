package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/waygalih/suratdesa/internal/repository"
	"github.com/waygalih/suratdesa/internal/review"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print submission counts by status",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	be, err := openBackend(cmd.Context(), cfg, 1, log)
	if err != nil {
		return err
	}
	defer be.close()

	subs, err := repository.WithTimeout(be.subs, cfg.StoreTimeout).FindAll(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch submissions: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, item := range review.ComputeStats(subs).Items() {
		fmt.Fprintf(tw, "%s\t%d\n", item.Label, item.Value)
	}
	return tw.Flush()
}
