package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/waygalih/suratdesa/internal/letters"
	"github.com/waygalih/suratdesa/internal/service"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the staff account from ADMIN_EMAIL and ADMIN_PASS",
	RunE:  runSeedAdmin,
}

var (
	demoCount  int
	demoBatch  int
	demoOwners int
	demoSeed   int64
	demoReset  bool
)

var seedDemoCmd = &cobra.Command{
	Use:   "seed-demo",
	Short: "Bulk-load synthetic letter requests for trying out the review screen",
	RunE:  runSeedDemo,
}

func init() {
	seedDemoCmd.Flags().IntVar(&demoCount, "count", 200, "number of submissions to insert")
	seedDemoCmd.Flags().IntVar(&demoBatch, "batch", 500, "insert batch size")
	seedDemoCmd.Flags().IntVar(&demoOwners, "owners", 40, "number of distinct resident accounts")
	seedDemoCmd.Flags().Int64Var(&demoSeed, "seed", 42, "random seed")
	seedDemoCmd.Flags().BoolVar(&demoReset, "reset", false, "drop existing submissions first")
}

func runSeedAdmin(cmd *cobra.Command, args []string) error {
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

	for _, ix := range be.indexers {
		if err := ix.EnsureIndexes(cmd.Context()); err != nil {
			log.Warn("index creation failed", zap.Error(err))
		}
	}
	svc := service.NewAuthService(be.users, nil, nil, cfg.JWTSecret, cfg.SessionTTL, log)
	created, err := svc.SeedAdmin(cmd.Context(), cfg.AdminEmail, cfg.AdminPass)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created.\n", cfg.AdminEmail)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists.\n", cfg.AdminEmail)
	}
	return nil
}

func runSeedDemo(cmd *cobra.Command, args []string) error {
	if demoCount < 1 || demoBatch < 1 {
		return errors.New("--count and --batch must be positive")
	}
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
	if be.bulk == nil {
		return fmt.Errorf("seed-demo needs a persistent store, driver %q keeps nothing", be.driver)
	}

	reg, err := letters.Load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if demoReset {
		if err := be.bulk.Drop(cmd.Context()); err != nil {
			return fmt.Errorf("drop submissions: %w", err)
		}
		fmt.Fprintln(out, "Old submissions dropped.")
	}

	gen := newDemoGen(demoSeed, reg, demoOwners, time.Now())
	return insertDemo(cmd, be.bulk, gen, out)
}

func insertDemo(cmd *cobra.Command, bulk bulkStore, gen *demoGen, out io.Writer) error {
	fmt.Fprintf(out, "Inserting %d submissions (batch %d)\n", demoCount, demoBatch)
	start := time.Now()
	lastReport := start
	inserted := 0
	for inserted < demoCount {
		n := demoBatch
		if remaining := demoCount - inserted; remaining < n {
			n = remaining
		}
		batch, err := gen.batch(inserted, n)
		if err != nil {
			return err
		}
		if _, err := bulk.InsertMany(cmd.Context(), batch); err != nil {
			return fmt.Errorf("insert_many at %d: %w", inserted, err)
		}
		inserted += n

		if time.Since(lastReport) >= 3*time.Second || inserted == demoCount {
			elapsed := time.Since(start)
			rate := float64(inserted) / elapsed.Seconds()
			pct := float64(inserted) / float64(demoCount) * 100
			fmt.Fprintf(out, "  %7d / %d  (%5.1f%%)  %8.0f docs/s  %s\n",
				inserted, demoCount, pct, rate, elapsed.Round(time.Millisecond))
			lastReport = time.Now()
		}
	}
	return nil
}
