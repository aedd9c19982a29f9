package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/forgo/petzadopt/internal/repository"
	"github.com/forgo/petzadopt/internal/service"
)

func reconcileCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconcile [campaignId]",
		Short: "Recompute campaign totals from recorded payments",
		Long: `Recompute donated_amount from the live payments of one campaign, or of
every campaign when no id is given, and repair any drift.

Examples:
  petzadopt reconcile --dry-run
  petzadopt reconcile campaign:8f2k1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			policy, err := service.ParseReversalPolicy(cfg.Ledger.ReversalPolicy)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ledger := service.NewLedgerService(service.LedgerConfig{
				Store:          repository.NewLedgerRepository(db),
				ReversalPolicy: policy,
				MaxRetries:     cfg.Ledger.MaxRetries,
				Logger:         newLogger(cfg),
			})

			if len(args) == 1 {
				res, err := ledger.Reconcile(ctx, args[0], dryRun)
				if err != nil {
					return err
				}
				printReconcile(cmd.OutOrStdout(), []*service.ReconcileResult{res}, dryRun)
				return nil
			}

			// Only drifted campaigns are returned; a failure on one campaign
			// does not stop the sweep.
			results, err := ledger.ReconcileAll(ctx, dryRun)
			printReconcile(cmd.OutOrStdout(), results, dryRun)
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report drift without writing")

	return cmd
}

func printReconcile(w io.Writer, results []*service.ReconcileResult, dryRun bool) {
	verb := "repaired"
	if dryRun {
		verb = "would repair"
	}

	drifted := 0
	for _, r := range results {
		if !r.Changed {
			fmt.Fprintf(w, "%s  ok  %s (%d payments)\n", r.CampaignID, r.Current, r.Payments)
			continue
		}
		drifted++
		fmt.Fprintf(w, "%s  %s  %s -> %s (%d payments)\n", r.CampaignID, verb, r.Previous, r.Current, r.Payments)
	}
	fmt.Fprintf(w, "%d campaigns drifted\n", drifted)
}
