package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"costdb/importer"
	"costdb/internal/fakeorders"
	"costdb/storage"
)

func newGenerateCmd(a *app) *cobra.Command {
	opts := fakeorders.DefaultOptions()
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic purchase orders CSV with spelling variants and price outliers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if out == "" {
				out = a.cfg.Paths.RawFile
			}
			if err := os.MkdirAll(dirOf(out), 0o755); err != nil {
				return err
			}

			orders := fakeorders.Generate(opts)
			err := storage.WriteFileAtomic(out, func(w io.Writer) error {
				return importer.WritePurchaseOrders(w, orders)
			})
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			a.logger.Info("Synthetic orders generated", "rows", len(orders), "seed", opts.Seed, "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d orders to %s\n", len(orders), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&opts.Rows, "rows", opts.Rows, "number of orders")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().Float64Var(&opts.AnomalyRate, "anomaly-rate", opts.AnomalyRate, "share of orders with outlier prices")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: raw file from config)")
	return cmd
}
