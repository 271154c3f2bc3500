package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"costdb/exporter"
	"costdb/storage"
)

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export pipeline outputs to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := exporter.NewExcelExporter(a.store()).ExportToFile(out)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("pipeline outputs not found, run the pipeline first: %w", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Workbook written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "cost_intelligence.xlsx", "output workbook")
	return cmd
}
