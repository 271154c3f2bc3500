package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"costdb/importer"
	"costdb/internal/domain/models"
	"costdb/internal/format"
)

func newValidateCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a purchase orders CSV without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := importer.ReadPurchaseOrdersFile(args[0])
			if err != nil {
				var inputErr *importer.InputValidationError
				if errors.As(err, &inputErr) {
					printValidationProblems(cmd, inputErr)
				}
				return err
			}

			suppliers := make(map[string]struct{})
			regions := make(map[string]struct{})
			var first, last string
			for _, o := range orders {
				if o.Supplier != "" {
					suppliers[o.Supplier] = struct{}{}
				}
				regions[o.Region] = struct{}{}
				date := o.PODate.Format(models.DateLayout)
				if first == "" || date < first {
					first = date
				}
				if date > last {
					last = date
				}
			}

			t := format.NewTable(format.ASCII)
			t.Title(args[0])
			t.Header("Check", "Value")
			t.Row("Orders", len(orders))
			t.Row("Suppliers", len(suppliers))
			t.Row("Regions", len(regions))
			t.Row("Date range", fmt.Sprintf("%s .. %s", first, last))
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}

func printValidationProblems(cmd *cobra.Command, inputErr *importer.InputValidationError) {
	t := format.NewTable(format.ASCII)
	t.Title("Validation failed")
	t.Header("#", "Problem")
	n := 0
	if len(inputErr.Missing) > 0 {
		n++
		t.Row(n, "missing required columns: "+joinLimited(inputErr.Missing, 10))
	}
	for _, p := range inputErr.Problems {
		n++
		t.Row(n, format.Truncate(p, 100))
	}
	if inputErr.Total > len(inputErr.Problems) {
		t.Footer("", fmt.Sprintf("%d more problems not shown", inputErr.Total-len(inputErr.Problems)))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
}
