package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"costdb/pipeline"
)

func newRunCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline: standardization, analytics, anomaly detection",
		Long: `Runs the pipeline stages in order. Each stage reads its inputs from disk and
writes its outputs atomically, so a failed run can be resumed with --from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stage, err := pipeline.ParseStage(from)
			if err != nil {
				return err
			}

			db, err := a.openRegistry()
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			// Выключенный реестр передается как nil интерфейс
			var registry pipeline.Registry
			if db != nil {
				defer db.Close()
				registry = db
			}

			orchestrator := pipeline.NewOrchestrator(a.store(), pipeline.ConfigFromApp(a.cfg), registry, a.logger)
			report, runErr := orchestrator.RunFrom(cmd.Context(), stage)
			printReport(cmd.OutOrStdout(), report)

			return runErr
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "stage to start from: standardization, analytics or anomaly_detection")
	return cmd
}
