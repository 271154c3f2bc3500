package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"costdb/pipeline"
	"costdb/server"
	"costdb/server/services"
)

func newServeCmd(a *app) *cobra.Command {
	var inProcess bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pipeline outputs over HTTP and accept uploads and runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openRegistry()
			if err != nil {
				return fmt.Errorf("failed to open registry: %w", err)
			}
			var runs services.RunLister
			var registry pipeline.Registry
			if db != nil {
				defer db.Close()
				runs = db
				registry = db
			}

			store := a.store()
			var runner services.PipelineRunner
			if inProcess {
				orchestrator := pipeline.NewOrchestrator(store, pipeline.ConfigFromApp(a.cfg), registry, a.logger)
				runner = services.RunnerFunc(func(ctx context.Context) (services.RunOutput, error) {
					report, err := orchestrator.Run(ctx)
					var out services.RunOutput
					if report != nil {
						var buf strings.Builder
						printReport(&buf, report)
						out.Stdout = buf.String()
					}
					if err != nil {
						out.Stderr = err.Error()
						out.ExitCode = 1
					}
					return out, err
				})
			} else {
				execRunner, err := services.NewExecRunner(a.cfg.Server.PipelineBinary, a.configPath)
				if err != nil {
					return err
				}
				runner = execRunner
			}

			srv, err := server.NewServer(server.Options{
				Config: a.cfg,
				Store:  store,
				Runs:   runs,
				Runner: runner,
				Logger: a.logger,
			})
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigChan:
				log.Printf("Получен сигнал %v, останавливаем сервер...", sig)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().BoolVar(&inProcess, "in-process", false, "run the pipeline inside the server process instead of a child process")
	return cmd
}
