package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"costdb/internal/format"
	"costdb/pipeline"
)

func dirOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

// printReport таблица этапов запуска и список созданных файлов
func printReport(w io.Writer, report *pipeline.Report) {
	if report == nil {
		return
	}

	t := format.NewTable(format.ASCII)
	t.Title(fmt.Sprintf("Pipeline run %s", report.RunID))
	t.Header("Stage", "Status", "Rows", "Duration", "Output")
	t.AlignRight(3, 4)
	for _, stage := range report.Stages {
		output := stage.Output
		if stage.Err != nil {
			output = format.Truncate(stage.Err.Error(), 60)
		}
		t.Row(string(stage.Stage), string(stage.Status), stage.Rows, format.Duration(stage.Duration), output)
	}
	t.Footer("Total", "", fmt.Sprintf("%d orders", report.Orders), format.Duration(report.FinishedAt.Sub(report.StartedAt)),
		fmt.Sprintf("%d clusters, %d anomalies", report.Clusters, report.Anomalies))
	fmt.Fprintln(w, t.String())

	if len(report.Files) > 0 {
		fmt.Fprintln(w, "Generated files:")
		for _, f := range report.Files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (and %d more)", strings.Join(items[:limit], ", "), len(items)-limit)
}
