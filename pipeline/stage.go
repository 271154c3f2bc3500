package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Stage состояние конвейера
type Stage string

const (
	StageStandardization  Stage = "STANDARDIZATION"
	StageAnalytics        Stage = "ANALYTICS"
	StageAnomalyDetection Stage = "ANOMALY_DETECTION"
	StageDone             Stage = "DONE"
)

// Stages этапы в порядке выполнения
var Stages = []Stage{StageStandardization, StageAnalytics, StageAnomalyDetection}

// Next следующее состояние; после последнего этапа DONE
func (s Stage) Next() Stage {
	switch s {
	case StageStandardization:
		return StageAnalytics
	case StageAnalytics:
		return StageAnomalyDetection
	}
	return StageDone
}

// ParseStage разбирает имя этапа без учета регистра
func ParseStage(s string) (Stage, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "_")
	switch name {
	case "", string(StageStandardization):
		return StageStandardization, nil
	case string(StageAnalytics):
		return StageAnalytics, nil
	case string(StageAnomalyDetection), "ANOMALIES", "ANOMALY":
		return StageAnomalyDetection, nil
	}
	return "", fmt.Errorf("unknown stage %q (expected standardization, analytics or anomaly_detection)", s)
}

// Status итог этапа
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// StageResult результат одного этапа. Оркестратор смотрит на Status, а не на панику или ошибку.
type StageResult struct {
	Stage    Stage         `json:"stage"`
	Status   Status        `json:"status"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output,omitempty"`
	Stats    interface{}   `json:"stats,omitempty"`
	Err      error         `json:"-"`
	Trace    string        `json:"-"`
}

func succeeded(stage Stage, rows int, output string, stats interface{}) StageResult {
	return StageResult{Stage: stage, Status: StatusSucceeded, Rows: rows, Output: output, Stats: stats}
}

func failed(stage Stage, err error) StageResult {
	return StageResult{Stage: stage, Status: StatusFailed, Err: err}
}

// StageFailure прерывает запуск; Trace заполнен, если этап упал с паникой
type StageFailure struct {
	Stage Stage
	Err   error
	Trace string
}

func (f *StageFailure) Error() string {
	return fmt.Sprintf("stage %s failed: %v", f.Stage, f.Err)
}

func (f *StageFailure) Unwrap() error {
	return f.Err
}
