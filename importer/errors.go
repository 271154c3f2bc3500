package importer

import (
	"fmt"
	"strings"
)

// maxReportedProblems сколько проблемных строк перечисляется в ошибке
const maxReportedProblems = 20

// InputValidationError исходный файл заказов не прошел проверку.
// Missing содержит отсутствующие обязательные колонки, Problems описания плохих строк.
type InputValidationError struct {
	Missing  []string `json:"missing_columns,omitempty"`
	Problems []string `json:"problems,omitempty"`
	Total    int      `json:"total_problems,omitempty"`
}

func (e *InputValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Problems) > 0 {
		msg := "invalid rows: " + strings.Join(e.Problems, "; ")
		if e.Total > len(e.Problems) {
			msg += fmt.Sprintf(" (and %d more)", e.Total-len(e.Problems))
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return "invalid input"
	}
	return strings.Join(parts, "; ")
}

func (e *InputValidationError) addProblem(format string, args ...interface{}) {
	e.Total++
	if len(e.Problems) < maxReportedProblems {
		e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
	}
}
