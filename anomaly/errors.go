package anomaly

import "errors"

var (
	// ErrBaselineMissing для позиции и региона нет сводной строки аналитики
	ErrBaselineMissing = errors.New("baseline price missing")
)
