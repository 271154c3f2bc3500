package normalization

import (
	"fmt"
	"sync"

	"costdb/internal/domain/models"
)

// CodeAssigner выдает код канонической позиции по нормализованному ключу представителя
type CodeAssigner interface {
	AssignCode(normalizedKey string) (string, error)
}

// SequentialCodes выдает коды по порядку создания кластеров в рамках одного запуска
type SequentialCodes struct {
	mu    sync.Mutex
	next  int
	codes map[string]string
}

// NewSequentialCodes создает генератор кодов, начинающий с ITM-00001
func NewSequentialCodes() *SequentialCodes {
	return &SequentialCodes{
		next:  1,
		codes: make(map[string]string),
	}
}

// AssignCode возвращает код для ключа; повторный вызов с тем же ключом дает тот же код
func (s *SequentialCodes) AssignCode(normalizedKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code, ok := s.codes[normalizedKey]; ok {
		return code, nil
	}
	code := fmt.Sprintf(models.ItemCodeFormat, s.next)
	s.next++
	s.codes[normalizedKey] = code
	return code, nil
}
