package storage

import "errors"

var (
	// ErrNotFound файл еще не создан (конвейер не запускался)
	ErrNotFound = errors.New("file not found")
	// ErrMalformed файл существует, но не разбирается
	ErrMalformed = errors.New("malformed file")
)
