package services

import "errors"

var (
	// ErrNotLoaded выходные файлы конвейера отсутствуют, конвейер еще не запускался
	ErrNotLoaded = errors.New("pipeline outputs not loaded")

	// ErrProcessingInProgress запуск конвейера уже выполняется
	ErrProcessingInProgress = errors.New("pipeline processing already in progress")

	// ErrProcessingTimeout конвейер не уложился в отведенное время
	ErrProcessingTimeout = errors.New("pipeline processing timed out")

	// ErrProcessingFailed конвейер завершился с ошибкой
	ErrProcessingFailed = errors.New("pipeline processing failed")
)
