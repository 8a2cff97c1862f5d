package inventory

import "errors"

var (
	// ErrInvalidInput означает ошибку валидации входных данных (HTTP 400).
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound означает неизвестную запись или отсутствующее фото (HTTP 404).
	ErrNotFound = errors.New("not found")
)
