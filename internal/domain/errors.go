package domain

import "errors"

var (
	// ErrInvalidInput — входные данные не позволяют корректно посчитать совместимость.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig — некорректная конфигурация матчинга (веса, порог).
	ErrInvalidConfig = errors.New("invalid match config")
)
