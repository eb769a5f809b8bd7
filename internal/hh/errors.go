package hh

import (
	"errors"
	"fmt"
)

// ErrConfiguration - общий класс ошибок конфигурации каталога.
var ErrConfiguration = errors.New("hh: configuration error")

// ErrNoApplicableHeuristics возвращается, если множество кандидатов пусто.
var ErrNoApplicableHeuristics = errors.New("hh: no applicable heuristics")

const (
	ReasonInsufficientOverrides = "insufficient override values"
	ReasonIDOutOfRange          = "heuristic id out of range"
)

// ConfigurationError описывает нехватку значений переопределения параметра
// либо некорректный id эвристики, сообщённый задачей.
type ConfigurationError struct {
	Reason string
	Param  string
	Need   int
	Got    int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("hh: configuration error: %s for %s (need %d, got %d)", e.Reason, e.Param, e.Need, e.Got)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
