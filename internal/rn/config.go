package rn

import "fmt"

type Config struct {
	// Переопределения параметров, позиционно по спискам эвристик задачи.
	// nil - базовое значение для всех.
	DepthOfSearch       []float64
	IntensityOfMutation []float64
}

func DefaultConfig() Config {
	return Config{}
}

func (c Config) Validate() error {
	if err := validateParams("DepthOfSearch", c.DepthOfSearch); err != nil {
		return err
	}
	return validateParams("IntensityOfMutation", c.IntensityOfMutation)
}

func validateParams(name string, values []float64) error {
	for i, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf(
				"%s[%d] должно лежать в интервале [0,1] (получено %f)",
				name, i, v,
			)
		}
	}
	return nil
}
