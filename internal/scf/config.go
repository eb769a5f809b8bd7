package scf

import "fmt"

type Config struct {
	// Начальный вес phi.
	Phi float64

	DepthOfSearch       []float64
	IntensityOfMutation []float64
}

func DefaultConfig() Config {
	return Config{Phi: 0.50}
}

func (c Config) Validate() error {
	if c.Phi < 0 || c.Phi > 1 {
		return fmt.Errorf(
			"phi должно лежать в интервале [0,1] (получено %f)",
			c.Phi,
		)
	}
	for i, v := range c.DepthOfSearch {
		if v < 0 || v > 1 {
			return fmt.Errorf("DepthOfSearch[%d] должно лежать в интервале [0,1] (получено %f)", i, v)
		}
	}
	for i, v := range c.IntensityOfMutation {
		if v < 0 || v > 1 {
			return fmt.Errorf("IntensityOfMutation[%d] должно лежать в интервале [0,1] (получено %f)", i, v)
		}
	}
	return nil
}
