// Package config - файл настроек запуска гиперэвристик (YAML).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Идентификаторы стратегий.
const (
	StrategyRN  = "rn"
	StrategyMCF = "mcf"
	StrategySCF = "scf"
)

// Config - параметры серии запусков.
type Config struct {
	Strategies []string `yaml:"strategies" validate:"required,min=1,dive,oneof=rn mcf scf"`

	// TimeLimit - бюджет одного запуска в формате time.ParseDuration.
	TimeLimit     string `yaml:"time_limit"`
	MaxIterations int    `yaml:"max_iterations" validate:"gte=0"`

	Runs int   `yaml:"runs" validate:"gte=1"`
	Seed int64 `yaml:"seed"`

	Phi                 float64   `yaml:"phi" validate:"gte=0,lte=1"`
	DepthOfSearch       []float64 `yaml:"depth_of_search" validate:"omitempty,dive,gte=0,lte=1"`
	IntensityOfMutation []float64 `yaml:"intensity_of_mutation" validate:"omitempty,dive,gte=0,lte=1"`

	Instances []InstanceConfig `yaml:"instances" validate:"required,min=1,dive"`

	Out        string `yaml:"out"`
	MetricsOut string `yaml:"metrics_out"`
	Verbose    bool   `yaml:"verbose"`
}

// InstanceConfig - экземпляр flow-shop: файл в формате Тайярда либо
// случайная генерация jobs x machines с сидом Seed.
type InstanceConfig struct {
	Path     string `yaml:"path"`
	Jobs     int    `yaml:"jobs" validate:"required_without=Path,gte=0"`
	Machines int    `yaml:"machines" validate:"required_without=Path,gte=0"`
	Seed     int64  `yaml:"seed"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Strategies: []string{StrategySCF},
		TimeLimit:  "10s",
		Runs:       1,
		Seed:       5678,
		Phi:        0.50,
		Instances: []InstanceConfig{
			{Jobs: 20, Machines: 5, Seed: 1234},
		},
		Out: "artifacts/results.csv",
	}
}

// Load читает YAML поверх значений по умолчанию; отсутствующий файл - не ошибка.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := cfg.applyEnvOverrides(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides - HH_TIME_LIMIT и HH_SEED перекрывают файл.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HH_TIME_LIMIT"); v != "" {
		c.TimeLimit = v
	}
	if v := os.Getenv("HH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("HH_SEED: %w", err)
		}
		c.Seed = seed
	}
	return nil
}

// Timeout разбирает TimeLimit; пустая строка означает «без ограничения по времени».
func (c *Config) Timeout() (time.Duration, error) {
	if c.TimeLimit == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.TimeLimit)
	if err != nil {
		return 0, fmt.Errorf("time_limit: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("time_limit должно быть >= 0 (получено %s)", d)
	}
	return d, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	d, err := c.Timeout()
	if err != nil {
		return err
	}
	if d == 0 && c.MaxIterations == 0 {
		return errors.New("должно быть задано time_limit > 0 или max_iterations > 0")
	}
	return nil
}
