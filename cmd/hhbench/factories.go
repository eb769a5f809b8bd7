package main

import (
	"fmt"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"hyperflow/internal/bench"
	"hyperflow/internal/config"
	"hyperflow/internal/flowshop"
	"hyperflow/internal/mcf"
	"hyperflow/internal/metrics"
	"hyperflow/internal/opt"
	"hyperflow/internal/rn"
	"hyperflow/internal/scf"
)

// Фабрики

func newRNFactory(cfg rn.Config, log *zap.Logger, rec *metrics.Recorder) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := rn.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Log = log
		solver.Metrics = rec
		return solver, nil
	}
}

func newMCFFactory(cfg mcf.Config, log *zap.Logger, rec *metrics.Recorder) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := mcf.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Log = log
		solver.Metrics = rec
		return solver, nil
	}
}

func newSCFFactory(cfg scf.Config, log *zap.Logger, rec *metrics.Recorder) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := scf.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Log = log
		solver.Metrics = rec
		return solver, nil
	}
}

// algorithms строит доступные стратегии по конфигурации; конфигурация
// каждой стратегии проверяется сразу, до первого запуска.
func algorithms(cfg *config.Config, log *zap.Logger, rec *metrics.Recorder) (map[string]bench.Algorithm, error) {
	rnCfg := rn.Config{
		DepthOfSearch:       cfg.DepthOfSearch,
		IntensityOfMutation: cfg.IntensityOfMutation,
	}
	if err := rnCfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфликт в конфигурации %s: %w", config.StrategyRN, err)
	}

	mcfCfg := mcf.Config{
		Phi:                 cfg.Phi,
		DepthOfSearch:       cfg.DepthOfSearch,
		IntensityOfMutation: cfg.IntensityOfMutation,
	}
	scfCfg := scf.Config{
		Phi:                 cfg.Phi,
		DepthOfSearch:       cfg.DepthOfSearch,
		IntensityOfMutation: cfg.IntensityOfMutation,
	}
	if err := scfCfg.Validate(); err != nil {
		return nil, fmt.Errorf("конфликт в конфигурации %s: %w", config.StrategySCF, err)
	}

	available := map[string]bench.Algorithm{
		config.StrategyRN:  {Name: rn.Name, Factory: newRNFactory(rnCfg, log, rec)},
		config.StrategySCF: {Name: scf.Name, Factory: newSCFFactory(scfCfg, log, rec)},
	}
	// MCF требует phi в [0.01, 0.99]; при другом phi стратегия недоступна
	if err := mcfCfg.Validate(); err == nil {
		available[config.StrategyMCF] = bench.Algorithm{Name: mcf.Name, Factory: newMCFFactory(mcfCfg, log, rec)}
	} else if contains(cfg.Strategies, config.StrategyMCF) {
		return nil, fmt.Errorf("конфликт в конфигурации %s: %w", config.StrategyMCF, err)
	}
	return available, nil
}

// cases строит конфигурации экземпляров; файлы читаются сразу.
func cases(cfg *config.Config) ([]bench.Case, error) {
	out := make([]bench.Case, 0, len(cfg.Instances))
	for _, ic := range cfg.Instances {
		if ic.Path == "" {
			out = append(out, bench.Case{Jobs: ic.Jobs, Machines: ic.Machines, InstanceSeed: ic.Seed})
			continue
		}
		f, err := os.Open(ic.Path)
		if err != nil {
			return nil, err
		}
		inst, err := flowshop.ReadInstance(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ic.Path, err)
		}
		out = append(out, bench.Case{Jobs: inst.Jobs, Machines: inst.Machines, Instance: inst})
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
