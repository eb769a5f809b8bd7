package scf

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"hyperflow/internal/hh"
	"hyperflow/internal/metrics"
	"hyperflow/internal/opt"
)

const (
	Name = "SCF_AM_HH"

	currentSlot = 0
)

// Solver - упрощённая функция выбора с критерием «принимать все ходы».
type Solver struct {
	Cfg     Config
	Rng     *rand.Rand
	Log     *zap.Logger
	Metrics *metrics.Recorder

	cf *ChoiceFunction
}

// New возвращает новый SCF-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng, Log: zap.NewNop()}, nil
}

func (s *Solver) Name() string { return Name }

// ChoiceFunction возвращает состояние функции выбора после Solve.
func (s *Solver) ChoiceFunction() *ChoiceFunction { return s.cf }

// Solve - основной цикл. Первые len(кандидатов) итераций эвристика выбирается
// случайно, далее - по оценке функции выбора.
func (s *Solver) Solve(ctx context.Context, p hh.Problem, run *hh.Run) (opt.Result, error) {
	run.Start()

	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	catalog, err := hh.BuildCatalog(p, s.Cfg.DepthOfSearch, s.Cfg.IntensityOfMutation)
	if err != nil {
		return opt.Result{}, err
	}
	catalog.TrackPerformance(run.StartedAt())
	candidates := catalog.Candidates

	cf := NewChoiceFunction(s.Cfg.Phi)
	s.cf = cf
	var sel hh.Selector = cf

	if err := p.InitialiseSolution(currentSlot); err != nil {
		return opt.Result{}, err
	}
	current, err := p.FunctionValue(currentSlot)
	if err != nil {
		return opt.Result{}, err
	}
	run.Observe(current)

	log.Info("hyper-heuristic started",
		zap.String("strategy", Name),
		zap.Int("heuristics", catalog.Len()),
		zap.Ints("candidates", candidates),
		zap.Float64("phi", cf.Phi()),
		zap.Float64("initial", current))

	bootstrap := len(candidates)
	chosen := candidates[0]
	for {
		// Отмена проверяется до опроса бюджета: прерванная итерация не засчитывается
		if err := ctx.Err(); err != nil {
			return s.result(run, "context"), err
		}
		if run.HasTimeExpired() {
			break
		}

		if bootstrap > 0 {
			chosen = candidates[s.Rng.Intn(len(candidates))]
			bootstrap--
		} else if id, ok := sel.Select(catalog, run.Now()); ok {
			chosen = id
		}
		h := catalog.Heuristic(chosen)

		before := run.Now()
		value, err := hh.Apply(p, h, currentSlot, currentSlot)
		after := run.Now()
		if err != nil {
			return s.result(run, "error"), err
		}
		run.Observe(value)
		s.Metrics.Applied(Name, h.ID)
		s.Metrics.Decision(Name, true)

		sel.Update(h, hh.Outcome{
			Before:    current,
			After:     value,
			AppliedAt: before,
			Took:      after - before,
		})
		current = value

		if ce := log.Check(zapcore.DebugLevel, "heuristic applied"); ce != nil {
			ce.Write(
				zap.Int("iteration", run.Iterations()),
				zap.Int("heuristic", h.ID),
				zap.Float64("objective", value),
				zap.Float64("phi", cf.Phi()),
			)
		}
	}

	res := s.result(run, "time")
	s.Metrics.Best(Name, res.Best)
	log.Info("hyper-heuristic finished",
		zap.String("strategy", Name),
		zap.Float64("best", res.Best),
		zap.Int("iterations", res.Iterations),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}

func (s *Solver) result(run *hh.Run, stopped string) opt.Result {
	meta := map[string]any{"stopped": stopped}
	if s.cf != nil {
		meta["phi"] = s.cf.Phi()
	}
	return opt.Result{
		Strategy:   Name,
		Best:       run.BestSolutionValue(),
		Iterations: run.Iterations(),
		Duration:   run.Elapsed(),
		Meta:       meta,
	}
}
