package rn

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
	Name = "RN_NA_HH"

	currentSlot   = 0
	candidateSlot = 1
)

// Solver - случайный выбор эвристики и наивный критерий принятия:
// улучшения принимаются всегда, остальное - с вероятностью 0.5.
type Solver struct {
	Cfg     Config
	Rng     *rand.Rand
	Log     *zap.Logger
	Metrics *metrics.Recorder
}

// New возвращает новый RN-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve - основной цикл: работает до истечения бюджета run.
func (s *Solver) Solve(ctx context.Context, p hh.Problem, run *hh.Run) (opt.Result, error) {
	run.Start()

	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	log := s.logger()

	catalog, err := hh.BuildCatalog(p, s.Cfg.DepthOfSearch, s.Cfg.IntensityOfMutation)
	if err != nil {
		return opt.Result{}, err
	}
	candidates := catalog.Candidates

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
		zap.Float64("initial", current))

	accepted, rejected := 0, 0
	for {
		// Отмена проверяется до опроса бюджета: прерванная итерация не засчитывается
		if err := ctx.Err(); err != nil {
			return s.result(run, accepted, rejected, "context"), err
		}
		if run.HasTimeExpired() {
			break
		}

		h := catalog.Heuristic(candidates[s.Rng.Intn(len(candidates))])

		// Кандидат пишется в отдельный слот, пока не решено, принимать ли его
		value, err := hh.Apply(p, h, currentSlot, candidateSlot)
		if err != nil {
			return s.result(run, accepted, rejected, "error"), err
		}
		run.Observe(value)
		s.Metrics.Applied(Name, h.ID)

		delta := current - value
		accept := delta > 0
		if !accept {
			// Неулучшающий ход принимается с вероятностью 0.5
			accept = s.Rng.Intn(2) == 1
		}

		if accept {
			if err := p.CopySolution(candidateSlot, currentSlot); err != nil {
				return s.result(run, accepted, rejected, "error"), err
			}
			current = value
			accepted++
		} else {
			rejected++
		}
		s.Metrics.Decision(Name, accept)

		if ce := log.Check(zapcore.DebugLevel, "heuristic applied"); ce != nil {
			ce.Write(
				zap.Int("iteration", run.Iterations()),
				zap.Int("heuristic", h.ID),
				zap.Float64("candidate", value),
				zap.Float64("delta", delta),
				zap.Bool("accepted", accept),
			)
		}
	}

	res := s.result(run, accepted, rejected, "time")
	s.Metrics.Best(Name, res.Best)
	log.Info("hyper-heuristic finished",
		zap.String("strategy", Name),
		zap.Float64("best", res.Best),
		zap.Int("iterations", res.Iterations),
		zap.Duration("elapsed", res.Duration))
	return res, nil
}

func (s *Solver) result(run *hh.Run, accepted, rejected int, stopped string) opt.Result {
	return opt.Result{
		Strategy:   Name,
		Best:       run.BestSolutionValue(),
		Iterations: run.Iterations(),
		Duration:   run.Elapsed(),
		Meta: map[string]any{
			"stopped":  stopped,
			"accepted": accepted,
			"rejected": rejected,
		},
	}
}

func (s *Solver) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
