package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hyperflow/internal/flowshop"
	"hyperflow/internal/hh"
	"hyperflow/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

type Case struct {
	Jobs         int
	Machines     int
	InstanceSeed int64
	// Instance задаёт готовый экземпляр; иначе он генерируется по InstanceSeed.
	Instance *flowshop.Instance
}

type Record struct {
	Algo     string
	Jobs     int
	Machines int
	Runs     int

	TimeMeanMs float64
	TimeStdMs  float64

	ObjectiveBest float64
	ObjectiveMean float64
	ObjectiveStd  float64

	IterationsMean float64
}

type Runner struct {
	Runs      int
	BaseSeed  int64
	TimeLimit time.Duration
	// MaxIterations - необязательный лимит итераций на запуск (0 - без лимита).
	MaxIterations int
	Log           *zap.Logger
}

// RunCase запускает алгоритм Runs раз: задача получает сид runSeed = BaseSeed+i,
// гиперэвристика - runSeed+1.
func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	inst := c.Instance
	if inst == nil {
		var err error
		inst, err = flowshop.RandomInstance(c.Jobs, c.Machines, 1, 99, randForSeed(c.InstanceSeed))
		if err != nil {
			return Record{}, err
		}
	}

	bests := make([]float64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	iterations := make([]int, 0, r.Runs)

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)
		runID := uuid.NewString()

		op, err := algo.Factory(runSeed + 1)
		if err != nil {
			return Record{}, fmt.Errorf("run %d: %w", i, err)
		}
		problem, err := flowshop.NewDomain(inst, randForSeed(runSeed))
		if err != nil {
			return Record{}, fmt.Errorf("run %d: %w", i, err)
		}

		run := hh.NewRun(r.TimeLimit, hh.WithMaxIterations(r.MaxIterations))
		res, err := op.Solve(ctx, problem, run)
		if err != nil && ctx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if math.IsInf(res.Best, 0) {
			return Record{}, fmt.Errorf("run %d: no objective value observed", i)
		}

		log.Info("run finished",
			zap.String("run_id", runID),
			zap.String("algo", algo.Name),
			zap.Int64("seed", runSeed),
			zap.Float64("best", res.Best),
			zap.Int("iterations", res.Iterations),
			zap.Duration("elapsed", res.Duration))

		bests = append(bests, res.Best)
		timesMs = append(timesMs, float64(res.Duration.Microseconds())/1000.0)
		iterations = append(iterations, res.Iterations)
	}

	objStats := CalcFloatStats(bests)
	tStats := CalcFloatStats(timesMs)
	itStats := CalcIntStats(iterations)

	return Record{
		Algo:     algo.Name,
		Jobs:     inst.Jobs,
		Machines: inst.Machines,
		Runs:     r.Runs,

		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		ObjectiveBest: objStats.Best,
		ObjectiveMean: objStats.Mean,
		ObjectiveStd:  objStats.Std,

		IterationsMean: itStats.Mean,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "jobs", "machines", "runs",
		"time_mean_ms", "time_std_ms",
		"objective_best", "objective_mean", "objective_std",
		"iterations_mean",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			ftoa(r.ObjectiveBest),
			ftoa(r.ObjectiveMean),
			ftoa(r.ObjectiveStd),

			ftoa(r.IterationsMean),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
