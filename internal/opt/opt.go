package opt

import (
	"context"
	"time"

	"hyperflow/internal/hh"
)

// Optimizer - гиперэвристика, работающая до истечения бюджета Run.
type Optimizer interface {
	Name() string
	Solve(ctx context.Context, p hh.Problem, run *hh.Run) (Result, error)
}

type Result struct {
	Strategy   string
	Best       float64
	Iterations int
	Duration   time.Duration
	Meta       map[string]any
}
