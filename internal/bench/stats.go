package bench

import "math"

type number interface {
	~int | ~int64 | ~float64
}

// Stats - выборочная статистика: минимум (лучшее при минимизации),
// среднее и несмещённое стандартное отклонение.
type Stats struct {
	N    int
	Best float64
	Mean float64
	Std  float64
}

func calcStats[T number](values []T) Stats {
	s := Stats{N: len(values)}
	if s.N == 0 {
		return s
	}

	best := float64(values[0])
	sum := 0.0
	for _, v := range values {
		f := float64(v)
		if f < best {
			best = f
		}
		sum += f
	}
	mean := sum / float64(s.N)

	variance := 0.0
	if s.N >= 2 {
		for _, v := range values {
			d := float64(v) - mean
			variance += d * d
		}
		variance /= float64(s.N - 1)
	}

	s.Best = best
	s.Mean = mean
	s.Std = math.Sqrt(variance)
	return s
}

func CalcIntStats(values []int) Stats { return calcStats(values) }

func CalcFloatStats(values []float64) Stats { return calcStats(values) }
