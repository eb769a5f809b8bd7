package flowshop

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

type Instance struct {
	Jobs     int
	Machines int
	// ProcTimes length must be Jobs*Machines.
	ProcTimes []int
}

func NewInstance(jobs, machines int, procTimes []int) (*Instance, error) {
	inst := &Instance{Jobs: jobs, Machines: machines, ProcTimes: procTimes}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.ProcTimes) != inst.Jobs*inst.Machines {
		return fmt.Errorf("procTimes length must be jobs*machines=%d (got %d)", inst.Jobs*inst.Machines, len(inst.ProcTimes))
	}
	for i, v := range inst.ProcTimes {
		if v < 0 {
			return fmt.Errorf("procTimes[%d] must be >= 0 (got %d)", i, v)
		}
	}
	return nil
}

func (inst *Instance) Time(job, machine int) int {
	return inst.ProcTimes[job*inst.Machines+machine]
}

// RandomInstance генерирует экземпляр с временами обработки в [minTime, maxTime].
func RandomInstance(jobs, machines, minTime, maxTime int, rng *rand.Rand) (*Instance, error) {
	if rng == nil {
		return nil, errors.New("генератор случайных чисел не инициализирован (nil)")
	}
	if minTime < 0 || maxTime < 0 || maxTime < minTime {
		return nil, fmt.Errorf("invalid time bounds [%d,%d]", minTime, maxTime)
	}
	if err := checkDims(jobs, machines); err != nil {
		return nil, err
	}
	pt := make([]int, jobs*machines)
	span := maxTime - minTime + 1
	for i := range pt {
		pt[i] = minTime
		if span > 1 {
			pt[i] += rng.Intn(span)
		}
	}
	return NewInstance(jobs, machines, pt)
}

// MaxInstanceSize ограничивает jobs*machines при чтении и генерации экземпляров.
const MaxInstanceSize = 1 << 24

func checkDims(jobs, machines int) error {
	if jobs <= 0 || machines <= 0 {
		return fmt.Errorf("jobs and machines must be > 0 (got %dx%d)", jobs, machines)
	}
	if jobs > MaxInstanceSize/machines {
		return fmt.Errorf("instance %dx%d exceeds %d processing times", jobs, machines, MaxInstanceSize)
	}
	return nil
}

// ReadInstance читает экземпляр в одном из двух видов:
//   - файл Тайярда: текстовые заголовки, строка «jobs machines seed UB LB»,
//     затем «processing times :» и матрица; читается первый экземпляр файла;
//   - сокращённый: «jobs machines» и сразу матрица.
//
// Матрица записана построчно по станкам (machines x jobs).
func ReadInstance(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	// В файлах Тайярда слова без цифр - подписи, они пропускаются
	taillard := false
	first := true

	next := func(what string) (int, error) {
		for {
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return 0, err
				}
				return 0, fmt.Errorf("unexpected end of input while reading %s", what)
			}
			tok := sc.Text()
			if first {
				first = false
				taillard = !strings.ContainsAny(tok, "0123456789")
			}
			if taillard && !strings.ContainsAny(tok, "0123456789") {
				continue
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", what, err)
			}
			return v, nil
		}
	}

	jobs, err := next("jobs")
	if err != nil {
		return nil, err
	}
	machines, err := next("machines")
	if err != nil {
		return nil, err
	}
	if err := checkDims(jobs, machines); err != nil {
		return nil, err
	}
	if taillard {
		for _, what := range []string{"initial seed", "upper bound", "lower bound"} {
			if _, err := next(what); err != nil {
				return nil, err
			}
		}
	}

	pt := make([]int, jobs*machines)
	for m := 0; m < machines; m++ {
		for j := 0; j < jobs; j++ {
			v, err := next(fmt.Sprintf("time[machine=%d job=%d]", m, j))
			if err != nil {
				return nil, err
			}
			pt[j*machines+m] = v
		}
	}
	return NewInstance(jobs, machines, pt)
}
