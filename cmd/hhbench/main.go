package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hyperflow/internal/bench"
	"hyperflow/internal/config"
	"hyperflow/internal/flowshop"
	"hyperflow/internal/hh"
	"hyperflow/internal/logging"
	"hyperflow/internal/metrics"
)

// options - значения флагов; применяются поверх файла конфигурации,
// только если флаг задан явно.
type options struct {
	configPath string
	verbose    bool
	metricsOut string

	strategy      string
	algos         string
	pairs         string
	instancePath  string
	instanceSeed  int64
	timeLimit     string
	maxIterations int
	runs          int
	seed          int64
	phi           float64
	dos           []float64
	iom           []float64
	out           string
}

const defaultInstanceSeed int64 = 1234

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "hhbench",
		Short:         "Selection hyper-heuristics (RN, MCF, SCF) on permutation flow-shop",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "hhbench.yaml", "путь к YAML-файлу конфигурации")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "журнал уровня debug (трассировка итераций)")
	root.PersistentFlags().StringVar(&o.metricsOut, "metrics-out", "", "файл для метрик Prometheus в текстовом формате")
	root.PersistentFlags().StringVarP(&o.timeLimit, "time", "t", "", "бюджет времени одного запуска, например 10s")
	root.PersistentFlags().IntVar(&o.maxIterations, "max-iterations", 0, "лимит итераций одного запуска (0 - без лимита)")
	root.PersistentFlags().Int64Var(&o.seed, "seed", 0, "сид запуска: задача получает seed, гиперэвристика seed+1 (для bench - базовый)")
	root.PersistentFlags().Float64Var(&o.phi, "phi", 0, "начальный вес phi для MCF/SCF")
	root.PersistentFlags().Float64SliceVarP(&o.dos, "dos", "d", nil, "значения depth of search по эвристикам, использующим параметр")
	root.PersistentFlags().Float64SliceVarP(&o.iom, "iom", "i", nil, "значения intensity of mutation по эвристикам, использующим параметр")
	root.PersistentFlags().StringVarP(&o.instancePath, "instance", "p", "", "файл экземпляра в формате Тайярда")
	root.PersistentFlags().Int64Var(&o.instanceSeed, "instance-seed", 0, "сид генерации экземпляра")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Один запуск стратегии; печатает лучшее значение целевой функции",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, o, stdout)
		},
	}
	runCmd.Flags().StringVarP(&o.strategy, "strategy", "s", "", "стратегия: rn | mcf | scf")
	runCmd.Flags().StringVar(&o.pairs, "pair", "", "случайный экземпляр: работы x станки, например 20x5")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Серия запусков по сидам и экземплярам с выводом в CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, o, stdout)
		},
	}
	benchCmd.Flags().StringVar(&o.algos, "algos", "", "список стратегий через запятую: rn,mcf,scf")
	benchCmd.Flags().StringVar(&o.pairs, "pairs", "", "конфигурации: количество работ x количество станков (через запятую)")
	benchCmd.Flags().IntVar(&o.runs, "runs", 0, "количество запусков каждой стратегии (с разными сидами)")
	benchCmd.Flags().StringVar(&o.out, "out", "", "путь к выходному CSV-файлу")

	root.AddCommand(runCmd, benchCmd)
	return root
}

// loadConfig читает файл и накладывает явно заданные флаги.
func loadConfig(cmd *cobra.Command, o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbose") {
		cfg.Verbose = o.verbose
	}
	if changed("metrics-out") {
		cfg.MetricsOut = o.metricsOut
	}
	if changed("time") {
		cfg.TimeLimit = o.timeLimit
	}
	if changed("max-iterations") {
		cfg.MaxIterations = o.maxIterations
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("phi") {
		cfg.Phi = o.phi
	}
	if changed("dos") {
		cfg.DepthOfSearch = o.dos
	}
	if changed("iom") {
		cfg.IntensityOfMutation = o.iom
	}
	if changed("strategy") {
		cfg.Strategies = []string{o.strategy}
	}
	if changed("algos") {
		cfg.Strategies = splitCSV(o.algos)
	}
	if changed("runs") {
		cfg.Runs = o.runs
	}
	if changed("out") {
		cfg.Out = o.out
	}
	if changed("pairs") || changed("pair") {
		base := defaultInstanceSeed
		if changed("instance-seed") {
			base = o.instanceSeed
		}
		instances, err := parsePairs(o.pairs, base)
		if err != nil {
			return nil, err
		}
		cfg.Instances = instances
	}
	if changed("instance") {
		cfg.Instances = []config.InstanceConfig{{Path: o.instancePath}}
	}
	if changed("instance-seed") && !changed("pairs") && !changed("pair") {
		for i := range cfg.Instances {
			cfg.Instances[i].Seed = o.instanceSeed
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSingle(cmd *cobra.Command, o *options, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	algos, err := algorithms(cfg, log, metrics.New(reg))
	if err != nil {
		return err
	}
	algo, ok := algos[cfg.Strategies[0]]
	if !ok {
		return fmt.Errorf("стратегия %q не предоставлена; доступные: %v", cfg.Strategies[0], keys(algos))
	}
	cs, err := cases(cfg)
	if err != nil {
		return err
	}
	limit, err := cfg.Timeout()
	if err != nil {
		return err
	}

	c := cs[0]
	inst := c.Instance
	if inst == nil {
		inst, err = flowshop.RandomInstance(c.Jobs, c.Machines, 1, 99, newRand(c.InstanceSeed))
		if err != nil {
			return err
		}
	}
	problem, err := flowshop.NewDomain(inst, newRand(cfg.Seed))
	if err != nil {
		return err
	}
	solver, err := algo.Factory(cfg.Seed + 1)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log.Info("starting run",
		zap.String("run_id", runID),
		zap.String("algorithm", solver.Name()),
		zap.Int("jobs", inst.Jobs),
		zap.Int("machines", inst.Machines),
		zap.Duration("time_limit", limit),
		zap.Int64("seed", cfg.Seed))

	run := hh.NewRun(limit, hh.WithMaxIterations(cfg.MaxIterations))
	res, err := solver.Solve(cmd.Context(), problem, run)
	if err != nil {
		return err
	}
	log.Info("run finished",
		zap.String("run_id", runID),
		zap.Float64("best", res.Best),
		zap.Int("iterations", res.Iterations),
		zap.Any("meta", res.Meta))

	fmt.Fprintln(stdout, strconv.FormatFloat(res.Best, 'f', -1, 64))
	return writeMetrics(cfg.MetricsOut, reg)
}

func runBench(cmd *cobra.Command, o *options, stdout io.Writer) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	available, err := algorithms(cfg, log, metrics.New(reg))
	if err != nil {
		return err
	}
	var selected []bench.Algorithm
	for _, a := range cfg.Strategies {
		al, ok := available[a]
		if !ok {
			return fmt.Errorf("стратегия %q не предоставлена; доступные: %v", a, keys(available))
		}
		selected = append(selected, al)
	}
	cs, err := cases(cfg)
	if err != nil {
		return err
	}
	limit, err := cfg.Timeout()
	if err != nil {
		return err
	}

	runner := bench.Runner{
		Runs:          cfg.Runs,
		BaseSeed:      cfg.Seed,
		TimeLimit:     limit,
		MaxIterations: cfg.MaxIterations,
		Log:           log,
	}

	ctx := cmd.Context()
	var records []bench.Record
	for _, c := range cs {
		for _, a := range selected {
			fmt.Fprintf(stdout, "Запущена стратегия %s; %d работ %d машин (общее кол-во запусков=%d)...\n", a.Name, c.Jobs, c.Machines, runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return err
			}
			records = append(records, rec)

			fmt.Fprintf(stdout, "  Значение целевой функции: лучшее=%.0f среднее=%.2f стандартное отклонение=%.2f | Итераций в среднем=%.1f\n",
				rec.ObjectiveBest, rec.ObjectiveMean, rec.ObjectiveStd, rec.IterationsMean)
		}
	}

	if err := bench.WriteCSV(cfg.Out, records); err != nil {
		return fmt.Errorf("ошибка при записи в CSV: %w", err)
	}
	fmt.Fprintln(stdout, "Saved:", cfg.Out)
	return writeMetrics(cfg.MetricsOut, reg)
}

func writeMetrics(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			return err
		}
	}
	return nil
}

// helpers

func parsePairs(s string, baseInstanceSeed int64) ([]config.InstanceConfig, error) {
	parts := splitCSV(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("не задано ни одной пары работы x станки")
	}
	out := make([]config.InstanceConfig, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x10", p)
		}
		jobs, err := atoiStrict(jm[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := atoiStrict(jm[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		out = append(out, config.InstanceConfig{
			Jobs:     jobs,
			Machines: machines,
			Seed:     bench.CaseSeed(baseInstanceSeed, i, jobs, machines),
		})
	}

	return out, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func atoiStrict(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
