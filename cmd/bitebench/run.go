package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/rwcarlsen/biteopt/bench"
	"github.com/rwcarlsen/biteopt/bite"
)

var (
	funcName string
	iters    int
	attempts int
	depth    int
	stopc    int
	popSize  int
	seed     int64
	tol      float64
	runs     int
	dbPath   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the solver against a benchmark function",
	Long: `Minimizes the named benchmark function (see "bitebench list") and
reports whether the known optimum was matched within tolerance.  With
--runs above 1, repeats with distinct seeds and reports statistics.`,
	RunE: runBenchmark,
}

func init() {
	runCmd.Flags().StringVar(&funcName, "func", "", "Benchmark function name (required)")
	runCmd.Flags().IntVar(&iters, "iters", 20000, "Iterations per attempt")
	runCmd.Flags().IntVar(&attempts, "attempts", 10, "Restart attempts")
	runCmd.Flags().IntVar(&depth, "depth", 1, "Ensemble depth")
	runCmd.Flags().IntVar(&stopc, "stopc", 0, "Plateau stop multiplier (0 disables)")
	runCmd.Flags().IntVar(&popSize, "pop", 0, "Population size override (0 uses the default formula)")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	runCmd.Flags().Float64Var(&tol, "tol", 0.01, "Relative convergence tolerance")
	runCmd.Flags().IntVar(&runs, "runs", 1, "Independent seeded runs")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Record progress to this sqlite database")

	runCmd.MarkFlagRequired("func")
	rootCmd.AddCommand(runCmd)
}

func lookupFunc(name string) (bench.Func, error) {
	for _, fn := range bench.AllFuncs {
		if fn.Name() == name {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("unknown benchmark function %q", name)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	fn, err := lookupFunc(funcName)
	if err != nil {
		return err
	}

	opts := []bite.Option{
		bite.Attempts(attempts),
		bite.Depth(depth),
		bite.Seed(seed),
	}
	if stopc > 0 {
		opts = append(opts, bite.StopCrit(stopc))
	}
	if popSize > 0 {
		opts = append(opts, bite.PopSize(popSize))
	}

	if dbPath != "" {
		db, err := sql.Open("sqlite3", dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		opts = append(opts, bite.DB(db))
	}

	optimum := fn.Optima()[0].Val
	slog.Info("Starting benchmark", "func", fn.Name(), "optimum", optimum,
		"iters", iters, "attempts", attempts, "depth", depth)

	if runs > 1 {
		start := time.Now()
		s, err := bench.RunStats(fn, tol, iters, runs, opts...)
		if err != nil {
			return err
		}

		slog.Info("Finished runs", "func", fn.Name(),
			"runs", s.Runs, "successes", s.Successes,
			"meanEvals", s.MeanEvals, "stdEvals", s.StdEvals,
			"medianEvals", s.MedianEvals,
			"meanCost", s.MeanCost, "stdCost", s.StdCost,
			"elapsed", time.Since(start))
		return nil
	}

	start := time.Now()
	best, neval, err := bench.Benchmark(fn, tol, iters, opts...)
	elapsed := time.Since(start)

	if err != nil {
		slog.Error("No convergence", "func", fn.Name(), "evals", neval,
			"optimum", optimum, "best", best.Val, "elapsed", elapsed)
		return err
	}

	slog.Info("Converged", "func", fn.Name(), "evals", neval,
		"optimum", optimum, "best", best.Val, "x", best.Pos,
		"elapsed", elapsed)
	return nil
}
