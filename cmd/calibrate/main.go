// Command calibrate measures scalar, parallel and vectorised throughput of
// Sum and Add over a size sweep and suggests ParallelThreshold and
// VectorThreshold values for this machine.
//
// Usage:
//
//	go run ./cmd/calibrate -kind float32 -min 256 -max 1048576 -reps 15
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/hupe1980/tensgo"
	"github.com/hupe1980/tensgo/codec"
	"github.com/hupe1980/tensgo/dtype"
	"github.com/hupe1980/tensgo/engine"
	"github.com/hupe1980/tensgo/internal/simd"
	"github.com/hupe1980/tensgo/memory"
)

var (
	kindFlag = flag.String("kind", "float32", "element kind (float32, float64, int32, ...)")
	minSize  = flag.Int("min", 256, "smallest element count")
	maxSize  = flag.Int("max", 1<<20, "largest element count")
	reps     = flag.Int("reps", 15, "repetitions per measurement")
	workers  = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	jsonOut  = flag.Bool("json", false, "print the report as JSON")
	verbose  = flag.Bool("v", false, "debug logging")
)

func main() {
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := tensgo.NewTextLogger(level)

	kind, ok := dtype.ParseKind(*kindFlag)
	if !ok {
		log.Fatalf("unknown kind %q", *kindFlag)
	}
	if *reps < 1 || *minSize < 1 || *maxSize < *minSize {
		log.Fatal("need reps >= 1 and 1 <= min <= max")
	}

	pool := memory.NewPool(memory.Config{Logger: logger.Logger})
	defer pool.Close()
	exec := engine.NewWorkerPool(*workers)
	defer exec.Close()

	report, err := run(kind, config{minSize: *minSize, maxSize: *maxSize, reps: *reps}, pool, exec)
	if err != nil {
		log.Fatal(err)
	}
	report.ISA = simd.ActiveISA().String()

	if *jsonOut {
		data, err := codec.GoJSON{}.MarshalIndent(report)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(string(data))
		return
	}
	printReport(report)
}

func run(kind dtype.Kind, cfg config, pool *memory.Pool, exec engine.Executor) (*Report, error) {
	var (
		samples []Sample
		err     error
	)
	switch kind {
	case dtype.Float32:
		samples, err = sweep[float32](cfg, pool, exec)
	case dtype.Float64:
		samples, err = sweep[float64](cfg, pool, exec)
	case dtype.Int8:
		samples, err = sweep[int8](cfg, pool, exec)
	case dtype.Int16:
		samples, err = sweep[int16](cfg, pool, exec)
	case dtype.Int32:
		samples, err = sweep[int32](cfg, pool, exec)
	case dtype.Int64:
		samples, err = sweep[int64](cfg, pool, exec)
	case dtype.Uint8:
		samples, err = sweep[uint8](cfg, pool, exec)
	case dtype.Uint16:
		samples, err = sweep[uint16](cfg, pool, exec)
	case dtype.Uint32:
		samples, err = sweep[uint32](cfg, pool, exec)
	case dtype.Uint64:
		samples, err = sweep[uint64](cfg, pool, exec)
	default:
		return nil, fmt.Errorf("unsupported kind %s", kind)
	}
	if err != nil {
		return nil, err
	}

	return &Report{
		Kind:              kind.String(),
		Workers:           exec.Workers(),
		Samples:           samples,
		ParallelThreshold: crossover(samples, engine.StrategyScalar, engine.StrategyParallel),
		VectorThreshold:   crossover(samples, engine.StrategyParallel, engine.StrategyVector),
	}, nil
}

func printReport(r *Report) {
	fmt.Printf("kind=%s isa=%s workers=%d\n\n", r.Kind, r.ISA, r.Workers)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "op\tsize\tstrategy\tmedian\tns/elem\t")
	for _, s := range r.Samples {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.3f\t\n", s.Op, s.Size, s.Strategy, s.Median, s.NsPerElement())
	}
	_ = tw.Flush()

	fmt.Println()
	printThreshold("ParallelThreshold", r.ParallelThreshold, engine.DefaultParallelThreshold)
	printThreshold("VectorThreshold", r.VectorThreshold, engine.DefaultVectorThreshold)
}

func printThreshold(name string, got, def int) {
	if got == 0 {
		fmt.Printf("%s: no stable crossover in range (default %d)\n", name, def)
		return
	}
	fmt.Printf("%s: %d (default %d)\n", name, got, def)
}
