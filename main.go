package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rhartert/gluon/internal/dimacs"
	"github.com/rhartert/gluon/internal/sat"
)

var flagTimeout = flag.Duration(
	"timeout",
	60*time.Second,
	"wall-clock budget before the solver reports INDEFINITE",
)

var flagGzip = flag.Bool(
	"gzip",
	false,
	"read the instance as a gzip compressed file",
)

var flagCPUProfile = flag.Bool(
	"cpuprof",
	false,
	"save pprof CPU profile in cpuprof",
)

var flagMemProfile = flag.Bool(
	"memprof",
	false,
	"save pprof memory profile in memprof",
)

type config struct {
	instanceFile string
	timeout      time.Duration
	gzipped      bool
	memProfile   bool
	cpuProfile   bool
}

func parseConfig() (*config, error) {
	flag.Parse()

	if flag.NArg() == 0 || flag.Arg(0) == "" {
		return nil, fmt.Errorf("missing instance file")
	}
	return &config{
		instanceFile: flag.Arg(0),
		timeout:      *flagTimeout,
		gzipped:      *flagGzip,
		memProfile:   *flagMemProfile,
		cpuProfile:   *flagCPUProfile,
	}, nil
}

func run(cfg *config) error {
	ops := sat.DefaultOptions
	ops.Timeout = cfg.timeout
	ops.Verbose = true
	s := sat.NewSolver(ops)

	if err := dimacs.LoadDIMACS(cfg.instanceFile, cfg.gzipped, s); err != nil {
		return fmt.Errorf("could not parse instance: %w", err)
	}

	t := time.Now()
	status := s.Solve()
	elapsed := time.Since(t)

	// The single verdict line on stdout is the authoritative output;
	// everything else goes to stderr.
	fmt.Printf("%s,%d,%f\n", status, s.TotalConflicts, elapsed.Seconds())
	return nil
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.cpuProfile {
		f, err := os.Create("cpuprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile {
		f, err := os.Create("memprof")
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
