package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"lintang/cityrouter/pkg/config"
	"lintang/cityrouter/pkg/kv"
	"lintang/cityrouter/pkg/mapparser"
	"lintang/cityrouter/pkg/service"
	"lintang/cityrouter/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

var (
	mapFile    = flag.String("f", "data/simmap.txt", "map file with I (intersection) and R (road) records")
	configFile = flag.String("config", "", "yaml config file, defaults are used when empty")
	seed       = flag.Int64("seed", 333, "environment simulation seed")
	randomSeed = flag.Bool("random-seed", false, "draw the simulation seed from the clock")
	startID    = flag.Int("start", 1, "start location id")
	endID      = flag.Int("end", 35, "end location id")
	rate       = flag.Float64("rate", 0, "risk ceiling step, 0 uses the config value")
	maxRoutes  = flag.Int("max", 5, "route cap K, the sweep stops once it holds more than K routes; 0 uses the config value")
	threshold  = flag.Float64("threshold", 0, "highest risk ceiling tried, 0 uses the config value")
	verbose    = flag.Bool("v", false, "debug logging")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
	dumpMetric = flag.Bool("metrics", false, "print collected metrics before exiting")
	pairs      = flag.String("pairs", "", "comma separated start-end pairs answered concurrently, e.g. 1-35,3-30")
	numWorkers = flag.Int("workers", 0, "workers for -pairs, 0 uses GOMAXPROCS")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run returns instead of exiting so that deferred profile and store cleanup always happen.
func run() error {
	if *cpuprofile != "" {
		// ./bin/cityrouter -cpuprofile=cityroutercpu.prof -memprofile=cityroutermem.mprof
		f, err := os.Create(*cpuprofile)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			return err
		}
	}

	logger.Info("reading map file", slog.String("path", *mapFile))
	g, err := mapparser.ParseFile(*mapFile)
	if err != nil {
		return err
	}
	if err := recordMemProfile(memprofile, "load_map"); err != nil {
		return err
	}

	db, err := kv.OpenInMemory()
	if err != nil {
		return err
	}
	store := kv.NewConditionStore(db)
	defer store.Close()

	reg := prometheus.NewRegistry()
	m := service.NewMetrics(reg)

	navigatorSvc, err := service.NewNavigationService(g, cfg, store, m, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if *randomSeed {
		_, err = navigatorSvc.GenerateRandomSimulation(ctx)
	} else {
		_, err = navigatorSvc.LoadSimulation(ctx, *seed)
	}
	if err != nil {
		return err
	}
	if err := recordMemProfile(memprofile, "load_simulation"); err != nil {
		return err
	}

	reqs := []service.ComputeRoutesRequest{{Start: *startID, End: *endID}}
	if *pairs != "" {
		reqs, err = parsePairs(*pairs)
		if err != nil {
			return err
		}
	}
	for i := range reqs {
		reqs[i].RiskRate = *rate
		reqs[i].MaxRoutes = *maxRoutes
		reqs[i].Threshold = *threshold
	}

	for _, res := range navigatorSvc.ComputeRoutesBatch(ctx, reqs, *numWorkers) {
		fmt.Printf("Computing route from location %d to location %d\n", res.Request.Start, res.Request.End)
		if res.Err != nil {
			fmt.Printf("Error: %v\n", res.Err)
			continue
		}
		printRoutes(res.Routes)
	}

	if *dumpMetric {
		families, err := reg.Gather()
		if err != nil {
			return err
		}
		return writeMetrics(os.Stdout, families)
	}
	return nil
}

func printRoutes(routes []service.RouteResult) {
	fmt.Printf("Routes computed: %d\n", len(routes))
	for _, r := range routes {
		fmt.Printf("Route Length: %s mins, Safety Risk: %s\n",
			util.FormatFixed(r.TimeMinutes, 2), util.FormatFixed(r.SafetyRisk, 4))
		fmt.Println(r.Route)
		fmt.Println(r.Directions)
		fmt.Println(r.Polyline)
	}
}

func parsePairs(s string) ([]service.ComputeRoutesRequest, error) {
	reqs := make([]service.ComputeRoutesRequest, 0)
	for _, pair := range strings.Split(s, ",") {
		ids := strings.Split(strings.TrimSpace(pair), "-")
		if len(ids) != 2 {
			return nil, fmt.Errorf("invalid pair %q, want start-end", pair)
		}
		start, err := strconv.Atoi(ids[0])
		if err != nil {
			return nil, fmt.Errorf("invalid pair %q: %w", pair, err)
		}
		end, err := strconv.Atoi(ids[1])
		if err != nil {
			return nil, fmt.Errorf("invalid pair %q: %w", pair, err)
		}
		reqs = append(reqs, service.ComputeRoutesRequest{Start: start, End: end})
	}
	return reqs, nil
}

func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

func recordMemProfile(memprofile *string, name string) error {
	if *memprofile == "" {
		return nil
	}
	path := strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return pprof.WriteHeapProfile(f)
}
