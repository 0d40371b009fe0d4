package environment

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/util"

	"golang.org/x/exp/rand"
)

const (
	northIdx = iota
	southIdx
	eastIdx
	westIdx
)

var dimensionOrder = [...]datastructure.ConditionDimension{
	datastructure.WEATHER,
	datastructure.TRAFFIC,
	datastructure.OBSTRUCTION,
}

type DimensionReport struct {
	Dimension datastructure.ConditionDimension
	Target    float64 // meters of road the dimension aimed to cover
	Covered   float64 // meters actually traversed by its clusters
	Clusters  int
	Truncated bool // stopped by MaxClusters before reaching Target
}

type Report struct {
	Seed        int64
	TotalLength float64
	Dimensions  []DimensionReport
	Duration    time.Duration
}

// Generator simulates clustered weather, traffic and obstruction conditions over a road graph.
// The result depends only on the graph, the seed and the config.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

func NewGenerator(cfg Config, logger *slog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{cfg: cfg, logger: logger}, nil
}

func (gen *Generator) Config() Config {
	return gen.cfg
}

// Generate builds the condition field of g for seed. Each call owns its random source, so
// concurrent calls are safe.
func (gen *Generator) Generate(ctx context.Context, g *datastructure.Graph, seed int64) (*datastructure.ConditionField, Report, error) {
	start := time.Now()
	sim := &simulation{
		g:      g,
		cfg:    gen.cfg,
		rng:    rand.New(rand.NewSource(uint64(seed))),
		logger: gen.logger,
	}

	report := Report{
		Seed:        seed,
		TotalLength: g.TotalLength(),
		Dimensions:  make([]DimensionReport, 0, len(dimensionOrder)),
	}
	builder := datastructure.NewConditionFieldBuilder(g.NumNodes(), g.NumEdges())
	for _, d := range dimensionOrder {
		dimReport, err := sim.simulateDimension(ctx, d, builder)
		if err != nil {
			return nil, Report{}, err
		}
		report.Dimensions = append(report.Dimensions, dimReport)
	}
	report.Duration = time.Since(start)

	gen.logger.Info("environment generated",
		slog.Int64("seed", seed),
		slog.Float64("total_length", report.TotalLength),
		slog.Int("nodes", g.NumNodes()),
		slog.Int("edges", g.NumEdges()),
		slog.Duration("duration", report.Duration),
	)
	return builder.Build(), report, nil
}

type simulation struct {
	g      *datastructure.Graph
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

func (s *simulation) uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

func (s *simulation) simulateDimension(ctx context.Context, d datastructure.ConditionDimension,
	builder *datastructure.ConditionFieldBuilder) (DimensionReport, error) {
	cov := s.cfg.coverage(d)
	n := s.g.NumNodes()
	field := newDimensionField(n)

	report := DimensionReport{
		Dimension: d,
		Target:    s.g.TotalLength() * s.uniform(cov.Min, cov.Max),
	}

	for report.Covered < report.Target {
		select {
		case <-ctx.Done():
			return DimensionReport{}, ctx.Err()
		default:
		}
		if s.cfg.MaxClusters > 0 && report.Clusters >= s.cfg.MaxClusters {
			report.Truncated = true
			s.logger.Warn("cluster limit reached before target coverage",
				slog.String("dimension", d.String()),
				slog.Int("clusters", report.Clusters),
				slog.Float64("covered", report.Covered),
				slog.Float64("target", report.Target),
			)
			break
		}

		epicenter := int32(s.rng.Intn(n))
		severity := s.uniform(s.cfg.LightDefault, s.cfg.SeverityBound)
		radius := s.uniform(0, report.Target-report.Covered)

		report.Covered += s.makeCluster(radius, epicenter, severity, field)
		report.Clusters++
	}

	for i := 0; i < n; i++ {
		if !field.assigned[i] {
			field.values[i] = s.rng.Float64() * s.cfg.LightDefault
			field.assigned[i] = true
		}
		builder.SetNode(int32(i), d, field.values[i])
	}
	for _, e := range s.g.Edges() {
		builder.SetEdge(e.ID, d, (field.values[e.From]+field.values[e.To])/2)
	}

	s.logger.Debug("dimension simulated",
		slog.String("dimension", d.String()),
		slog.Float64("target", report.Target),
		slog.Float64("covered", report.Covered),
		slog.Int("clusters", report.Clusters),
	)
	return report, nil
}

// makeCluster spreads severity breadth first from origin and returns the road length it traversed.
// Nodes are re-enqueued every time a neighbor expands, and the latest offset and arriving edge win.
// Distance from the origin is the euclidean norm of the summed north/south and east/west offsets.
func (s *simulation) makeCluster(radius float64, origin int32, severity float64, field *dimensionField) float64 {
	queue := []int32{origin}
	offsets := map[int32][4]float64{origin: {}}
	reachedBy := map[int32]int32{origin: -1}

	searchDistance := 0.0
	for len(queue) > 0 && searchDistance < radius {
		curr := queue[0]
		queue = queue[1:]

		currOffset := offsets[curr]
		dist := distanceFromOrigin(currOffset)
		decay := max(1.0-dist/radius, s.cfg.MinDecay)
		field.add(curr, decay*severity)

		if edgeID := reachedBy[curr]; edgeID >= 0 {
			searchDistance += s.g.GetEdge(edgeID).Length
		}

		if dist > radius {
			continue
		}
		for _, edgeID := range s.g.GetIncidentEdges(curr) {
			e := s.g.GetEdge(edgeID)
			next := s.g.Neighbor(e, curr)
			reachedBy[next] = edgeID
			offsets[next] = addOffset(currOffset, s.g.DirectionFrom(e, curr), e.Length)
			queue = append(queue, next)
		}
	}
	return searchDistance
}

func addOffset(offset [4]float64, dir datastructure.CardinalDirection, length float64) [4]float64 {
	switch dir {
	case datastructure.NORTH:
		offset[northIdx] += length
	case datastructure.SOUTH:
		offset[southIdx] += length
	case datastructure.EAST:
		offset[eastIdx] += length
	case datastructure.WEST:
		offset[westIdx] += length
	}
	return offset
}

func distanceFromOrigin(offset [4]float64) float64 {
	return math.Hypot(math.Abs(offset[northIdx]-offset[southIdx]), math.Abs(offset[eastIdx]-offset[westIdx]))
}

// dimensionField holds one dimension's per node values while clusters are applied.
type dimensionField struct {
	values   []float64
	assigned []bool
}

func newDimensionField(n int) *dimensionField {
	return &dimensionField{
		values:   make([]float64, n),
		assigned: make([]bool, n),
	}
}

// add sets the first contribution as is and compounds later ones, capped at 1.
func (f *dimensionField) add(idx int32, amount float64) {
	if !f.assigned[idx] {
		f.values[idx] = amount
		f.assigned[idx] = true
		return
	}
	f.values[idx] = util.Clamp(f.values[idx]*(1+amount), 0, 1)
}
