package environment

import (
	"context"
	"testing"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
grid of size x size intersections, 100m roads, every node a location.

	(0,0) -E- (0,1) -E- ...
	  |N        |N
	(1,0) -E- (1,1) -E- ...
*/
func buildGrid(t *testing.T, size int) *datastructure.Graph {
	t.Helper()
	b := datastructure.NewGraphBuilder()
	id := func(r, c int) int { return r*size + c + 1 }
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			require.NoError(t, b.AddIntersection(id(r, c), true))
		}
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if c+1 < size {
				require.NoError(t, b.AddRoad(id(r, c), id(r, c+1), 100, 40, datastructure.EAST))
			}
			if r+1 < size {
				require.NoError(t, b.AddRoad(id(r+1, c), id(r, c), 100, 40, datastructure.NORTH))
			}
		}
	}
	return b.Build()
}

/*
	1 ---N(100)--- 2 ---N(100)--- 3
*/
func buildLine(t *testing.T) *datastructure.Graph {
	t.Helper()
	b := datastructure.NewGraphBuilder()
	require.NoError(t, b.AddIntersection(1, true))
	require.NoError(t, b.AddIntersection(2, false))
	require.NoError(t, b.AddIntersection(3, true))
	require.NoError(t, b.AddRoad(1, 2, 100, 50, datastructure.NORTH))
	require.NoError(t, b.AddRoad(2, 3, 100, 50, datastructure.NORTH))
	return b.Build()
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	gen, err := NewGenerator(DefaultConfig(), nil)
	require.NoError(t, err)
	return gen
}

func TestGenerateDeterministic(t *testing.T) {
	g := buildGrid(t, 6)
	gen := newTestGenerator(t)

	first, report, err := gen.Generate(context.Background(), g, 333)
	require.NoError(t, err)
	second, _, err := gen.Generate(context.Background(), g, 333)
	require.NoError(t, err)

	assert.Equal(t, first.NodeSamples(), second.NodeSamples())
	assert.Equal(t, first.EdgeSamples(), second.EdgeSamples())

	other, _, err := gen.Generate(context.Background(), g, 334)
	require.NoError(t, err)
	assert.NotEqual(t, first.NodeSamples(), other.NodeSamples())

	require.Len(t, report.Dimensions, 3)
	assert.Equal(t, datastructure.WEATHER, report.Dimensions[0].Dimension)
	assert.Equal(t, datastructure.TRAFFIC, report.Dimensions[1].Dimension)
	assert.Equal(t, datastructure.OBSTRUCTION, report.Dimensions[2].Dimension)
	assert.Equal(t, g.TotalLength(), report.TotalLength)
}

func TestGenerateValueRanges(t *testing.T) {
	g := buildGrid(t, 8)
	gen := newTestGenerator(t)
	cfg := gen.Config()

	for seed := int64(0); seed < 20; seed++ {
		field, report, err := gen.Generate(context.Background(), g, seed)
		require.NoError(t, err)

		for _, s := range field.NodeSamples() {
			for _, v := range []float64{s.Weather, s.Traffic, s.Obstruction} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}

		for _, e := range g.Edges() {
			from := field.Node(e.From)
			to := field.Node(e.To)
			got := field.Edge(e.ID)
			assert.InDelta(t, (from.Weather+to.Weather)/2, got.Weather, 1e-12)
			assert.InDelta(t, (from.Traffic+to.Traffic)/2, got.Traffic, 1e-12)
			assert.InDelta(t, (from.Obstruction+to.Obstruction)/2, got.Obstruction, 1e-12)
		}

		for _, dim := range report.Dimensions {
			cov := cfg.coverage(dim.Dimension)
			assert.GreaterOrEqual(t, dim.Target, g.TotalLength()*cov.Min)
			assert.LessOrEqual(t, dim.Target, g.TotalLength()*cov.Max)
			if !dim.Truncated {
				assert.GreaterOrEqual(t, dim.Covered, dim.Target)
			}
		}
	}
}

func TestGenerateEmptyAndEdgelessGraphs(t *testing.T) {
	gen := newTestGenerator(t)

	field, report, err := gen.Generate(context.Background(), datastructure.NewGraphBuilder().Build(), 1)
	require.NoError(t, err)
	assert.Empty(t, field.NodeSamples())
	for _, dim := range report.Dimensions {
		assert.Equal(t, 0, dim.Clusters)
	}

	b := datastructure.NewGraphBuilder()
	require.NoError(t, b.AddIntersection(1, true))
	require.NoError(t, b.AddIntersection(2, true))
	field, _, err = gen.Generate(context.Background(), b.Build(), 1)
	require.NoError(t, err)
	for _, s := range field.NodeSamples() {
		// only ambient noise reaches nodes when there is no road to cover
		assert.Less(t, s.Weather, gen.Config().LightDefault)
		assert.Less(t, s.Traffic, gen.Config().LightDefault)
		assert.Less(t, s.Obstruction, gen.Config().LightDefault)
	}
}

func TestGenerateMaxClusters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxClusters = 1
	gen, err := NewGenerator(cfg, nil)
	require.NoError(t, err)

	g := buildGrid(t, 10)
	_, report, err := gen.Generate(context.Background(), g, 7)
	require.NoError(t, err)
	for _, dim := range report.Dimensions {
		assert.LessOrEqual(t, dim.Clusters, 1)
		if dim.Covered < dim.Target {
			assert.True(t, dim.Truncated)
		}
	}
}

func TestGenerateCancelled(t *testing.T) {
	gen := newTestGenerator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := gen.Generate(ctx, buildGrid(t, 4), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMakeCluster(t *testing.T) {
	g := buildLine(t)
	sim := &simulation{g: g, cfg: DefaultConfig()}
	field := newDimensionField(g.NumNodes())

	covered := sim.makeCluster(150, 0, 0.5, field)

	// origin, then node 2 at 100m, then origin again via the re-enqueue from node 2
	assert.Equal(t, 200.0, covered)
	assert.InDelta(t, 0.75, field.values[0], 1e-12)
	assert.InDelta(t, 0.5/3, field.values[1], 1e-12)
	assert.False(t, field.assigned[2])
}

func TestMakeClusterZeroRadius(t *testing.T) {
	g := buildLine(t)
	sim := &simulation{g: g, cfg: DefaultConfig()}
	field := newDimensionField(g.NumNodes())

	assert.Equal(t, 0.0, sim.makeCluster(0, 1, 0.5, field))
	assert.False(t, field.assigned[1])
}

func TestDimensionFieldAdd(t *testing.T) {
	field := newDimensionField(1)
	field.add(0, 0.6)
	assert.Equal(t, 0.6, field.values[0])
	field.add(0, 0.5)
	assert.InDelta(t, 0.9, field.values[0], 1e-12)
	field.add(0, 0.5)
	assert.Equal(t, 1.0, field.values[0])
}

func TestDistanceFromOrigin(t *testing.T) {
	offset := addOffset([4]float64{}, datastructure.NORTH, 300)
	offset = addOffset(offset, datastructure.EAST, 400)
	assert.Equal(t, 500.0, distanceFromOrigin(offset))

	offset = addOffset(offset, datastructure.SOUTH, 300)
	offset = addOffset(offset, datastructure.WEST, 400)
	assert.Equal(t, 0.0, distanceFromOrigin(offset))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Weather = Coverage{Min: 0.7, Max: 0.6}
	assert.ErrorIs(t, cfg.Validate(), datastructure.ErrConfig)

	cfg = DefaultConfig()
	cfg.SeverityBound = 0.2
	assert.ErrorIs(t, cfg.Validate(), datastructure.ErrConfig)

	cfg = DefaultConfig()
	cfg.MinDecay = 0
	_, err := NewGenerator(cfg, nil)
	assert.ErrorIs(t, err, datastructure.ErrConfig)
}
