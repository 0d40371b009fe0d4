package risk

import (
	"math"
	"testing"

	"lintang/cityrouter/pkg/datastructure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
	2 ---N(100m, 50km/h)--- 1 ---E(300m, 60km/h)--- 3
*/
func buildTestGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	b := datastructure.NewGraphBuilder()
	require.NoError(t, b.AddIntersection(2, true))
	require.NoError(t, b.AddIntersection(1, false))
	require.NoError(t, b.AddIntersection(3, true))
	require.NoError(t, b.AddRoad(2, 1, 100, 50, datastructure.NORTH))
	require.NoError(t, b.AddRoad(1, 3, 300, 60, datastructure.EAST))
	return b.Build()
}

func TestSafetyRisk(t *testing.T) {
	assert.Equal(t, 0.0, SafetyRisk(datastructure.ZeroCondition()))
	assert.InDelta(t, 0.5, SafetyRisk(datastructure.ConditionSample{Obstruction: 1}), 1e-12)
	assert.InDelta(t, 1.0, SafetyRisk(datastructure.ConditionSample{Weather: 1, Obstruction: 1, Traffic: 1}), 1e-12)
	assert.InDelta(t, 0.2*0.4+0.3*0.2+0.5*0.6,
		SafetyRisk(datastructure.ConditionSample{Weather: 0.4, Traffic: 0.2, Obstruction: 0.6}), 1e-12)
}

func TestTimeMultiplier(t *testing.T) {
	assert.Equal(t, 1.0, TimeMultiplier(datastructure.ZeroCondition()))
	assert.InDelta(t, math.Exp(1.5), TimeMultiplier(datastructure.ConditionSample{Weather: 1, Obstruction: 1, Traffic: 1}), 1e-12)

	// multiplier grows with every dimension
	prev := TimeMultiplier(datastructure.ZeroCondition())
	for _, s := range []datastructure.ConditionSample{
		{Weather: 0.5},
		{Weather: 0.5, Traffic: 0.5},
		{Weather: 0.5, Traffic: 0.5, Obstruction: 0.5},
	} {
		m := TimeMultiplier(s)
		assert.Greater(t, m, prev)
		prev = m
	}
}

func TestEffectiveTime(t *testing.T) {
	g := buildTestGraph(t)
	e, _ := g.EdgeBetweenIDs(2, 1)
	assert.InDelta(t, 0.0833, EffectiveTime(e, datastructure.ZeroCondition()), 1e-4)
	assert.InDelta(t, e.BaseTime()*math.Exp(1.5*0.4), EffectiveTime(e, datastructure.ConditionSample{Obstruction: 1}), 1e-12)
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "Low", Severity(0.1))
	assert.Equal(t, "Mild", Severity(0.33))
	assert.Equal(t, "Mild", Severity(0.5))
	assert.Equal(t, "Severe", Severity(0.66))
}

func TestEvaluatorRoute(t *testing.T) {
	g := buildTestGraph(t)
	field, err := datastructure.NewConditionField(
		[]datastructure.ConditionSample{{Weather: 0.1}, {Traffic: 0.9}, {}},
		[]datastructure.ConditionSample{{Obstruction: 0.2}, {Obstruction: 1, Traffic: 0.5}},
	)
	require.NoError(t, err)
	ev := NewEvaluator(g, field)

	short, err := datastructure.NewRoute([]int{2, 1})
	require.NoError(t, err)
	full, err := datastructure.NewRoute([]int{2, 1, 3})
	require.NoError(t, err)

	r, err := ev.RouteRisk(short)
	require.NoError(t, err)
	assert.InDelta(t, 0.27, r, 1e-12) // node 1 traffic dominates

	r, err = ev.RouteRisk(full)
	require.NoError(t, err)
	assert.InDelta(t, 0.65, r, 1e-12) // road 1-3

	free, err := ev.FreeFlowTime(full)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/1000*50/60+300.0/1000*60/60, free, 1e-12)

	total, err := ev.RouteTime(full)
	require.NoError(t, err)
	assert.Greater(t, total, free)

	hazards, err := ev.Hazards(full)
	require.NoError(t, err)
	require.Len(t, hazards, 1)
	assert.Equal(t, 1, hazards[0].FromID)
	assert.Equal(t, 3, hazards[0].ToID)
	assert.Equal(t, datastructure.OBSTRUCTION, hazards[0].Dimension)
	assert.Equal(t, "Mild", hazards[0].Severity)

	invalid, _ := datastructure.NewRoute([]int{2, 3})
	_, err = ev.RouteRisk(invalid)
	assert.ErrorIs(t, err, datastructure.ErrInvalidArgument)
	_, err = ev.RouteTime(invalid)
	assert.ErrorIs(t, err, datastructure.ErrInvalidArgument)
}

func TestMapSafety(t *testing.T) {
	g := buildTestGraph(t)
	field, err := datastructure.NewConditionField(
		[]datastructure.ConditionSample{{Weather: 0.12345}, {Traffic: 0.9}},
		nil,
	)
	require.NoError(t, err)

	got := NewEvaluator(g, field).MapSafety()
	assert.Equal(t, []NodeSafety{
		{NodeID: 1, Risk: 0.27},
		{NodeID: 2, Risk: 0.025},
		{NodeID: 3, Risk: 0},
	}, got)
}

func TestDominantDimension(t *testing.T) {
	assert.Equal(t, datastructure.WEATHER, dominantDimension(datastructure.ConditionSample{Weather: 1}))
	assert.Equal(t, datastructure.TRAFFIC, dominantDimension(datastructure.ConditionSample{Weather: 1, Traffic: 1}))
	assert.Equal(t, datastructure.OBSTRUCTION, dominantDimension(datastructure.ConditionSample{Weather: 1, Traffic: 1, Obstruction: 1}))
}
