package routingalgorithm

import (
	"testing"

	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteSetSweep(t *testing.T) {
	g, ev := triangleGraph(t)
	rs, err := NewRouteSet(NewRouteAlgorithm(ev), 0.05, -1, 1.0)
	require.NoError(t, err)

	routes := rs.BestRoutes(nodeIdx(t, g, 1), nodeIdx(t, g, 3))
	require.Len(t, routes, 2)

	// safer and slower first
	assert.Equal(t, []int{1, 2, 3}, routes[0].Route.IDs())
	assert.Equal(t, []int{1, 3}, routes[1].Route.IDs())
	assert.Greater(t, routes[0].Time, routes[1].Time)
	assert.InDelta(t, 0.1, routes[0].Ceiling, util.Epsilon)
	assert.InDelta(t, 0.5, routes[1].Ceiling, util.Epsilon)

	for i := 1; i < len(routes); i++ {
		assert.False(t, routes[i].Route.Equal(routes[i-1].Route))
	}
}

func TestRouteSetMaxCount(t *testing.T) {
	g, ev := triangleGraph(t)
	from, to := nodeIdx(t, g, 1), nodeIdx(t, g, 3)

	// the sweep runs while it holds at most K routes
	rs, err := NewRouteSet(NewRouteAlgorithm(ev), 0.05, 1, 1.0)
	require.NoError(t, err)
	routes := rs.BestRoutes(from, to)
	require.Len(t, routes, 2)
	assert.Equal(t, []int{1, 2, 3}, routes[0].Route.IDs())
	assert.Equal(t, []int{1, 3}, routes[1].Route.IDs())

	rs, err = NewRouteSet(NewRouteAlgorithm(ev), 0.05, 0, 1.0)
	require.NoError(t, err)
	routes = rs.BestRoutes(from, to)
	require.Len(t, routes, 1)
	assert.Equal(t, []int{1, 2, 3}, routes[0].Route.IDs())
}

func TestRouteSetMaxCountStopsSearching(t *testing.T) {
	stub := &alternatingRouter{}
	rs, err := NewRouteSet(stub, 0.05, 2, 1.0)
	require.NoError(t, err)

	routes := rs.BestRoutes(0, 1)
	assert.Len(t, routes, 3)
	assert.Equal(t, 3, stub.calls)

	stub = &alternatingRouter{}
	rs, err = NewRouteSet(stub, 0.05, -1, 1.0)
	require.NoError(t, err)
	assert.Len(t, rs.BestRoutes(0, 1), 21)
}

// alternatingRouter answers every ceiling with a route different from the previous one.
type alternatingRouter struct {
	calls int
}

func (a *alternatingRouter) ShortestPathUnderCeiling(from, to int32, ceiling float64) (datastructure.Route, float64, bool) {
	a.calls++
	ids := []int{1, 2}
	if a.calls%2 == 0 {
		ids = []int{1, 3, 2}
	}
	route, _ := datastructure.NewRoute(ids)
	return route, 1, true
}

func TestRouteSetBound(t *testing.T) {
	g, ev := triangleGraph(t)
	rs, err := NewRouteSet(NewRouteAlgorithm(ev), 0.05, -1, 0.3)
	require.NoError(t, err)

	routes := rs.BestRoutes(nodeIdx(t, g, 1), nodeIdx(t, g, 3))
	require.Len(t, routes, 1)
	assert.Equal(t, []int{1, 2, 3}, routes[0].Route.IDs())

	rs, err = NewRouteSet(NewRouteAlgorithm(ev), 0.05, -1, 0.05)
	require.NoError(t, err)
	assert.Empty(t, rs.BestRoutes(nodeIdx(t, g, 1), nodeIdx(t, g, 3)))
}

func TestRouteSetInvalidParams(t *testing.T) {
	_, ev := triangleGraph(t)
	rt := NewRouteAlgorithm(ev)

	_, err := NewRouteSet(rt, 0, 0, 1)
	assert.ErrorIs(t, err, datastructure.ErrInvalidArgument)
	_, err = NewRouteSet(rt, 1.5, 0, 1)
	assert.ErrorIs(t, err, datastructure.ErrInvalidArgument)
	_, err = NewRouteSet(rt, 0.05, 0, 0)
	assert.ErrorIs(t, err, datastructure.ErrInvalidArgument)
}

// countingRouter records every ceiling it is asked about.
type countingRouter struct {
	ceilings []float64
	route    datastructure.Route
}

func (c *countingRouter) ShortestPathUnderCeiling(from, to int32, ceiling float64) (datastructure.Route, float64, bool) {
	c.ceilings = append(c.ceilings, ceiling)
	return c.route, 1, true
}

func TestRouteSetSearchCount(t *testing.T) {
	route, err := datastructure.NewRoute([]int{1, 2})
	require.NoError(t, err)

	stub := &countingRouter{route: route}
	rs, err := NewRouteSet(stub, 0.05, -1, 1.0)
	require.NoError(t, err)

	routes := rs.BestRoutes(0, 1)
	// identical routes collapse into one
	assert.Len(t, routes, 1)
	require.Len(t, stub.ceilings, 21)
	assert.Equal(t, 0.0, stub.ceilings[0])
	assert.InDelta(t, 1.0, stub.ceilings[20], 1e-9)

	stub = &countingRouter{route: route}
	rs, err = NewRouteSet(stub, 0.25, -1, 1.0)
	require.NoError(t, err)
	rs.BestRoutes(0, 1)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1.0}, stub.ceilings)
}

func TestRouteSetOnGeneratedEnvironment(t *testing.T) {
	g, ev := gridWithEnvironment(t, 6, 42)
	rt := NewRouteAlgorithm(ev)
	rs, err := NewRouteSet(rt, 0.05, -1, 1.0)
	require.NoError(t, err)

	last := int32(g.NumNodes() - 1)
	routes := rs.BestRoutes(0, last)
	require.NotEmpty(t, routes)

	for i, r := range routes {
		require.NoError(t, r.Route.Validate(g))
		routeRisk, err := ev.RouteRisk(r.Route)
		require.NoError(t, err)
		assert.LessOrEqual(t, routeRisk, r.Ceiling+util.Epsilon)
		if i > 0 {
			assert.False(t, r.Route.Equal(routes[i-1].Route))
			assert.Greater(t, r.Ceiling, routes[i-1].Ceiling)
		}
	}
}
