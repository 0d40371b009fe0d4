package routingalgorithm

import (
	"fmt"
	"math"

	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/util"
)

// CeilingRoute is a route found by the sweep together with the ceiling that first produced it.
type CeilingRoute struct {
	Route   datastructure.Route
	Time    float64
	Ceiling float64
}

// RouteSet collects progressively riskier and faster routes by raising the risk ceiling in
// fixed steps, starting at zero.
type RouteSet struct {
	rt    RouteAlgorithmI
	rate  float64
	maxK  int
	bound float64
}

// NewRouteSet validates the sweep parameters. The sweep keeps searching while it holds at most maxK
// routes, so it returns up to maxK+1 of them. A negative maxK means no limit.
func NewRouteSet(rt RouteAlgorithmI, rate float64, maxK int, bound float64) (*RouteSet, error) {
	if math.IsNaN(rate) || rate <= 0 || rate > 1 {
		return nil, fmt.Errorf("%w: ceiling step must be within (0,1], got %v", datastructure.ErrInvalidArgument, rate)
	}
	if math.IsNaN(bound) || bound <= 0 || bound > 1 {
		return nil, fmt.Errorf("%w: ceiling bound must be within (0,1], got %v", datastructure.ErrInvalidArgument, bound)
	}
	if maxK < 0 {
		maxK = math.MaxInt
	}
	return &RouteSet{
		rt:    rt,
		rate:  rate,
		maxK:  maxK,
		bound: bound,
	}, nil
}

// BestRoutes runs one ceiling search per step and keeps each result that differs from the last
// kept route. The returned routes are ordered by ascending ceiling.
func (rs *RouteSet) BestRoutes(from, to int32) []CeilingRoute {
	results := make([]CeilingRoute, 0)
	var prev datastructure.Route
	hasPrev := false

	// the ceiling before step i is (i-1)*rate, starting below zero so that zero itself is tested
	for step := 0; len(results) <= rs.maxK && util.CompareFloat(float64(step-1)*rs.rate, rs.bound) < 0; step++ {
		ceiling := float64(step) * rs.rate

		route, eta, found := rs.rt.ShortestPathUnderCeiling(from, to, ceiling)
		if !found {
			continue
		}
		if hasPrev && route.Equal(prev) {
			continue
		}

		results = append(results, CeilingRoute{Route: route, Time: eta, Ceiling: ceiling})
		prev = route
		hasPrev = true
	}
	return results
}
