package geo

import (
	"fmt"
	"math"

	"lintang/cityrouter/pkg/datastructure"
)

// componentGap separates the bounding boxes of disconnected parts of the map, in meters.
const componentGap = 500.0

type position struct {
	east  float64
	north float64
}

// Layout places every intersection on a plane in meters, derived from road headings and lengths.
// The first intersection of each connected component is laid out by breadth first search; the
// first position an intersection receives is kept.
type Layout struct {
	g         *datastructure.Graph
	positions []position
}

func NewLayout(g *datastructure.Graph) *Layout {
	n := g.NumNodes()
	positions := make([]position, n)
	placed := make([]bool, n)

	shift := 0.0
	for root := int32(0); root < int32(n); root++ {
		if placed[root] {
			continue
		}

		members := layoutComponent(g, root, positions, placed)

		minEast, maxEast := math.Inf(1), math.Inf(-1)
		for _, v := range members {
			minEast = math.Min(minEast, positions[v].east)
			maxEast = math.Max(maxEast, positions[v].east)
		}
		for _, v := range members {
			positions[v].east += shift - minEast
		}
		shift += maxEast - minEast + componentGap
	}

	return &Layout{g: g, positions: positions}
}

func layoutComponent(g *datastructure.Graph, root int32, positions []position, placed []bool) []int32 {
	members := []int32{root}
	placed[root] = true
	positions[root] = position{}

	queue := []int32{root}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, edgeID := range g.GetIncidentEdges(curr) {
			e := g.GetEdge(edgeID)
			next := g.Neighbor(e, curr)
			if placed[next] {
				continue
			}
			placed[next] = true
			positions[next] = step(positions[curr], g.DirectionFrom(e, curr), e.Length)
			members = append(members, next)
			queue = append(queue, next)
		}
	}
	return members
}

func step(p position, dir datastructure.CardinalDirection, length float64) position {
	switch dir {
	case datastructure.NORTH:
		p.north += length
	case datastructure.SOUTH:
		p.north -= length
	case datastructure.EAST:
		p.east += length
	case datastructure.WEST:
		p.east -= length
	}
	return p
}

// Position returns the planar (east, north) meters of node idx.
func (l *Layout) Position(idx int32) (float64, float64) {
	p := l.positions[idx]
	return p.east, p.north
}

// LatLng projects node idx onto the globe with the layout origin at anchor.
func (l *Layout) LatLng(anchor datastructure.Coordinate, idx int32) datastructure.Coordinate {
	p := l.positions[idx]
	return Offset(anchor, p.north, p.east)
}

// RouteCoordinates returns one coordinate per intersection of the route.
func (l *Layout) RouteCoordinates(anchor datastructure.Coordinate, route datastructure.Route) ([]datastructure.Coordinate, error) {
	if err := ValidateAnchor(anchor); err != nil {
		return nil, err
	}
	coords := make([]datastructure.Coordinate, 0, route.Len())
	for i := 0; i < route.Len(); i++ {
		idx, ok := l.g.NodeIndex(route.At(i))
		if !ok {
			return nil, fmt.Errorf("%w: intersection %d not in graph", datastructure.ErrInvalidArgument, route.At(i))
		}
		coords = append(coords, l.LatLng(anchor, idx))
	}
	return coords, nil
}

// RoutePolyline encodes the route, with straight stretches collapsed, as a polyline string.
func (l *Layout) RoutePolyline(anchor datastructure.Coordinate, route datastructure.Route) (string, error) {
	coords, err := l.RouteCoordinates(anchor, route)
	if err != nil {
		return "", err
	}
	return datastructure.CreatePolyline(RamesDouglasPeucker(coords)), nil
}
