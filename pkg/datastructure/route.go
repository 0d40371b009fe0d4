package datastructure

import (
	"fmt"
	"strconv"
	"strings"
)

// Route is an ordered walk of intersection ids, start first. A route produced by a search also
// records the index of each road it took, so parallel roads between two intersections stay apart.
type Route struct {
	ids   []int
	edges []int32
}

// NewRoute copies ids. A route visits at least two intersections.
func NewRoute(ids []int) (Route, error) {
	if len(ids) < 2 {
		return Route{}, fmt.Errorf("%w: route needs at least 2 intersections, got %d", ErrInvalidArgument, len(ids))
	}
	return Route{ids: append([]int(nil), ids...)}, nil
}

// NewRouteWithEdges is NewRoute plus the edge index taken between ids[i] and ids[i+1].
func NewRouteWithEdges(ids []int, edges []int32) (Route, error) {
	r, err := NewRoute(ids)
	if err != nil {
		return Route{}, err
	}
	if len(edges) != len(ids)-1 {
		return Route{}, fmt.Errorf("%w: route over %d intersections needs %d roads, got %d",
			ErrInvalidArgument, len(ids), len(ids)-1, len(edges))
	}
	r.edges = append([]int32(nil), edges...)
	return r, nil
}

// IDs returns a copy of the visited intersection ids.
func (r Route) IDs() []int {
	return append([]int(nil), r.ids...)
}

func (r Route) Len() int {
	return len(r.ids)
}

// At returns the i-th intersection id.
func (r Route) At(i int) int {
	return r.ids[i]
}

func (r Route) Start() int {
	return r.ids[0]
}

func (r Route) End() int {
	return r.ids[len(r.ids)-1]
}

// Equal compares the node id sequences.
func (r Route) Equal(other Route) bool {
	if len(r.ids) != len(other.ids) {
		return false
	}
	for i := range r.ids {
		if r.ids[i] != other.ids[i] {
			return false
		}
	}
	return true
}

func (r Route) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, id := range r.ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(id))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Validate checks that every id exists in g and consecutive ids are joined by a road.
func (r Route) Validate(g *Graph) error {
	if len(r.ids) < 2 {
		return fmt.Errorf("%w: route needs at least 2 intersections", ErrInvalidArgument)
	}
	for i := 0; i < len(r.ids); i++ {
		if _, ok := g.NodeIndex(r.ids[i]); !ok {
			return fmt.Errorf("%w: intersection %d not in graph", ErrInvalidArgument, r.ids[i])
		}
		if i == 0 {
			continue
		}
		if r.edges == nil {
			if _, ok := g.EdgeBetweenIDs(r.ids[i-1], r.ids[i]); !ok {
				return fmt.Errorf("%w: no road between %d and %d", ErrInvalidArgument, r.ids[i-1], r.ids[i])
			}
			continue
		}
		edgeID := r.edges[i-1]
		if edgeID < 0 || int(edgeID) >= g.NumEdges() || !joins(g, g.GetEdge(edgeID), r.ids[i-1], r.ids[i]) {
			return fmt.Errorf("%w: road %d does not join %d and %d", ErrInvalidArgument, edgeID, r.ids[i-1], r.ids[i])
		}
	}
	return nil
}

func joins(g *Graph, e Edge, id1, id2 int) bool {
	from, to := g.GetNode(e.From).ID, g.GetNode(e.To).ID
	return (from == id1 && to == id2) || (from == id2 && to == id1)
}

// Edges resolves the roads between consecutive intersections: the recorded ones when the route
// came from a search, else the first road joining each pair. The route must be valid for g.
func (r Route) Edges(g *Graph) []Edge {
	edges := make([]Edge, 0, len(r.ids)-1)
	for i := 1; i < len(r.ids); i++ {
		if r.edges != nil {
			edges = append(edges, g.GetEdge(r.edges[i-1]))
			continue
		}
		e, _ := g.EdgeBetweenIDs(r.ids[i-1], r.ids[i])
		edges = append(edges, e)
	}
	return edges
}

// Length is the summed road length in meters. The route must be valid for g.
func (r Route) Length(g *Graph) float64 {
	total := 0.0
	for _, e := range r.Edges(g) {
		total += e.Length
	}
	return total
}
