package datastructure

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrConfig marks a malformed map: unknown node reference, duplicate id, bad road attribute.
	ErrConfig = errors.New("invalid map configuration")
	// ErrInvalidArgument marks a value rejected at an API boundary.
	ErrInvalidArgument = errors.New("invalid argument")
)

const (
	metersInKilometer = 1000.0
	minutesInHour     = 60.0
)

// Node is an intersection. Only nodes with IsLocation set are valid route endpoints.
type Node struct {
	ID         int
	IsLocation bool
	Edges      []int32 // incident edge indices, in declaration order
}

// Edge is a road between two intersections, addressed by node index.
type Edge struct {
	ID        int32
	From      int32
	To        int32
	Length    float64 // meters
	MaxSpeed  float64 // km/h
	Direction CardinalDirection
}

// BaseTime is the free-flow travel time of the road in minutes.
func (e Edge) BaseTime() float64 {
	kmLength := e.Length / metersInKilometer
	return kmLength * e.MaxSpeed / minutesInHour
}

// Graph is an immutable arena of intersections and roads. Nodes and edges reference each other
// by index only.
type Graph struct {
	nodes       []Node
	edges       []Edge
	nodeIndex   map[int]int32
	totalLength float64
	components  []int32
	compCount   int
	fingerprint uint64
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

func (g *Graph) GetNode(idx int32) Node {
	return g.nodes[idx]
}

func (g *Graph) GetEdge(idx int32) Edge {
	return g.edges[idx]
}

// GetIncidentEdges returns the edge indices touching node idx. The slice must not be modified.
func (g *Graph) GetIncidentEdges(idx int32) []int32 {
	return g.nodes[idx].Edges
}

// NodeIndex resolves an intersection id to its arena index.
func (g *Graph) NodeIndex(id int) (int32, bool) {
	idx, ok := g.nodeIndex[id]
	return idx, ok
}

// NodeByID returns the intersection declared with id.
func (g *Graph) NodeByID(id int) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// Nodes returns the intersections in declaration order. The slice must not be modified.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Edges returns the roads in declaration order. The slice must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Locations returns the ids of every routable node in declaration order.
func (g *Graph) Locations() []int {
	locations := make([]int, 0)
	for _, n := range g.nodes {
		if n.IsLocation {
			locations = append(locations, n.ID)
		}
	}
	return locations
}

// TotalLength is the summed length in meters of every road.
func (g *Graph) TotalLength() float64 {
	return g.totalLength
}

// EdgeBetween returns the first road joining the two node indices, in either orientation.
func (g *Graph) EdgeBetween(a, b int32) (Edge, bool) {
	for _, edgeID := range g.nodes[a].Edges {
		e := g.edges[edgeID]
		if (e.From == a && e.To == b) || (e.From == b && e.To == a) {
			return e, true
		}
	}
	return Edge{}, false
}

// EdgeBetweenIDs is EdgeBetween addressed by intersection id.
func (g *Graph) EdgeBetweenIDs(id1, id2 int) (Edge, bool) {
	a, ok := g.nodeIndex[id1]
	if !ok {
		return Edge{}, false
	}
	b, ok := g.nodeIndex[id2]
	if !ok {
		return Edge{}, false
	}
	return g.EdgeBetween(a, b)
}

// DirectionFrom is the heading of edge when it is entered from node idx.
func (g *Graph) DirectionFrom(e Edge, idx int32) CardinalDirection {
	if e.From != idx {
		return e.Direction.Swap()
	}
	return e.Direction
}

// Neighbor returns the endpoint of e that is not idx.
func (g *Graph) Neighbor(e Edge, idx int32) int32 {
	if e.From != idx {
		return e.From
	}
	return e.To
}

// Fingerprint identifies the graph contents. Equal graphs built in the same order share it.
func (g *Graph) Fingerprint() uint64 {
	return g.fingerprint
}

func (g *Graph) computeFingerprint() uint64 {
	digest := xxhash.New()
	var buf [8]byte
	writeU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		digest.Write(buf[:])
	}
	for _, n := range g.nodes {
		writeU64(uint64(int64(n.ID)))
		if n.IsLocation {
			writeU64(1)
		} else {
			writeU64(0)
		}
	}
	for _, e := range g.edges {
		writeU64(uint64(e.From))
		writeU64(uint64(e.To))
		writeU64(math.Float64bits(e.Length))
		writeU64(math.Float64bits(e.MaxSpeed))
		writeU64(uint64(e.Direction))
	}
	return digest.Sum64()
}

// GraphBuilder accumulates intersections and roads. Roads must reference intersections that were
// already added.
type GraphBuilder struct {
	g *Graph
}

func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		g: &Graph{
			nodes:     make([]Node, 0),
			edges:     make([]Edge, 0),
			nodeIndex: make(map[int]int32),
		},
	}
}

func (b *GraphBuilder) AddIntersection(id int, isLocation bool) error {
	if _, ok := b.g.nodeIndex[id]; ok {
		return fmt.Errorf("%w: duplicate intersection id %d", ErrConfig, id)
	}
	b.g.nodeIndex[id] = int32(len(b.g.nodes))
	b.g.nodes = append(b.g.nodes, Node{
		ID:         id,
		IsLocation: isLocation,
		Edges:      make([]int32, 0, 4),
	})
	return nil
}

func (b *GraphBuilder) AddRoad(fromID, toID int, length, maxSpeed float64, dir CardinalDirection) error {
	from, ok := b.g.nodeIndex[fromID]
	if !ok {
		return fmt.Errorf("%w: road references undeclared intersection %d", ErrConfig, fromID)
	}
	to, ok := b.g.nodeIndex[toID]
	if !ok {
		return fmt.Errorf("%w: road references undeclared intersection %d", ErrConfig, toID)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return fmt.Errorf("%w: road %d-%d length must be positive, got %v", ErrConfig, fromID, toID, length)
	}
	if !(maxSpeed > 0) || math.IsInf(maxSpeed, 0) {
		return fmt.Errorf("%w: road %d-%d speed limit must be positive, got %v", ErrConfig, fromID, toID, maxSpeed)
	}
	if dir > WEST {
		return fmt.Errorf("%w: road %d-%d has unknown direction %d", ErrConfig, fromID, toID, dir)
	}

	edgeID := int32(len(b.g.edges))
	b.g.edges = append(b.g.edges, Edge{
		ID:        edgeID,
		From:      from,
		To:        to,
		Length:    length,
		MaxSpeed:  maxSpeed,
		Direction: dir,
	})
	b.g.nodes[from].Edges = append(b.g.nodes[from].Edges, edgeID)
	if to != from {
		b.g.nodes[to].Edges = append(b.g.nodes[to].Edges, edgeID)
	}
	b.g.totalLength += length
	return nil
}

// Build freezes the graph. The builder must not be used afterwards.
func (b *GraphBuilder) Build() *Graph {
	g := b.g
	b.g = nil
	g.components, g.compCount = connectedComponents(g)
	g.fingerprint = g.computeFingerprint()
	return g
}
