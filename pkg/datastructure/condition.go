package datastructure

import (
	"fmt"
	"math"
)

// ConditionSample is the state of one node or edge. Every dimension lies in [0,1].
type ConditionSample struct {
	Weather     float64
	Obstruction float64
	Traffic     float64
}

// ZeroCondition is what unmapped nodes and edges report. Every call returns a fresh value.
func ZeroCondition() ConditionSample {
	return ConditionSample{}
}

func NewConditionSample(weather, obstruction, traffic float64) (ConditionSample, error) {
	for _, v := range [...]struct {
		name  string
		value float64
	}{{"weather", weather}, {"obstruction", obstruction}, {"traffic", traffic}} {
		if math.IsNaN(v.value) || v.value < 0 || v.value > 1 {
			return ConditionSample{}, fmt.Errorf("%w: %s must be within [0,1], got %v", ErrInvalidArgument, v.name, v.value)
		}
	}
	return ConditionSample{Weather: weather, Obstruction: obstruction, Traffic: traffic}, nil
}

// ConditionDimension selects one of the three sample dimensions.
type ConditionDimension uint8

const (
	WEATHER ConditionDimension = iota
	TRAFFIC
	OBSTRUCTION
)

func (d ConditionDimension) String() string {
	switch d {
	case WEATHER:
		return "weather"
	case TRAFFIC:
		return "traffic"
	case OBSTRUCTION:
		return "obstruction"
	default:
		return fmt.Sprintf("ConditionDimension(%d)", uint8(d))
	}
}

// Get returns the value of dimension d.
func (s ConditionSample) Get(d ConditionDimension) float64 {
	switch d {
	case WEATHER:
		return s.Weather
	case TRAFFIC:
		return s.Traffic
	default:
		return s.Obstruction
	}
}

func (s *ConditionSample) set(d ConditionDimension, v float64) {
	switch d {
	case WEATHER:
		s.Weather = v
	case TRAFFIC:
		s.Traffic = v
	default:
		s.Obstruction = v
	}
}

// ConditionField maps node and edge indices of one graph to samples. It is immutable.
type ConditionField struct {
	nodes []ConditionSample
	edges []ConditionSample
}

// NewConditionField copies the given samples. Index i of nodes belongs to node index i of the graph,
// likewise for edges. Shorter slices leave the remaining entries at ZeroCondition.
func NewConditionField(nodes, edges []ConditionSample) (*ConditionField, error) {
	for i, s := range nodes {
		if _, err := NewConditionSample(s.Weather, s.Obstruction, s.Traffic); err != nil {
			return nil, fmt.Errorf("node index %d: %w", i, err)
		}
	}
	for i, s := range edges {
		if _, err := NewConditionSample(s.Weather, s.Obstruction, s.Traffic); err != nil {
			return nil, fmt.Errorf("edge index %d: %w", i, err)
		}
	}
	return &ConditionField{
		nodes: append([]ConditionSample(nil), nodes...),
		edges: append([]ConditionSample(nil), edges...),
	}, nil
}

// Node returns the sample of node idx, ZeroCondition when unmapped.
func (f *ConditionField) Node(idx int32) ConditionSample {
	if f == nil || idx < 0 || int(idx) >= len(f.nodes) {
		return ZeroCondition()
	}
	return f.nodes[idx]
}

// Edge returns the sample of edge idx, ZeroCondition when unmapped.
func (f *ConditionField) Edge(idx int32) ConditionSample {
	if f == nil || idx < 0 || int(idx) >= len(f.edges) {
		return ZeroCondition()
	}
	return f.edges[idx]
}

// NodeSamples returns a copy of the per-node samples.
func (f *ConditionField) NodeSamples() []ConditionSample {
	return append([]ConditionSample(nil), f.nodes...)
}

// EdgeSamples returns a copy of the per-edge samples.
func (f *ConditionField) EdgeSamples() []ConditionSample {
	return append([]ConditionSample(nil), f.edges...)
}

// ConditionFieldBuilder accumulates one dimension at a time. Used by the environment generator.
type ConditionFieldBuilder struct {
	nodes []ConditionSample
	edges []ConditionSample
}

func NewConditionFieldBuilder(numNodes, numEdges int) *ConditionFieldBuilder {
	return &ConditionFieldBuilder{
		nodes: make([]ConditionSample, numNodes),
		edges: make([]ConditionSample, numEdges),
	}
}

func (b *ConditionFieldBuilder) SetNode(idx int32, d ConditionDimension, v float64) {
	b.nodes[idx].set(d, v)
}

func (b *ConditionFieldBuilder) SetEdge(idx int32, d ConditionDimension, v float64) {
	b.edges[idx].set(d, v)
}

func (b *ConditionFieldBuilder) Build() *ConditionField {
	f := &ConditionField{nodes: b.nodes, edges: b.edges}
	b.nodes, b.edges = nil, nil
	return f
}
