package risk

import (
	"math"

	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/util"
)

const (
	conditionScalar = 1.5

	weatherTimeWeight     = 0.2
	trafficTimeWeight     = 0.4
	obstructionTimeWeight = 0.4

	weatherSafetyWeight     = 0.2
	trafficSafetyWeight     = 0.3
	obstructionSafetyWeight = 0.5

	lowSeverityBound  = 0.33
	mildSeverityBound = 0.66

	mapSafetyPrecision = 3
)

// SafetyRisk weighs a sample into a single risk in [0,1].
func SafetyRisk(s datastructure.ConditionSample) float64 {
	return s.Obstruction*obstructionSafetyWeight + s.Weather*weatherSafetyWeight + s.Traffic*trafficSafetyWeight
}

// TimeMultiplier is the factor conditions inflate free-flow travel time by. It is 1 under ZeroCondition.
func TimeMultiplier(s datastructure.ConditionSample) float64 {
	congestion := s.Obstruction*obstructionTimeWeight + s.Traffic*trafficTimeWeight + s.Weather*weatherTimeWeight
	return math.Exp(conditionScalar * congestion)
}

// EffectiveTime is the travel time of e in minutes under sample s.
func EffectiveTime(e datastructure.Edge, s datastructure.ConditionSample) float64 {
	return e.BaseTime() * TimeMultiplier(s)
}

// Severity buckets a risk for display.
func Severity(risk float64) string {
	if risk < lowSeverityBound {
		return "Low"
	}
	if risk < mildSeverityBound {
		return "Mild"
	}
	return "Severe"
}

// Evaluator scores nodes, edges and routes of one graph under one condition field.
type Evaluator struct {
	g     *datastructure.Graph
	field *datastructure.ConditionField
}

func NewEvaluator(g *datastructure.Graph, field *datastructure.ConditionField) *Evaluator {
	return &Evaluator{g: g, field: field}
}

func (ev *Evaluator) Graph() *datastructure.Graph {
	return ev.g
}

func (ev *Evaluator) NodeRisk(idx int32) float64 {
	return SafetyRisk(ev.field.Node(idx))
}

func (ev *Evaluator) EdgeRisk(idx int32) float64 {
	return SafetyRisk(ev.field.Edge(idx))
}

func (ev *Evaluator) EdgeTime(e datastructure.Edge) float64 {
	return EffectiveTime(e, ev.field.Edge(e.ID))
}

// RouteRisk is the highest risk of any intersection or road the route touches.
func (ev *Evaluator) RouteRisk(route datastructure.Route) (float64, error) {
	if err := route.Validate(ev.g); err != nil {
		return 0, err
	}
	maxRisk := 0.0
	for i := 0; i < route.Len(); i++ {
		idx, _ := ev.g.NodeIndex(route.At(i))
		maxRisk = math.Max(maxRisk, ev.NodeRisk(idx))
	}
	for _, e := range route.Edges(ev.g) {
		maxRisk = math.Max(maxRisk, ev.EdgeRisk(e.ID))
	}
	return maxRisk, nil
}

// FreeFlowTime sums the unconditioned travel time of the route's roads in minutes.
func (ev *Evaluator) FreeFlowTime(route datastructure.Route) (float64, error) {
	if err := route.Validate(ev.g); err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range route.Edges(ev.g) {
		total += e.BaseTime()
	}
	return total, nil
}

// RouteTime sums the effective travel time of the route's roads in minutes.
func (ev *Evaluator) RouteTime(route datastructure.Route) (float64, error) {
	if err := route.Validate(ev.g); err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range route.Edges(ev.g) {
		total += ev.EdgeTime(e)
	}
	return total, nil
}

type NodeSafety struct {
	NodeID int
	Risk   float64
}

// MapSafety lists the risk of every intersection, rounded to three decimals, by ascending id.
func (ev *Evaluator) MapSafety() []NodeSafety {
	nodes := ev.g.Nodes()
	result := make([]NodeSafety, 0, len(nodes))
	for i, n := range nodes {
		result = append(result, NodeSafety{
			NodeID: n.ID,
			Risk:   util.RoundFloat(ev.NodeRisk(int32(i)), mapSafetyPrecision),
		})
	}
	return util.QuickSortG(result, func(a, b NodeSafety) int {
		return a.NodeID - b.NodeID
	})
}

type Hazard struct {
	FromID    int
	ToID      int
	Dimension datastructure.ConditionDimension
	Risk      float64
	Severity  string
}

// Hazards lists the roads of the route whose risk is not Low, in travel order. Dimension names the
// condition contributing most to the road's risk.
func (ev *Evaluator) Hazards(route datastructure.Route) ([]Hazard, error) {
	if err := route.Validate(ev.g); err != nil {
		return nil, err
	}
	hazards := make([]Hazard, 0)
	for i, e := range route.Edges(ev.g) {
		sample := ev.field.Edge(e.ID)
		risk := SafetyRisk(sample)
		if risk < lowSeverityBound {
			continue
		}
		hazards = append(hazards, Hazard{
			FromID:    route.At(i),
			ToID:      route.At(i + 1),
			Dimension: dominantDimension(sample),
			Risk:      risk,
			Severity:  Severity(risk),
		})
	}
	return hazards, nil
}

func dominantDimension(s datastructure.ConditionSample) datastructure.ConditionDimension {
	dim := datastructure.OBSTRUCTION
	best := s.Obstruction * obstructionSafetyWeight
	if v := s.Traffic * trafficSafetyWeight; v > best {
		dim, best = datastructure.TRAFFIC, v
	}
	if v := s.Weather * weatherSafetyWeight; v > best {
		dim = datastructure.WEATHER
	}
	return dim
}
