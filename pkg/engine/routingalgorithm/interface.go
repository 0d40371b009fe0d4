package routingalgorithm

import "lintang/cityrouter/pkg/datastructure"

// RiskModel prices the graph for a search. Implemented by risk.Evaluator.
type RiskModel interface {
	Graph() *datastructure.Graph
	NodeRisk(idx int32) float64
	EdgeRisk(idx int32) float64
	EdgeTime(e datastructure.Edge) float64
}

type RouteAlgorithmI interface {
	ShortestPathUnderCeiling(from, to int32, ceiling float64) (datastructure.Route, float64, bool)
}
