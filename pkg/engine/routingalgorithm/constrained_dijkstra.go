package routingalgorithm

import (
	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/util"
)

type cameFromPair struct {
	EdgeID int32
	NodeID int32
}

type RouteAlgorithm struct {
	rm RiskModel
}

func NewRouteAlgorithm(rm RiskModel) *RouteAlgorithm {
	return &RouteAlgorithm{rm: rm}
}

// ShortestPath finds the fastest route between two node indices ignoring risk.
func (rt *RouteAlgorithm) ShortestPath(from, to int32) (datastructure.Route, float64, bool) {
	return rt.shortestPath(from, to, 0, false)
}

// ShortestPathUnderCeiling finds the fastest route between two node indices that touches no
// intersection or road whose risk exceeds ceiling. The bool is false when no such route exists.
func (rt *RouteAlgorithm) ShortestPathUnderCeiling(from, to int32, ceiling float64) (datastructure.Route, float64, bool) {
	return rt.shortestPath(from, to, ceiling, true)
}

func (rt *RouteAlgorithm) shortestPath(from, to int32, ceiling float64, constrained bool) (datastructure.Route, float64, bool) {
	g := rt.rm.Graph()
	n := int32(g.NumNodes())
	if from < 0 || to < 0 || from >= n || to >= n || from == to {
		return datastructure.Route{}, 0, false
	}
	if constrained && (util.Exceeds(rt.rm.NodeRisk(from), ceiling) || util.Exceeds(rt.rm.NodeRisk(to), ceiling)) {
		return datastructure.Route{}, 0, false
	}
	if !g.SameComponent(from, to) {
		return datastructure.Route{}, 0, false
	}

	pq := datastructure.NewMinHeap[int32]()
	costSoFar := make(map[int32]float64)
	costSoFar[from] = 0.0

	pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: 0, Item: from})

	cameFrom := make(map[int32]cameFromPair)
	cameFrom[from] = cameFromPair{-1, -1}

	settled := make(map[int32]struct{})

	for pq.Size() > 0 {
		current, _ := pq.ExtractMin()
		settled[current.Item] = struct{}{}

		if constrained && util.Exceeds(rt.rm.NodeRisk(current.Item), ceiling) {
			continue
		}

		if current.Item == to {
			return rt.buildRoute(cameFrom, to), costSoFar[to], true
		}

		for _, edgeID := range g.GetIncidentEdges(current.Item) {
			if constrained && util.Exceeds(rt.rm.EdgeRisk(edgeID), ceiling) {
				continue
			}

			edge := g.GetEdge(edgeID)
			neighbor := g.Neighbor(edge, current.Item)
			if _, ok := settled[neighbor]; ok {
				continue
			}

			newCost := costSoFar[current.Item] + rt.rm.EdgeTime(edge)

			known, ok := costSoFar[neighbor]
			if !ok {
				costSoFar[neighbor] = newCost
				cameFrom[neighbor] = cameFromPair{edgeID, current.Item}
				pq.Insert(datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: neighbor})
			} else if util.CompareFloat(newCost, known) < 0 {
				costSoFar[neighbor] = newCost
				cameFrom[neighbor] = cameFromPair{edgeID, current.Item}
				pq.DecreaseKey(datastructure.PriorityQueueNode[int32]{Rank: newCost, Item: neighbor})
			}
		}
	}

	return datastructure.Route{}, 0, false
}

func (rt *RouteAlgorithm) buildRoute(cameFrom map[int32]cameFromPair, to int32) datastructure.Route {
	g := rt.rm.Graph()
	ids := make([]int, 0)
	edges := make([]int32, 0)
	curr := to
	for curr != -1 {
		ids = append(ids, g.GetNode(curr).ID)
		if cameFrom[curr].EdgeID != -1 {
			edges = append(edges, cameFrom[curr].EdgeID)
		}
		curr = cameFrom[curr].NodeID
	}

	route, _ := datastructure.NewRouteWithEdges(util.ReverseG(ids), util.ReverseG(edges))
	return route
}
