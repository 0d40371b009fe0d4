package datastructure

// connectedComponents labels every node with the id of its component in the undirected road graph.
// Labels are assigned in node declaration order, so node 0 is always in component 0.
func connectedComponents(g *Graph) ([]int32, int) {
	n := len(g.nodes)
	labels := make([]int32, n)
	visited := make([]bool, n)

	count := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		component := make([]int32, 0)
		g.dfs(int32(i), &component, visited)
		for _, v := range component {
			labels[v] = int32(count)
		}
		count++
	}
	return labels, count
}

func (g *Graph) dfs(v int32, output *[]int32, visited []bool) {
	visited[v] = true

	for _, edgeID := range g.nodes[v].Edges {
		next := g.Neighbor(g.edges[edgeID], v)
		if !visited[next] {
			g.dfs(next, output, visited)
		}
	}

	*output = append(*output, v)
}

// ConnectedComponents returns a copy of the component label of every node index.
func (g *Graph) ConnectedComponents() []int32 {
	return append([]int32(nil), g.components...)
}

// Component returns the connected component label of node idx.
func (g *Graph) Component(idx int32) int32 {
	return g.components[idx]
}

func (g *Graph) ComponentCount() int {
	return g.compCount
}

// SameComponent reports whether a road path can exist between the two node indices at all.
func (g *Graph) SameComponent(a, b int32) bool {
	return g.components[a] == g.components[b]
}
