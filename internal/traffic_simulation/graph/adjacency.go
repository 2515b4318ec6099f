package graph

import "github.com/GoSim-25-26J-441/go-traffic-backend/internal/traffic_simulation/domain"

// Adjacency indexes, for every edge, the edges sharing an endpoint with it.
// It is keyed by position in the edge slice it was built from and must be
// rebuilt whenever that slice gains edges.
type Adjacency struct {
	neighbors [][]int
	byVertex  map[string][]int
}

func NewAdjacency(edges []domain.Edge) *Adjacency {
	byVertex := make(map[string][]int)
	for i, e := range edges {
		byVertex[e.From] = append(byVertex[e.From], i)
		if e.To != e.From {
			byVertex[e.To] = append(byVertex[e.To], i)
		}
	}

	neighbors := make([][]int, len(edges))
	for i, e := range edges {
		seen := map[int]struct{}{i: {}}
		var list []int
		for _, v := range [2]string{e.From, e.To} {
			for _, j := range byVertex[v] {
				if _, ok := seen[j]; ok {
					continue
				}
				seen[j] = struct{}{}
				list = append(list, j)
			}
		}
		neighbors[i] = list
	}

	return &Adjacency{neighbors: neighbors, byVertex: byVertex}
}

// Neighbors returns indices of edges touching edge i, excluding i itself.
func (a *Adjacency) Neighbors(i int) []int {
	if i < 0 || i >= len(a.neighbors) {
		return nil
	}
	return a.neighbors[i]
}

// Degree is the number of edges incident to a vertex
func (a *Adjacency) Degree(vertexID string) int {
	return len(a.byVertex[vertexID])
}

// NeighborAverage is the mean weight of the edges touching edge i, or
// fallback when it has none.
func (a *Adjacency) NeighborAverage(edges []domain.Edge, i int, fallback float64) float64 {
	idx := a.Neighbors(i)
	if len(idx) == 0 {
		return fallback
	}
	var total float64
	for _, j := range idx {
		total += edges[j].Weight
	}
	return total / float64(len(idx))
}
