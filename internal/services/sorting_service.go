package services

import (
	"roamio/cartographer/internal/models/entities"
	"roamio/cartographer/internal/providers"
)

// Tour sorting engine: orders markers into an approximately shortest open
// walk using a greedy nearest-neighbor pass over the distance matrix.
// Pure computation, no I/O. Nearest-neighbor is O(n^2), deterministic and
// good enough for the <=25 stops of a single day's sightseeing; it is not
// optimal and is never presented as such.

// SortMarkersByProximity returns the marker IDs in nearest-neighbor
// visitation order. The matrix must be indexed identically to the input
// slice. Every input ID appears exactly once in the output regardless of
// matrix sparsity.
func SortMarkersByProximity(markers []entities.Marker, matrix *providers.DistanceMatrix) []string {
	if len(markers) == 0 {
		return []string{}
	}

	order := sortIndicesByProximity(len(markers), matrix.Distances)

	ids := make([]string, len(order))
	for i, idx := range order {
		ids[i] = markers[idx].ID
	}
	return ids
}

// sortIndicesByProximity runs nearest-neighbor over indices 0..n-1,
// always starting at index 0. A nil cell is treated as worse than any
// finite value; when every remaining cell from the current index is nil,
// the walk falls back to the first unvisited index in list order so it
// always terminates with full coverage.
func sortIndicesByProximity(n int, distances [][]*float64) []int {
	if n <= 2 {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		return order
	}

	order := make([]int, 0, n)
	visited := make([]bool, n)

	current := 0
	order = append(order, current)
	visited[current] = true

	for len(order) < n {
		next := -1
		var nextDist float64

		for candidate := 0; candidate < n; candidate++ {
			if visited[candidate] {
				continue
			}
			cell := distances[current][candidate]
			if cell == nil {
				continue
			}
			if next == -1 || *cell < nextDist {
				next = candidate
				nextDist = *cell
			}
		}

		if next == -1 {
			// All remaining distances from here are unavailable.
			for candidate := 0; candidate < n; candidate++ {
				if !visited[candidate] {
					next = candidate
					break
				}
			}
		}

		order = append(order, next)
		visited[next] = true
		current = next
	}

	return order
}

// CalculateTotalDistance sums the edge lengths along an index order. Nil
// cells contribute 0 rather than erroring, so candidate orders remain
// comparable even with partial matrix data.
func CalculateTotalDistance(order []int, distances [][]*float64) float64 {
	var total float64
	for i := 0; i+1 < len(order); i++ {
		cell := distances[order[i]][order[i+1]]
		if cell != nil {
			total += *cell
		}
	}
	return total
}
