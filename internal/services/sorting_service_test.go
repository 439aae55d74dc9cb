package services

import (
	"fmt"
	"reflect"
	"testing"

	"roamio/cartographer/internal/models/entities"
	"roamio/cartographer/internal/providers"
)

func f(v float64) *float64 {
	return &v
}

func markersN(n int) []entities.Marker {
	markers := make([]entities.Marker, n)
	for i := range markers {
		markers[i] = entities.Marker{ID: fmt.Sprintf("m%d", i)}
	}
	return markers
}

func zeroMatrix(n int) [][]*float64 {
	m := make([][]*float64, n)
	for i := range m {
		m[i] = make([]*float64, n)
		for j := range m[i] {
			m[i][j] = f(0)
		}
	}
	return m
}

func TestSortMarkersByProximity_Empty(t *testing.T) {
	got := SortMarkersByProximity(nil, &providers.DistanceMatrix{})
	if len(got) != 0 {
		t.Errorf("Expected empty order, got %v", got)
	}
}

func TestSortMarkersByProximity_SingleAndPair(t *testing.T) {
	one := SortMarkersByProximity(markersN(1), &providers.DistanceMatrix{Distances: zeroMatrix(1)})
	if !reflect.DeepEqual(one, []string{"m0"}) {
		t.Errorf("Expected [m0], got %v", one)
	}

	two := SortMarkersByProximity(markersN(2), &providers.DistanceMatrix{Distances: zeroMatrix(2)})
	if !reflect.DeepEqual(two, []string{"m0", "m1"}) {
		t.Errorf("Expected [m0 m1], got %v", two)
	}
}

func TestSortMarkersByProximity_PicksNearest(t *testing.T) {
	// m0-m1 = 100, m1-m2 = 50, m0-m2 = 120
	distances := [][]*float64{
		{f(0), f(100), f(120)},
		{f(100), f(0), f(50)},
		{f(120), f(50), f(0)},
	}

	got := SortMarkersByProximity(markersN(3), &providers.DistanceMatrix{Distances: distances})
	want := []string{"m0", "m1", "m2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSortMarkersByProximity_UnitSquareAvoidsDiagonals(t *testing.T) {
	// A(0,0) B(1,0) C(1,1) D(0,1): sides 100, diagonals ~141
	side, diag := f(100.0), f(141.0)
	distances := [][]*float64{
		{f(0), side, diag, side},
		{side, f(0), side, diag},
		{diag, side, f(0), side},
		{side, diag, side, f(0)},
	}

	got := SortMarkersByProximity(markersN(4), &providers.DistanceMatrix{Distances: distances})

	nonCrossing := [][]string{
		{"m0", "m1", "m2", "m3"},
		{"m0", "m3", "m2", "m1"},
	}
	ok := false
	for _, want := range nonCrossing {
		if reflect.DeepEqual(got, want) {
			ok = true
		}
	}
	if !ok {
		t.Errorf("Expected a non-crossing perimeter order, got %v", got)
	}
}

func TestSortMarkersByProximity_NilCellsNeverPreferred(t *testing.T) {
	// From m0, the m1 cell is unavailable; m2 at 500 must win over nil.
	distances := [][]*float64{
		{f(0), nil, f(500)},
		{nil, f(0), f(10)},
		{f(500), f(10), f(0)},
	}

	got := SortMarkersByProximity(markersN(3), &providers.DistanceMatrix{Distances: distances})
	want := []string{"m0", "m2", "m1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSortMarkersByProximity_AllNilFallsBackToListOrder(t *testing.T) {
	n := 4
	distances := make([][]*float64, n)
	for i := range distances {
		distances[i] = make([]*float64, n)
	}

	got := SortMarkersByProximity(markersN(n), &providers.DistanceMatrix{Distances: distances})
	want := []string{"m0", "m1", "m2", "m3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected list-order fallback %v, got %v", want, got)
	}
}

func TestSortMarkersByProximity_IsPermutation(t *testing.T) {
	for n := 1; n <= 25; n++ {
		markers := markersN(n)
		distances := make([][]*float64, n)
		for i := range distances {
			distances[i] = make([]*float64, n)
			for j := range distances[i] {
				// Arbitrary but deterministic asymmetric weights with
				// a sprinkle of unavailable cells.
				if (i+j)%7 == 3 {
					continue
				}
				distances[i][j] = f(float64((i*31 + j*17) % 97))
			}
		}

		got := SortMarkersByProximity(markers, &providers.DistanceMatrix{Distances: distances})
		if len(got) != n {
			t.Fatalf("n=%d: expected %d ids, got %d", n, n, len(got))
		}
		seen := make(map[string]bool, n)
		for _, id := range got {
			if seen[id] {
				t.Fatalf("n=%d: duplicate id %s in order %v", n, id, got)
			}
			seen[id] = true
		}
	}
}

func TestCalculateTotalDistance(t *testing.T) {
	distances := [][]*float64{
		{f(0), f(100), f(200)},
		{f(100), f(0), f(150)},
		{f(200), f(150), f(0)},
	}

	got := CalculateTotalDistance([]int{0, 1, 2}, distances)
	if got != 250.0 {
		t.Errorf("Expected 250.0, got %f", got)
	}

	// A nil cell counts as zero, not as an error.
	distances[0][1] = nil
	got = CalculateTotalDistance([]int{0, 1, 2}, distances)
	if got != 150.0 {
		t.Errorf("Expected 150.0 with nil edge, got %f", got)
	}
}
