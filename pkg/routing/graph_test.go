package routing

import (
	"errors"
	"math"
	"testing"
)

func TestAddEdgeAndShortestPath(t *testing.T) {
	g := New()
	if err := g.AddEdge("A", "B", 100); err != nil {
		t.Fatalf("AddEdge A->B: %v", err)
	}
	if err := g.AddEdge("B", "C", 50); err != nil {
		t.Fatalf("AddEdge B->C: %v", err)
	}

	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3", g.NodeCount())
	}

	cost, err := g.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if math.Abs(cost-150) > 1e-6 {
		t.Errorf("ShortestPath(A,C) = %f, want 150", cost)
	}
}

func TestShortestPathNoPath(t *testing.T) {
	g := New()
	g.AddNode("A")
	g.AddNode("B")
	if _, err := g.ShortestPath("A", "B"); !errors.Is(err, ErrNoPath) {
		t.Errorf("err = %v, want ErrNoPath", err)
	}
}

func TestShortestPathUnknownNode(t *testing.T) {
	g := New()
	g.AddNode("A")
	if _, err := g.ShortestPath("A", "ghost"); !errors.Is(err, ErrNoPath) {
		t.Errorf("err = %v, want ErrNoPath", err)
	}
}

// Two identical consecutive GPS fixes bridge a dummy node to itself;
// the graph must accept the self-loop rather than reject the edge.
func TestAddEdgeSelfLoop(t *testing.T) {
	g := New()
	if err := g.AddEdge("A", "A", 1e-10); err != nil {
		t.Fatalf("AddEdge A->A: %v", err)
	}
	cost, err := g.ShortestPath("A", "A")
	if err != nil {
		t.Fatalf("ShortestPath(A,A): %v", err)
	}
	if cost != 0 {
		t.Errorf("ShortestPath(A,A) = %f, want 0", cost)
	}
}

func TestAddEdgeRejectsNegativeLength(t *testing.T) {
	g := New()
	if err := g.AddEdge("A", "B", -1); !errors.Is(err, ErrInternal) {
		t.Errorf("err = %v, want ErrInternal", err)
	}
}

func TestShortestPathPicksCheaperParallelEdge(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 200)
	g.AddEdge("A", "B", 80)

	cost, err := g.ShortestPath("A", "B")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	if math.Abs(cost-80) > 1e-6 {
		t.Errorf("ShortestPath(A,B) = %f, want 80 (cheaper parallel edge)", cost)
	}
}

func TestKShortestPathFirstMatchesShortestPath(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 100)
	g.AddEdge("B", "C", 50)

	want, err := g.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("ShortestPath: %v", err)
	}
	got, err := g.KShortestPath("A", "C", 1)
	if err != nil {
		t.Fatalf("KShortestPath: %v", err)
	}
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("KShortestPath(k=1) = %f, want %f", got, want)
	}
}

func TestKShortestPathSecondIsMoreExpensive(t *testing.T) {
	g := New()
	// Two parallel routes A->C: direct cheap edge, and a longer detour through B.
	g.AddEdge("A", "C", 100)
	g.AddEdge("A", "B", 40)
	g.AddEdge("B", "C", 90)

	first, err := g.KShortestPath("A", "C", 1)
	if err != nil {
		t.Fatalf("KShortestPath(k=1): %v", err)
	}
	second, err := g.KShortestPath("A", "C", 2)
	if err != nil {
		t.Fatalf("KShortestPath(k=2): %v", err)
	}
	if second <= first {
		t.Errorf("second cheapest walk (%f) should cost more than the first (%f)", second, first)
	}
}

func TestKShortestPathRejectsZero(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 10)
	if _, err := g.KShortestPath("A", "B", 0); !errors.Is(err, ErrInternal) {
		t.Errorf("err = %v, want ErrInternal", err)
	}
}
