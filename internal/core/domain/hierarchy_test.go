package domain

import (
	"errors"
	"testing"
)

func TestAppendRejectsBlankCurve(t *testing.T) {
	h := NewHierarchy()
	if err := h.Append("A", "C1", "G1", Entry{Date: "2024-01-01", Comment: "x"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	for _, curve := range []string{"", "   "} {
		if err := h.Append("A", curve, "G1", Entry{Comment: "orphan"}); !errors.Is(err, ErrMissingCurve) {
			t.Fatalf("Append(curve=%q) error = %v, want ErrMissingCurve", curve, err)
		}
	}

	if got := h.EntryCount(); got != 1 {
		t.Fatalf("EntryCount() = %d, want 1", got)
	}
	if _, ok := h["A"][""]; ok {
		t.Fatal("blank-curve key created")
	}
}

func TestAppendPreservesArrivalOrder(t *testing.T) {
	h := NewHierarchy()
	first := Entry{Date: "2024-01-02", Comment: "x", StandardLabel: "L"}
	second := Entry{Date: "2024-01-01", Comment: "y", StandardLabel: "M"}
	for _, e := range []Entry{first, second} {
		if err := h.Append("A", "C1", "G1", e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	entries := h["A"]["C1"]["G1"]
	if len(entries) != 2 {
		t.Fatalf("leaf has %d entries, want 2", len(entries))
	}
	// 2024-01-02 arrived first and must stay first: the store never resorts.
	if entries[0] != first || entries[1] != second {
		t.Fatalf("entries = %+v, want arrival order", entries)
	}
}

func TestAppendCreatesIntermediateLevels(t *testing.T) {
	h := NewHierarchy()
	if err := h.Append("A", "C1", "G1", Entry{Comment: "x"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := h.Append("A", "C1", "G2", Entry{Comment: "y"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := h.Append("B", "C2", "G1", Entry{Comment: "z"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if len(h) != 2 || len(h["A"]["C1"]) != 2 {
		t.Fatalf("unexpected shape: %+v", h)
	}
	if got := h.EntryCount(); got != 3 {
		t.Fatalf("EntryCount() = %d, want 3", got)
	}
}

func TestWalkVisitsLeavesInSortedKeyOrder(t *testing.T) {
	h := NewHierarchy()
	paths := [][3]string{
		{"B", "C9", "G1"},
		{"A", "C2", "G2"},
		{"A", "C2", "G1"},
		{"A", "C1", "G1"},
	}
	for _, p := range paths {
		if err := h.Append(p[0], p[1], p[2], Entry{Comment: p[0] + p[1] + p[2]}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	var visited []string
	h.Walk(func(source, curve, groupingVar string, entries []Entry) {
		visited = append(visited, source+"/"+curve+"/"+groupingVar)
		if len(entries) != 1 {
			t.Fatalf("leaf %s/%s/%s has %d entries", source, curve, groupingVar, len(entries))
		}
	})

	want := []string{"A/C1/G1", "A/C2/G1", "A/C2/G2", "B/C9/G1"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}
