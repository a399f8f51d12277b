package rater

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

func itemNames(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("song_%02d.wav", i)
	}
	return items
}

func TestBuildCoversEveryPairOnce(t *testing.T) {
	for n := 2; n <= 12; n++ {
		b := NewBuilder(WithSeed(uint64(n)))
		q, err := b.Build(itemNames(n), nil)
		if err != nil {
			t.Fatalf("n=%d: Build failed: %v", n, err)
		}

		want := n * (n - 1) / 2
		if len(q.Pairs) != want {
			t.Errorf("n=%d: Expected %d pairs, got %d", n, want, len(q.Pairs))
		}
		if q.Total() != want {
			t.Errorf("n=%d: Expected Total %d, got %d", n, want, q.Total())
		}

		seen := make(map[models.Pair]bool)
		for _, p := range q.Pairs {
			if p.A == p.B {
				t.Errorf("n=%d: self-pair %v", n, p)
			}
			if seen[p.Key()] {
				t.Errorf("n=%d: duplicate pair %v", n, p)
			}
			seen[p.Key()] = true
		}
	}
}

func TestBuildIgnoresInputOrderAndDuplicates(t *testing.T) {
	a := NewBuilder(WithSeed(7))
	b := NewBuilder(WithSeed(7))

	q1, err := a.Build([]string{"c.wav", "a.wav", "b.wav"}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	q2, err := b.Build([]string{"b.wav", "c.wav", "a.wav", "b.wav"}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if q2.Items != 3 {
		t.Errorf("Expected 3 distinct items, got %d", q2.Items)
	}
	if !slices.Equal(q1.Pairs, q2.Pairs) {
		t.Errorf("Expected identical queues for the same seed, got %v and %v", q1.Pairs, q2.Pairs)
	}
}

func TestBuildSeedIsReproducible(t *testing.T) {
	items := itemNames(8)
	q1, _ := NewBuilder(WithSeed(42)).Build(items, nil)
	q2, _ := NewBuilder(WithSeed(42)).Build(items, nil)
	q3, _ := NewBuilder(WithSeed(43)).Build(items, nil)

	if !slices.Equal(q1.Pairs, q2.Pairs) {
		t.Error("Expected same seed to give the same order")
	}
	if slices.Equal(q1.Pairs, q3.Pairs) {
		t.Error("Expected different seeds to give different orders")
	}
}

func TestBuildShufflesAwayFromEnumerationOrder(t *testing.T) {
	items := itemNames(10)
	q, _ := NewBuilder(WithSeed(1)).Build(items, nil)
	if slices.Equal(q.Pairs, EnumeratePairs(items)) {
		t.Error("Expected queue order to differ from lexicographic enumeration")
	}
}

func TestBuildExcludesPriorInBothOrientations(t *testing.T) {
	items := []string{"a.wav", "b.wav", "c.wav", "d.wav"}
	prior := []models.Judgment{
		{SongA: "a.wav", SongB: "b.wav", Score: 0.1},
		{SongA: "d.wav", SongB: "c.wav", Score: 0.9}, // reverse of enumeration order
	}

	q, err := NewBuilder(WithSeed(3)).Build(items, prior)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(q.Pairs) != 4 {
		t.Fatalf("Expected 4 remaining pairs, got %d: %v", len(q.Pairs), q.Pairs)
	}
	for _, p := range q.Pairs {
		k := p.Key()
		if k == (models.Pair{A: "a.wav", B: "b.wav"}) || k == (models.Pair{A: "c.wav", B: "d.wav"}) {
			t.Errorf("Judged pair %v still queued", p)
		}
	}
}

func TestBuildExclusionIsIdempotent(t *testing.T) {
	items := itemNames(5)
	j := models.Judgment{SongA: items[0], SongB: items[1], Score: 0.5}

	once, _ := NewBuilder(WithSeed(9)).Build(items, []models.Judgment{j})
	twice, _ := NewBuilder(WithSeed(9)).Build(items, []models.Judgment{j, j, {SongA: j.SongB, SongB: j.SongA, Score: 0.2}})

	if len(once.Pairs) != 9 || len(twice.Pairs) != 9 {
		t.Errorf("Expected 9 remaining pairs both times, got %d and %d", len(once.Pairs), len(twice.Pairs))
	}
}

func TestBuildIgnoresPriorForUnknownItems(t *testing.T) {
	prior := []models.Judgment{{SongA: "x.wav", SongB: "y.wav", Score: 0.3}}
	q, err := NewBuilder(WithSeed(1)).Build([]string{"a.wav", "b.wav"}, prior)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(q.Pairs) != 1 {
		t.Errorf("Expected 1 pair, got %d", len(q.Pairs))
	}
}

func TestBuildTooFewItems(t *testing.T) {
	for _, items := range [][]string{nil, {}, {"only.wav"}, {"dup.wav", "dup.wav"}} {
		q, err := NewBuilder(WithSeed(1)).Build(items, nil)
		if !errors.Is(err, ErrTooFewItems) {
			t.Errorf("items=%v: Expected ErrTooFewItems, got %v", items, err)
		}
		if len(q.Pairs) != 0 {
			t.Errorf("items=%v: Expected empty queue, got %v", items, q.Pairs)
		}
	}
}

func TestBuildRejectsMalformedPrior(t *testing.T) {
	tests := []struct {
		name  string
		prior []models.Judgment
	}{
		{"empty song_a", []models.Judgment{{SongA: "", SongB: "b.wav"}}},
		{"empty song_b", []models.Judgment{{SongA: "a.wav", SongB: ""}}},
		{"self pair", []models.Judgment{{SongA: "a.wav", SongB: "a.wav"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder(WithSeed(1)).Build([]string{"a.wav", "b.wav"}, tt.prior)
			if !errors.Is(err, ErrMalformedJudgments) {
				t.Errorf("Expected ErrMalformedJudgments, got %v", err)
			}
		})
	}
}

func TestBuildThreeItemsWithOnePrior(t *testing.T) {
	items := []string{"a.wav", "b.wav", "c.wav"}
	prior := []models.Judgment{{SongA: "a.wav", SongB: "b.wav", Score: 0.4}}

	q, err := NewBuilder().Build(items, prior)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(q.Pairs) != 2 {
		t.Fatalf("Expected 2 pairs, got %d", len(q.Pairs))
	}
	for _, p := range q.Pairs {
		if p == (models.Pair{A: "a.wav", B: "b.wav"}) || p == (models.Pair{A: "b.wav", B: "a.wav"}) {
			t.Errorf("Judged pair %v still queued", p)
		}
	}
}

func TestEnumeratePairsOrder(t *testing.T) {
	got := EnumeratePairs([]string{"c", "a", "b"})
	want := []models.Pair{{A: "a", B: "b"}, {A: "a", B: "c"}, {A: "b", B: "c"}}
	if !slices.Equal(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPairCount(t *testing.T) {
	for n, want := range map[int]int{-1: 0, 0: 0, 1: 0, 2: 1, 3: 3, 10: 45} {
		if got := PairCount(n); got != want {
			t.Errorf("PairCount(%d): Expected %d, got %d", n, want, got)
		}
	}
}
