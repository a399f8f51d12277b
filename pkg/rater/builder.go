package rater

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

// Queue is the shuffled work list for one item set.
type Queue struct {
	Pairs []models.Pair
	Items int // distinct items the queue was built from
}

// Total is the number of unordered pairs of the item set, N*(N-1)/2.
func (q Queue) Total() int {
	return PairCount(q.Items)
}

// PairCount returns n*(n-1)/2, or 0 for n < 2.
func PairCount(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}

// Builder turns an item set and a list of earlier judgments into the queue
// of pairs that still need a score.
type Builder struct {
	rng *rand.Rand
}

func NewBuilder(opts ...Option) *Builder {
	cfg := newConfig(opts)
	return &Builder{rng: cfg.Rand}
}

// Build enumerates every unordered pair of items, drops pairs that already
// appear in prior (in either orientation) and shuffles the rest once.
//
// Fewer than two distinct items yields an empty queue and ErrTooFewItems.
func (b *Builder) Build(items []string, prior []models.Judgment) (Queue, error) {
	judged, err := judgedSet(prior)
	if err != nil {
		return Queue{}, err
	}

	ids := normalizeItems(items)
	q := Queue{Items: len(ids)}
	if len(ids) < 2 {
		return q, ErrTooFewItems
	}

	all := EnumeratePairs(ids)
	q.Pairs = make([]models.Pair, 0, len(all))
	for _, p := range all {
		if _, ok := judged[p]; ok {
			continue
		}
		q.Pairs = append(q.Pairs, p)
	}

	b.rng.Shuffle(len(q.Pairs), func(i, j int) {
		q.Pairs[i], q.Pairs[j] = q.Pairs[j], q.Pairs[i]
	})
	return q, nil
}

// EnumeratePairs returns all pairs (i, j), i < j, over the sorted,
// de-duplicated identifiers.
func EnumeratePairs(items []string) []models.Pair {
	ids := normalizeItems(items)
	pairs := make([]models.Pair, 0, PairCount(len(ids)))
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			pairs = append(pairs, models.Pair{A: ids[i], B: ids[j]})
		}
	}
	return pairs
}

func normalizeItems(items []string) []string {
	ids := slices.Clone(items)
	slices.Sort(ids)
	return slices.Compact(ids)
}

// judgedSet holds both orientations of every prior judgment so lookups do
// not depend on how the pair was recorded.
func judgedSet(prior []models.Judgment) (map[models.Pair]struct{}, error) {
	set := make(map[models.Pair]struct{}, 2*len(prior))
	for i, j := range prior {
		if err := checkJudgment(j); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedJudgments, i, err)
		}
		p := j.Pair()
		set[p] = struct{}{}
		set[p.Reversed()] = struct{}{}
	}
	return set, nil
}

func checkJudgment(j models.Judgment) error {
	switch {
	case j.SongA == "" || j.SongB == "":
		return fmt.Errorf("song_a and song_b are required")
	case j.SongA == j.SongB:
		return fmt.Errorf("song_a and song_b must differ (%q)", j.SongA)
	}
	return nil
}
