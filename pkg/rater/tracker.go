package rater

import (
	"fmt"
	"math"
	"slices"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

type State int

const (
	StateEmpty State = iota
	StateActive
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateActive:
		return "active"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "empty":
		*s = StateEmpty
	case "active":
		*s = StateActive
	case "complete":
		*s = StateComplete
	default:
		return fmt.Errorf("unknown state %q", text)
	}
	return nil
}

// Tracker walks a queue with a cursor and accumulates judgments. Each queued
// pair is consumed exactly once. A Tracker is not safe for concurrent use;
// hosts that serve several raters keep one Tracker per rater.
type Tracker struct {
	minScore  float64
	maxScore  float64
	queue     []models.Pair
	cursor    int
	items     int
	active    bool
	judgments []models.Judgment
}

func NewTracker(opts ...Option) *Tracker {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Tracker{minScore: cfg.MinScore, maxScore: cfg.MaxScore}
}

// Activate replaces the queue and rewinds the cursor. Accumulated judgments
// are kept. A queue with no pairs left moves straight to Complete.
func (t *Tracker) Activate(q Queue) error {
	if q.Items < 2 {
		t.queue, t.cursor, t.items, t.active = nil, 0, q.Items, false
		return ErrTooFewItems
	}
	t.queue = slices.Clone(q.Pairs)
	t.cursor = 0
	t.items = q.Items
	t.active = true
	return nil
}

func (t *Tracker) State() State {
	switch {
	case !t.active:
		return StateEmpty
	case t.cursor < len(t.queue):
		return StateActive
	default:
		return StateComplete
	}
}

// Current returns the pair awaiting a score without consuming it.
func (t *Tracker) Current() (models.Pair, bool) {
	if t.State() != StateActive {
		return models.Pair{}, false
	}
	return t.queue[t.cursor], true
}

// ValidateScore checks a score against the configured closed range.
func (t *Tracker) ValidateScore(score float64) error {
	if math.IsNaN(score) || score < t.minScore || score > t.maxScore {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrScoreOutOfRange, score, t.minScore, t.maxScore)
	}
	return nil
}

// ScoreRange returns the configured bounds.
func (t *Tracker) ScoreRange() (lo, hi float64) {
	return t.minScore, t.maxScore
}

// Submit records score for the current pair and advances by one.
// Nothing changes when it returns an error.
func (t *Tracker) Submit(score float64) (models.Judgment, error) {
	pair, ok := t.Current()
	if !ok {
		return models.Judgment{}, ErrNoCurrentPair
	}
	if err := t.ValidateScore(score); err != nil {
		return models.Judgment{}, err
	}

	j := models.Judgment{SongA: pair.A, SongB: pair.B, Score: score}
	t.judgments = append(t.judgments, j)
	t.cursor++
	return j, nil
}

// Reset discards the queue and every judgment.
func (t *Tracker) Reset() {
	t.queue = nil
	t.cursor = 0
	t.items = 0
	t.active = false
	t.judgments = nil
}

// Progress reports judged and total pairs for the active item set.
func (t *Tracker) Progress() models.Progress {
	if !t.active {
		return models.Progress{}
	}
	total := PairCount(t.items)
	return models.Progress{Judged: total - t.Remaining(), Total: total}
}

func (t *Tracker) Remaining() int {
	return len(t.queue) - t.cursor
}

func (t *Tracker) Cursor() int {
	return t.cursor
}

// Queue returns a copy of the full queue, consumed pairs included.
func (t *Tracker) Queue() []models.Pair {
	return slices.Clone(t.queue)
}

func (t *Tracker) Judgments() []models.Judgment {
	return slices.Clone(t.judgments)
}

func (t *Tracker) setJudgments(js []models.Judgment) {
	t.judgments = js
}
