package rater

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/himanishpuri/SimilarityRater/pkg/logger"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

// Snapshot is the view of a session returned after every operation.
type Snapshot struct {
	SessionID  string          `json:"session_id"`
	State      State           `json:"state"`
	Current    *models.Pair    `json:"current,omitempty"`
	Progress   models.Progress `json:"progress"`
	Items      int             `json:"items"`
	Judgments  int             `json:"judgments"`
	MinScore   float64         `json:"min_score"`
	MaxScore   float64         `json:"max_score"`
	ResetArmed bool            `json:"reset_armed"`
}

// Session is one rater working through one item set. It pairs a Builder
// with a Tracker, optionally checkpoints into a Store, and gates reset
// behind two confirmations.
type Session struct {
	id      string
	builder *Builder
	tracker *Tracker
	store   Store
	log     Logger
	gate    ResetGate
	items   []string
}

func NewSession(opts ...Option) *Session {
	cfg := newConfig(opts)

	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if l, ok := cfg.Logger.(prefixLogger); ok {
		cfg.Logger = l.With("session=" + cfg.SessionID)
	}

	return &Session{
		id:      cfg.SessionID,
		builder: &Builder{rng: cfg.Rand},
		tracker: &Tracker{minScore: cfg.MinScore, maxScore: cfg.MaxScore},
		store:   cfg.Store,
		log:     cfg.Logger,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Load activates an item set. prior is merged into the judgments already
// held (a pair judged in both keeps the first judgment) and the queue is
// rebuilt against the merged list.
//
// A malformed prior is rejected before anything changes; callers are
// expected to report it and call Load again without prior.
func (s *Session) Load(items []string, prior []models.Judgment) (Snapshot, error) {
	if _, err := judgedSet(prior); err != nil {
		return s.Snapshot(), err
	}
	s.gate.Disarm()

	merged, dropped := mergeJudgments(s.tracker.judgments, prior)
	if dropped > 0 {
		s.log.Warnf("Ignored %d prior judgments for pairs already judged", dropped)
	}
	s.tracker.setJudgments(merged)
	s.items = normalizeItems(items)

	q, err := s.builder.Build(s.items, merged)
	if err != nil && !errors.Is(err, ErrTooFewItems) {
		return s.Snapshot(), err
	}
	if actErr := s.tracker.Activate(q); actErr != nil {
		s.log.Warnf("%v (%d items)", actErr, q.Items)
		s.checkpoint(q.Items)
		return s.Snapshot(), actErr
	}

	s.log.Infof("%d items, %d pairs queued, %d already judged",
		q.Items, len(q.Pairs), q.Total()-len(q.Pairs))
	s.checkpoint(q.Items)
	return s.Snapshot(), nil
}

// Submit validates score, records it for the current pair and advances.
func (s *Session) Submit(score float64) (models.Judgment, Snapshot, error) {
	s.gate.Disarm()

	j, err := s.tracker.Submit(score)
	if err != nil {
		return models.Judgment{}, s.Snapshot(), err
	}

	if s.store != nil {
		if err := s.store.AppendJudgment(s.id, j); err != nil {
			s.log.Errorf("Checkpoint failed: %v", err)
		}
	}
	s.log.Debugf("%s vs %s = %.2f", j.SongA, j.SongB, j.Score)
	return j, s.Snapshot(), nil
}

// RequestReset arms the reset gate. Nothing is discarded until
// ConfirmReset is called with no other operation in between.
func (s *Session) RequestReset() Snapshot {
	s.gate.Arm()
	return s.Snapshot()
}

func (s *Session) CancelReset() Snapshot {
	s.gate.Disarm()
	return s.Snapshot()
}

// ConfirmReset clears the queue and every judgment if the gate was armed.
func (s *Session) ConfirmReset() (Snapshot, error) {
	if err := s.gate.Confirm(); err != nil {
		return s.Snapshot(), err
	}

	discarded := len(s.tracker.judgments)
	s.tracker.Reset()
	s.items = nil
	if s.store != nil {
		if err := s.store.DeleteSession(s.id); err != nil {
			s.log.Errorf("Clearing checkpoint failed: %v", err)
		}
	}
	s.log.Warnf("Reset, %d judgments discarded", discarded)
	return s.Snapshot(), nil
}

func (s *Session) Current() (models.Pair, bool) {
	return s.tracker.Current()
}

func (s *Session) State() State {
	return s.tracker.State()
}

func (s *Session) Progress() models.Progress {
	return s.tracker.Progress()
}

func (s *Session) Judgments() []models.Judgment {
	return s.tracker.Judgments()
}

func (s *Session) ValidateScore(score float64) error {
	return s.tracker.ValidateScore(score)
}

// Remaining returns the pairs not yet judged, in presentation order.
func (s *Session) Remaining() []models.Pair {
	return s.tracker.Queue()[s.tracker.Cursor():]
}

func (s *Session) Snapshot() Snapshot {
	lo, hi := s.tracker.ScoreRange()
	snap := Snapshot{
		SessionID:  s.id,
		State:      s.tracker.State(),
		Progress:   s.tracker.Progress(),
		Items:      len(s.items),
		Judgments:  len(s.tracker.judgments),
		MinScore:   lo,
		MaxScore:   hi,
		ResetArmed: s.gate.Armed(),
	}
	if p, ok := s.tracker.Current(); ok {
		snap.Current = &p
	}
	return snap
}

func (s *Session) checkpoint(itemCount int) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSession(s.id, itemCount, s.tracker.judgments); err != nil {
		s.log.Errorf("Checkpoint failed: %v", err)
	}
}

// mergeJudgments appends the judgments of extra whose pair is not already
// present in base. It returns the merged list and how many were dropped.
func mergeJudgments(base, extra []models.Judgment) ([]models.Judgment, int) {
	seen := make(map[models.Pair]struct{}, len(base)+len(extra))
	merged := make([]models.Judgment, 0, len(base)+len(extra))
	dropped := 0

	add := func(j models.Judgment) {
		key := j.Pair().Key()
		if _, ok := seen[key]; ok {
			dropped++
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, j)
	}
	for _, j := range base {
		add(j)
	}
	for _, j := range extra {
		add(j)
	}
	return merged, dropped
}

// Resume rebuilds a session from a checkpoint written by store.
func Resume(store Store, sessionID string, items []string, opts ...Option) (*Session, Snapshot, error) {
	prior, err := store.LoadJudgments(sessionID)
	if err != nil {
		return nil, Snapshot{}, fmt.Errorf("loading checkpoint %s: %w", sessionID, err)
	}

	opts = append(opts, WithStore(store), WithSessionID(sessionID))
	s := NewSession(opts...)
	snap, err := s.Load(items, prior)
	return s, snap, err
}
