package rater

import "errors"

var (
	// ErrTooFewItems is reported when an item set cannot form a single pair.
	ErrTooFewItems = errors.New("need at least two items")

	// ErrNoCurrentPair is returned by Submit outside the Active state.
	ErrNoCurrentPair = errors.New("nothing left to rate")

	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrMalformedJudgments marks a prior-judgment input that was rejected
	// as a whole.
	ErrMalformedJudgments = errors.New("malformed judgments")

	ErrResetNotArmed = errors.New("reset not requested")
)
