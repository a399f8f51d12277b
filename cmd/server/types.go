package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater"
	"github.com/himanishpuri/SimilarityRater/pkg/rater/audio"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	return v
}

// SubmitJudgmentRequest is the request body for POST /api/sessions/{id}/judgments
type SubmitJudgmentRequest struct {
	// Score is a pointer so an explicit 0 is not mistaken for a missing
	// field. A quoted number is rejected while decoding.
	Score *float64 `json:"score" validate:"required"`
}

// Validate checks that the score is present. The range check belongs to
// the session.
func (r *SubmitJudgmentRequest) Validate() (float64, error) {
	if err := validate.Struct(r); err != nil {
		return 0, fmt.Errorf("score is required")
	}
	return *r.Score, nil
}

// SessionResponse wraps a snapshot with the progress fraction for progress bars
type SessionResponse struct {
	rater.Snapshot
	Fraction float64 `json:"fraction"`
}

func newSessionResponse(snap rater.Snapshot) SessionResponse {
	return SessionResponse{Snapshot: snap, Fraction: snap.Progress.Fraction()}
}

// UploadItemsResponse is the response for POST /api/sessions/{id}/items
type UploadItemsResponse struct {
	SessionResponse
	Reactivated bool     `json:"reactivated"`
	Warnings    []string `json:"warnings,omitempty"`
}

// ListItemsResponse is the response for GET /api/sessions/{id}/items
type ListItemsResponse struct {
	Items []audio.Info `json:"items"`
	Count int          `json:"count"`
}

// PairResponse is the response for GET /api/sessions/{id}/pair
type PairResponse struct {
	Pair     models.Pair     `json:"pair"`
	Progress models.Progress `json:"progress"`
	MinScore float64         `json:"min_score"`
	MaxScore float64         `json:"max_score"`
}

// SubmitJudgmentResponse is the response for a recorded judgment
type SubmitJudgmentResponse struct {
	Judgment models.Judgment `json:"judgment"`
	Session  SessionResponse `json:"session"`
}

// ResetResponse is returned by both steps of the reset flow
type ResetResponse struct {
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}

// CreateSessionResponse is the response for POST /api/sessions
type CreateSessionResponse struct {
	ID      string          `json:"id"`
	Session SessionResponse `json:"session"`
}

// DeleteSessionResponse is the response for DELETE /api/sessions/{id}
type DeleteSessionResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
