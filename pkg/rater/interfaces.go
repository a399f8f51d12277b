package rater

import (
	"github.com/himanishpuri/SimilarityRater/pkg/logger"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

// Store checkpoints the flat judgment list of a session so a crashed or
// closed rater can pick up where it stopped.
type Store interface {
	SaveSession(sessionID string, itemCount int, judgments []models.Judgment) error
	AppendJudgment(sessionID string, judgment models.Judgment) error
	LoadJudgments(sessionID string) ([]models.Judgment, error)
	ListSessions() ([]models.SessionRecord, error)
	DeleteSession(sessionID string) error
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}

// prefixLogger is implemented by loggers that can tag every line with the
// session id.
type prefixLogger interface {
	With(prefix string) *logger.Logger
}
