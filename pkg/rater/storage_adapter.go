package rater

import (
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"github.com/himanishpuri/SimilarityRater/pkg/rater/storage"
)

// storageAdapter adapts the storage.DBClient to implement the Store interface.
type storageAdapter struct {
	db *storage.DBClient
}

// NewSQLiteStore opens (or creates) a checkpoint database at dbPath.
func NewSQLiteStore(dbPath string) (Store, error) {
	db, err := storage.NewDBClientWithPath(dbPath)
	if err != nil {
		return nil, err
	}
	return &storageAdapter{db: db}, nil
}

func (s *storageAdapter) SaveSession(sessionID string, itemCount int, judgments []models.Judgment) error {
	return s.db.SaveSession(sessionID, itemCount, judgments)
}

func (s *storageAdapter) AppendJudgment(sessionID string, judgment models.Judgment) error {
	return s.db.AppendJudgment(sessionID, judgment)
}

func (s *storageAdapter) LoadJudgments(sessionID string) ([]models.Judgment, error) {
	return s.db.LoadJudgments(sessionID)
}

func (s *storageAdapter) ListSessions() ([]models.SessionRecord, error) {
	return s.db.ListSessions()
}

func (s *storageAdapter) DeleteSession(sessionID string) error {
	return s.db.DeleteSession(sessionID)
}

func (s *storageAdapter) Close() error {
	return s.db.Close()
}
