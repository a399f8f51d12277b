//go:build !js && !wasm
// +build !js,!wasm

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/himanishpuri/SimilarityRater/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultDBFile = "similarity.sqlite3"
const errDBClientNil = "db client is nil"

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

type DBClient struct {
	DB *gorm.DB
	db *sql.DB
}

type RatingSession struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	ItemCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JudgmentRow stores one judgment. PairKey is the orientation-independent
// pair, so a session can hold at most one row per unordered pair.
type JudgmentRow struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	SessionID string  `gorm:"type:varchar(36);index:idx_session_position,priority:1;uniqueIndex:idx_session_pair,priority:1"`
	Position  int     `gorm:"index:idx_session_position,priority:2"`
	PairKey   string  `gorm:"uniqueIndex:idx_session_pair,priority:2"`
	SongA     string  `json:"song_a"`
	SongB     string  `json:"song_b"`
	Score     float64 `json:"similarity_score"`
}

func (JudgmentRow) TableName() string { return "judgments" }

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

func NewDBClient() (*DBClient, error) {
	dbPath := os.Getenv("RATER_DB_PATH")
	if dbPath == "" {
		dbPath = DefaultDBFile
	}
	return NewDBClientWithPath(dbPath)
}

func NewDBClientWithPath(dbPath string) (*DBClient, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dbPath), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}

	// sqlite serialises writers; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&RatingSession{}, &JudgmentRow{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &DBClient{DB: db, db: sqlDB}, nil
}

func (c *DBClient) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// SaveSession replaces the checkpoint of sessionID with judgments.
func (c *DBClient) SaveSession(sessionID string, itemCount int, judgments []models.Judgment) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		var sess RatingSession
		err := tx.Where("id = ?", sessionID).First(&sess).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sess = RatingSession{ID: sessionID, ItemCount: itemCount}
			if err := tx.Create(&sess).Error; err != nil {
				return fmt.Errorf("creating session: %w", err)
			}
		case err != nil:
			return fmt.Errorf("querying session: %w", err)
		default:
			if err := tx.Model(&sess).Update("item_count", itemCount).Error; err != nil {
				return fmt.Errorf("updating session: %w", err)
			}
		}

		if err := tx.Where("session_id = ?", sessionID).Delete(&JudgmentRow{}).Error; err != nil {
			return fmt.Errorf("clearing judgments: %w", err)
		}
		if len(judgments) == 0 {
			return nil
		}

		rows := make([]JudgmentRow, 0, len(judgments))
		for i, j := range judgments {
			rows = append(rows, JudgmentRow{
				SessionID: sessionID,
				Position:  i,
				PairKey:   pairKey(j.SongA, j.SongB),
				SongA:     j.SongA,
				SongB:     j.SongB,
				Score:     j.Score,
			})
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert judgments: %w", err)
		}
		return nil
	})
}

// AppendJudgment adds one judgment at the end of an existing checkpoint.
func (c *DBClient) AppendJudgment(sessionID string, j models.Judgment) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}

	return c.DB.Transaction(func(tx *gorm.DB) error {
		var sess RatingSession
		if err := tx.Where("id = ?", sessionID).First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
			}
			return fmt.Errorf("querying session: %w", err)
		}

		var count int64
		if err := tx.Model(&JudgmentRow{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
			return fmt.Errorf("counting judgments: %w", err)
		}

		row := JudgmentRow{
			SessionID: sessionID,
			Position:  int(count),
			PairKey:   pairKey(j.SongA, j.SongB),
			SongA:     j.SongA,
			SongB:     j.SongB,
			Score:     j.Score,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("inserting judgment: %w", err)
		}
		return tx.Model(&sess).Update("updated_at", time.Now()).Error
	})
}

// LoadJudgments returns the checkpointed judgments in the order they were
// recorded.
func (c *DBClient) LoadJudgments(sessionID string) ([]models.Judgment, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var sess RatingSession
	if err := c.DB.Where("id = ?", sessionID).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	var rows []JudgmentRow
	if err := c.DB.Where("session_id = ?", sessionID).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying judgments: %w", err)
	}

	out := make([]models.Judgment, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Judgment{SongA: r.SongA, SongB: r.SongB, Score: r.Score})
	}
	return out, nil
}

func (c *DBClient) ListSessions() ([]models.SessionRecord, error) {
	if c == nil || c.DB == nil {
		return nil, errors.New(errDBClientNil)
	}

	var sessions []RatingSession
	if err := c.DB.Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	var counts []struct {
		SessionID string
		N         int
	}
	if err := c.DB.Model(&JudgmentRow{}).
		Select("session_id, count(*) as n").
		Group("session_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("counting judgments: %w", err)
	}
	bySession := make(map[string]int, len(counts))
	for _, row := range counts {
		bySession[row.SessionID] = row.N
	}

	out := make([]models.SessionRecord, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, models.SessionRecord{
			ID:            s.ID,
			ItemCount:     s.ItemCount,
			JudgmentCount: bySession[s.ID],
			CreatedAt:     s.CreatedAt,
			UpdatedAt:     s.UpdatedAt,
		})
	}
	return out, nil
}

func (c *DBClient) DeleteSession(sessionID string) error {
	if c == nil || c.DB == nil {
		return errors.New(errDBClientNil)
	}
	return c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&JudgmentRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", sessionID).Delete(&RatingSession{}).Error; err != nil {
			return err
		}
		return nil
	})
}
