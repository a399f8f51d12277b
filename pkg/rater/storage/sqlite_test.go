package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/himanishpuri/SimilarityRater/pkg/models"
)

// Helper function to create a temporary test database
func setupTestDB(t *testing.T) (*DBClient, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_ratings.sqlite3")
	t.Setenv("RATER_DB_PATH", dbPath)

	client, err := NewDBClient()
	if err != nil {
		t.Fatalf("Failed to create test DB client: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	return client, dbPath
}

func sampleJudgments() []models.Judgment {
	return []models.Judgment{
		{SongA: "a.wav", SongB: "b.wav", Score: 0.4},
		{SongA: "c.wav", SongB: "a.wav", Score: 0.9},
	}
}

func TestNewDBClient(t *testing.T) {
	client, dbPath := setupTestDB(t)

	if client.DB == nil || client.db == nil {
		t.Fatal("Expected non-nil database handles")
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at %s", dbPath)
	}
}

func TestNewDBClientWithCustomPath(t *testing.T) {
	customPath := filepath.Join(t.TempDir(), "subdir", "custom.db")

	client, err := NewDBClientWithPath(customPath)
	if err != nil {
		t.Fatalf("Failed to create DB with custom path: %v", err)
	}
	defer client.Close()

	if _, err := os.Stat(customPath); os.IsNotExist(err) {
		t.Errorf("Database file was not created at custom path %s", customPath)
	}
}

func TestSaveAndLoadJudgments(t *testing.T) {
	client, _ := setupTestDB(t)

	if err := client.SaveSession("s1", 3, sampleJudgments()); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := client.LoadJudgments("s1")
	if err != nil {
		t.Fatalf("LoadJudgments failed: %v", err)
	}
	want := sampleJudgments()
	if len(got) != len(want) {
		t.Fatalf("Expected %d judgments, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: Expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSaveSessionReplaces(t *testing.T) {
	client, _ := setupTestDB(t)

	client.SaveSession("s1", 3, sampleJudgments())
	replacement := []models.Judgment{{SongA: "x.wav", SongB: "y.wav", Score: 0.1}}
	if err := client.SaveSession("s1", 2, replacement); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, _ := client.LoadJudgments("s1")
	if len(got) != 1 || got[0] != replacement[0] {
		t.Errorf("Expected %+v, got %+v", replacement, got)
	}

	var sess RatingSession
	client.DB.First(&sess, "id = ?", "s1")
	if sess.ItemCount != 2 {
		t.Errorf("Expected item count 2, got %d", sess.ItemCount)
	}
}

func TestAppendJudgment(t *testing.T) {
	client, _ := setupTestDB(t)
	client.SaveSession("s1", 3, nil)

	for _, j := range sampleJudgments() {
		if err := client.AppendJudgment("s1", j); err != nil {
			t.Fatalf("AppendJudgment failed: %v", err)
		}
	}

	got, _ := client.LoadJudgments("s1")
	if len(got) != 2 || got[1].SongA != "c.wav" {
		t.Errorf("Expected judgments in insertion order, got %+v", got)
	}
}

func TestAppendJudgmentRejectsDuplicatePair(t *testing.T) {
	client, _ := setupTestDB(t)
	client.SaveSession("s1", 2, nil)

	client.AppendJudgment("s1", models.Judgment{SongA: "a.wav", SongB: "b.wav", Score: 0.2})
	err := client.AppendJudgment("s1", models.Judgment{SongA: "b.wav", SongB: "a.wav", Score: 0.3})
	if err == nil {
		t.Error("Expected duplicate unordered pair to be rejected")
	}
}

func TestAppendJudgmentUnknownSession(t *testing.T) {
	client, _ := setupTestDB(t)

	err := client.AppendJudgment("missing", sampleJudgments()[0])
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestLoadJudgmentsUnknownSession(t *testing.T) {
	client, _ := setupTestDB(t)

	if _, err := client.LoadJudgments("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestListSessions(t *testing.T) {
	client, _ := setupTestDB(t)

	client.SaveSession("s1", 3, sampleJudgments())
	client.SaveSession("s2", 5, nil)

	sessions, err := client.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	byID := make(map[string]models.SessionRecord)
	for _, s := range sessions {
		byID[s.ID] = s
	}
	if byID["s1"].JudgmentCount != 2 || byID["s1"].ItemCount != 3 {
		t.Errorf("Expected s1 with 3 items and 2 judgments, got %+v", byID["s1"])
	}
	if byID["s2"].JudgmentCount != 0 || byID["s2"].ItemCount != 5 {
		t.Errorf("Expected s2 with 5 items and 0 judgments, got %+v", byID["s2"])
	}
}

func TestDeleteSession(t *testing.T) {
	client, _ := setupTestDB(t)
	client.SaveSession("s1", 3, sampleJudgments())

	if err := client.DeleteSession("s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := client.LoadJudgments("s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}

	var count int64
	client.DB.Model(&JudgmentRow{}).Where("session_id = ?", "s1").Count(&count)
	if count != 0 {
		t.Errorf("Expected judgments removed, got %d", count)
	}
}

func TestPairKeyIgnoresOrientation(t *testing.T) {
	if pairKey("a", "b") != pairKey("b", "a") {
		t.Error("Expected pairKey to be orientation independent")
	}
	if pairKey("a", "bc") == pairKey("ab", "c") {
		t.Error("Expected pairKey to keep names apart")
	}
}

func TestNilClient(t *testing.T) {
	var c *DBClient
	if err := c.SaveSession("s", 1, nil); err == nil {
		t.Error("Expected error from nil client")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Expected nil client Close to succeed, got %v", err)
	}
}
