package models

import "time"

// SessionRecord describes a checkpointed rating session.
type SessionRecord struct {
	ID            string    // Session UUID
	ItemCount     int       // Items in the active set when last loaded
	JudgmentCount int       // Judgments currently checkpointed
	CreatedAt     time.Time // First checkpoint
	UpdatedAt     time.Time // Last checkpoint
}
