package engine

import (
	"time"

	"github.com/talgya/tradepost/internal/simerr"
)

// SessionStatus is whether a session still accepts turns and actions.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// Session is one player's game. CurrentDay is the clock the turn engine
// advances; day 0 is the last bootstrapped history day.
type Session struct {
	ID            string        `db:"id" json:"id"`
	Seed          int64         `db:"seed" json:"seed"`
	CurrentDay    int           `db:"current_day" json:"current_day"`
	Cash          float64       `db:"cash" json:"cash"`
	LocationID    string        `db:"location_id" json:"location_id"`
	Status        SessionStatus `db:"status" json:"status"`
	CatalogDigest string        `db:"catalog_digest" json:"catalog_digest"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}

func (s *Session) requireActive() error {
	if s.Status != SessionActive {
		return &simerr.StateConflictError{Entity: "session", ID: s.ID, State: string(s.Status), Reason: "the session is over"}
	}
	return nil
}
