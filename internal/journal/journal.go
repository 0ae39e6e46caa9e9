// Package journal defines the structured records the simulation emits for
// sales, purchases, buddy activity and world events.
package journal

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// RefKind names the kind of entity a record points at.
type RefKind string

const (
	RefNone     RefKind = "none"
	RefResource RefKind = "resource"
	RefLocation RefKind = "location"
	RefAgent    RefKind = "agent"
)

// Ref points a record at one entity, or at nothing.
type Ref struct {
	Kind RefKind `db:"ref_kind" json:"kind"`
	ID   string  `db:"ref_id" json:"id,omitempty"`
}

var NoRef = Ref{Kind: RefNone}

func ResourceRef(id string) Ref { return Ref{Kind: RefResource, ID: id} }
func LocationRef(id string) Ref { return Ref{Kind: RefLocation, ID: id} }
func AgentRef(id int64) Ref     { return Ref{Kind: RefAgent, ID: strconv.FormatInt(id, 10)} }

func (r Ref) String() string {
	if r.Kind == RefNone || r.Kind == "" {
		return "-"
	}
	return string(r.Kind) + ":" + r.ID
}

// AgentID returns the agent id for an agent ref.
func (r Ref) AgentID() (int64, bool) {
	if r.Kind != RefAgent {
		return 0, false
	}
	id, err := strconv.ParseInt(r.ID, 10, 64)
	return id, err == nil
}

// LogValue renders the ref as a slog group.
func (r Ref) LogValue() slog.Value {
	if r.Kind == RefNone || r.Kind == "" {
		return slog.StringValue("-")
	}
	return slog.GroupValue(slog.String("kind", string(r.Kind)), slog.String("id", r.ID))
}

// Category groups records for filtering.
type Category string

const (
	CategoryPurchase  Category = "purchase"
	CategorySale      Category = "sale"
	CategoryBuddy     Category = "buddy"
	CategoryBuddySale Category = "buddy_sale"
	CategoryEvent     Category = "event"
	CategoryTravel    Category = "travel"
	CategorySession   Category = "session"
)

// Record is one journal line.
type Record struct {
	ID        int64     `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Day       int       `db:"day" json:"day"`
	Category  Category  `db:"category" json:"category"`
	Message   string    `db:"message" json:"message"`
	Ref       Ref       `db:"-" json:"ref"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// New builds a record with a formatted message.
func New(sessionID string, day int, cat Category, ref Ref, format string, args ...any) Record {
	return Record{
		SessionID: sessionID,
		Day:       day,
		Category:  cat,
		Message:   fmt.Sprintf(format, args...),
		Ref:       ref,
		CreatedAt: time.Now().UTC(),
	}
}

// Emit mirrors records to the structured log. Callers emit only after the
// records are durably committed.
func Emit(records []Record) {
	for _, r := range records {
		slog.Info(r.Message,
			"session", r.SessionID,
			"day", r.Day,
			"category", string(r.Category),
			"ref", r.Ref,
		)
	}
}
