// Package events resolves world event effects and runs their lifecycle.
package events

// Instance is a time-boxed activation of an event definition in one session.
// It stays in storage after expiry; days_remaining of zero means inert.
type Instance struct {
	ID            int64  `db:"id" json:"id"`
	SessionID     string `db:"session_id" json:"session_id"`
	EventID       string `db:"event_id" json:"event_id"`
	DayTriggered  int    `db:"day_triggered" json:"day_triggered"`
	DaysRemaining int    `db:"days_remaining" json:"days_remaining"`
	Seen          bool   `db:"seen" json:"seen"`
}

// Active reports whether the instance still has days to run.
func (i Instance) Active() bool {
	return i.DaysRemaining > 0
}

// ActiveOnly filters instances down to the active ones.
func ActiveOnly(instances []Instance) []Instance {
	var out []Instance
	for _, inst := range instances {
		if inst.Active() {
			out = append(out, inst)
		}
	}
	return out
}

// AnyActive reports whether at least one instance is active.
func AnyActive(instances []Instance) bool {
	for _, inst := range instances {
		if inst.Active() {
			return true
		}
	}
	return false
}
