package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/talgya/tradepost/internal/buddy"
	"github.com/talgya/tradepost/internal/economy"
	"github.com/talgya/tradepost/internal/engine"
	"github.com/talgya/tradepost/internal/events"
	"github.com/talgya/tradepost/internal/journal"
	"github.com/talgya/tradepost/internal/simerr"
)

// repos binds every repository to one transaction.
type repos struct {
	tx *sqlx.Tx
}

func (r *repos) Sessions() engine.Sessions        { return sessionRepo{r.tx} }
func (r *repos) Resources() engine.ResourceStates { return stateRepo{r.tx} }
func (r *repos) History() engine.PriceHistory     { return historyRepo{r.tx} }
func (r *repos) Events() engine.EventInstances    { return eventRepo{r.tx} }
func (r *repos) Buddies() engine.Buddies          { return buddyRepo{r.tx} }
func (r *repos) Lots() engine.Lots                { return lotRepo{r.tx} }
func (r *repos) Journal() engine.Journal          { return journalRepo{r.tx} }

// mustAffect turns a zero-row update into a not-found error.
func mustAffect(res sql.Result, op, entity string, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return simerr.Persistence(op, err)
	}
	if n == 0 {
		return &simerr.NotFoundError{Entity: entity, ID: id}
	}
	return nil
}

type sessionRepo struct{ tx *sqlx.Tx }

func (s sessionRepo) Create(ctx context.Context, sess *engine.Session) error {
	_, err := s.tx.NamedExecContext(ctx, `INSERT INTO sessions
		(id, seed, current_day, cash, location_id, status, catalog_digest, created_at)
		VALUES (:id, :seed, :current_day, :cash, :location_id, :status, :catalog_digest, :created_at)`, sess)
	return simerr.Persistence("create session", err)
}

func (s sessionRepo) Get(ctx context.Context, id string) (*engine.Session, error) {
	var sess engine.Session
	err := s.tx.GetContext(ctx, &sess, "SELECT * FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &simerr.NotFoundError{Entity: "session", ID: id}
	}
	if err != nil {
		return nil, simerr.Persistence("get session", err)
	}
	return &sess, nil
}

func (s sessionRepo) Update(ctx context.Context, sess *engine.Session) error {
	res, err := s.tx.NamedExecContext(ctx, `UPDATE sessions SET
		current_day = :current_day, cash = :cash, location_id = :location_id, status = :status
		WHERE id = :id`, sess)
	if err != nil {
		return simerr.Persistence("update session", err)
	}
	return mustAffect(res, "update session", "session", sess.ID)
}

func (s sessionRepo) List(ctx context.Context) ([]engine.Session, error) {
	var out []engine.Session
	err := s.tx.SelectContext(ctx, &out, "SELECT * FROM sessions ORDER BY created_at DESC")
	return out, simerr.Persistence("list sessions", err)
}

type stateRepo struct{ tx *sqlx.Tx }

func (s stateRepo) Create(ctx context.Context, st *economy.ResourceState) error {
	res, err := s.tx.NamedExecContext(ctx, `INSERT INTO resource_states
		(session_id, resource_id, current_price, base_price, available_quantity, last_refreshed_day,
		 sine_phase, trend_phase, price_direction, price_momentum)
		VALUES (:session_id, :resource_id, :current_price, :base_price, :available_quantity, :last_refreshed_day,
		 :sine_phase, :trend_phase, :price_direction, :price_momentum)`, st)
	if err != nil {
		return simerr.Persistence("create resource state", err)
	}
	st.ID, err = res.LastInsertId()
	return simerr.Persistence("create resource state", err)
}

func (s stateRepo) ListBySession(ctx context.Context, sessionID string) ([]*economy.ResourceState, error) {
	var out []*economy.ResourceState
	err := s.tx.SelectContext(ctx, &out,
		"SELECT * FROM resource_states WHERE session_id = ? ORDER BY resource_id", sessionID)
	return out, simerr.Persistence("list resource states", err)
}

func (s stateRepo) Update(ctx context.Context, st *economy.ResourceState) error {
	res, err := s.tx.NamedExecContext(ctx, `UPDATE resource_states SET
		current_price = :current_price, available_quantity = :available_quantity,
		last_refreshed_day = :last_refreshed_day, price_direction = :price_direction,
		price_momentum = :price_momentum
		WHERE id = :id`, st)
	if err != nil {
		return simerr.Persistence("update resource state", err)
	}
	return mustAffect(res, "update resource state", "resource state", st.ID)
}

type historyRepo struct{ tx *sqlx.Tx }

// Upsert overwrites an existing row for the same day.
func (h historyRepo) Upsert(ctx context.Context, e economy.HistoryEntry) error {
	_, err := h.tx.NamedExecContext(ctx, `INSERT INTO price_history (game_resource_id, day, price, quantity)
		VALUES (:game_resource_id, :day, :price, :quantity)
		ON CONFLICT (game_resource_id, day) DO UPDATE SET price = excluded.price, quantity = excluded.quantity`, e)
	return simerr.Persistence("upsert price history", err)
}

func (h historyRepo) List(ctx context.Context, gameResourceID int64) ([]economy.HistoryEntry, error) {
	var out []economy.HistoryEntry
	err := h.tx.SelectContext(ctx, &out,
		"SELECT * FROM price_history WHERE game_resource_id = ? ORDER BY day", gameResourceID)
	return out, simerr.Persistence("list price history", err)
}

type eventRepo struct{ tx *sqlx.Tx }

func (e eventRepo) Create(ctx context.Context, inst *events.Instance) error {
	res, err := e.tx.NamedExecContext(ctx, `INSERT INTO event_instances
		(session_id, event_id, day_triggered, days_remaining, seen)
		VALUES (:session_id, :event_id, :day_triggered, :days_remaining, :seen)`, inst)
	if err != nil {
		return simerr.Persistence("create event", err)
	}
	inst.ID, err = res.LastInsertId()
	return simerr.Persistence("create event", err)
}

func (e eventRepo) ListBySession(ctx context.Context, sessionID string) ([]events.Instance, error) {
	var out []events.Instance
	err := e.tx.SelectContext(ctx, &out,
		"SELECT * FROM event_instances WHERE session_id = ? ORDER BY id", sessionID)
	return out, simerr.Persistence("list events", err)
}

func (e eventRepo) Update(ctx context.Context, inst events.Instance) error {
	res, err := e.tx.NamedExecContext(ctx,
		"UPDATE event_instances SET days_remaining = :days_remaining, seen = :seen WHERE id = :id", inst)
	if err != nil {
		return simerr.Persistence("update event", err)
	}
	return mustAffect(res, "update event", "event instance", inst.ID)
}

type buddyRepo struct{ tx *sqlx.Tx }

func (b buddyRepo) Create(ctx context.Context, a *buddy.Agent) error {
	res, err := b.tx.NamedExecContext(ctx, `INSERT INTO buddies
		(session_id, name, location_id, status, resource_id, quantity, purchase_price,
		 target_profit_percent, last_sale_profit, last_sale_day)
		VALUES (:session_id, :name, :location_id, :status, :resource_id, :quantity, :purchase_price,
		 :target_profit_percent, :last_sale_profit, :last_sale_day)`, a)
	if err != nil {
		return simerr.Persistence("create buddy", err)
	}
	a.ID, err = res.LastInsertId()
	return simerr.Persistence("create buddy", err)
}

func (b buddyRepo) Get(ctx context.Context, sessionID string, id int64) (*buddy.Agent, error) {
	var a buddy.Agent
	err := b.tx.GetContext(ctx, &a, "SELECT * FROM buddies WHERE session_id = ? AND id = ?", sessionID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &simerr.NotFoundError{Entity: "buddy", ID: id}
	}
	if err != nil {
		return nil, simerr.Persistence("get buddy", err)
	}
	return &a, nil
}

func (b buddyRepo) ListBySession(ctx context.Context, sessionID string) ([]*buddy.Agent, error) {
	var out []*buddy.Agent
	err := b.tx.SelectContext(ctx, &out, "SELECT * FROM buddies WHERE session_id = ? ORDER BY id", sessionID)
	return out, simerr.Persistence("list buddies", err)
}

func (b buddyRepo) Update(ctx context.Context, a *buddy.Agent) error {
	if err := a.Check(); err != nil {
		return simerr.Persistence("update buddy", err)
	}
	res, err := b.tx.NamedExecContext(ctx, `UPDATE buddies SET
		location_id = :location_id, status = :status, resource_id = :resource_id, quantity = :quantity,
		purchase_price = :purchase_price, target_profit_percent = :target_profit_percent,
		last_sale_profit = :last_sale_profit, last_sale_day = :last_sale_day
		WHERE id = :id`, a)
	if err != nil {
		return simerr.Persistence("update buddy", err)
	}
	return mustAffect(res, "update buddy", "buddy", a.ID)
}

type lotRepo struct{ tx *sqlx.Tx }

func (l lotRepo) Create(ctx context.Context, lot *economy.Lot) error {
	res, err := l.tx.NamedExecContext(ctx, `INSERT INTO lots
		(session_id, resource_id, quantity, purchase_price, purchase_day)
		VALUES (:session_id, :resource_id, :quantity, :purchase_price, :purchase_day)`, lot)
	if err != nil {
		return simerr.Persistence("create lot", err)
	}
	lot.ID, err = res.LastInsertId()
	return simerr.Persistence("create lot", err)
}

func (l lotRepo) ListBySession(ctx context.Context, sessionID string) ([]economy.Lot, error) {
	var out []economy.Lot
	err := l.tx.SelectContext(ctx, &out, "SELECT * FROM lots WHERE session_id = ? ORDER BY id", sessionID)
	return out, simerr.Persistence("list lots", err)
}

func (l lotRepo) ListByResource(ctx context.Context, sessionID, resourceID string) ([]economy.Lot, error) {
	var out []economy.Lot
	err := l.tx.SelectContext(ctx, &out,
		"SELECT * FROM lots WHERE session_id = ? AND resource_id = ? ORDER BY id", sessionID, resourceID)
	return out, simerr.Persistence("list lots", err)
}

func (l lotRepo) Update(ctx context.Context, lot economy.Lot) error {
	res, err := l.tx.NamedExecContext(ctx, "UPDATE lots SET quantity = :quantity WHERE id = :id", lot)
	if err != nil {
		return simerr.Persistence("update lot", err)
	}
	return mustAffect(res, "update lot", "lot", lot.ID)
}

func (l lotRepo) Delete(ctx context.Context, id int64) error {
	res, err := l.tx.ExecContext(ctx, "DELETE FROM lots WHERE id = ?", id)
	if err != nil {
		return simerr.Persistence("delete lot", err)
	}
	return mustAffect(res, "delete lot", "lot", id)
}

type journalRepo struct{ tx *sqlx.Tx }

type journalRow struct {
	journal.Record
	RefKind string `db:"ref_kind"`
	RefID   string `db:"ref_id"`
}

func (j journalRepo) Append(ctx context.Context, rec *journal.Record) error {
	row := journalRow{Record: *rec, RefKind: string(rec.Ref.Kind), RefID: rec.Ref.ID}
	if row.RefKind == "" {
		row.RefKind = string(journal.RefNone)
	}
	res, err := j.tx.NamedExecContext(ctx, `INSERT INTO journal
		(session_id, day, category, message, ref_kind, ref_id, created_at)
		VALUES (:session_id, :day, :category, :message, :ref_kind, :ref_id, :created_at)`, row)
	if err != nil {
		return simerr.Persistence("append journal", err)
	}
	rec.ID, err = res.LastInsertId()
	return simerr.Persistence("append journal", err)
}

func (j journalRepo) List(ctx context.Context, sessionID string, limit int) ([]journal.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []journalRow
	err := j.tx.SelectContext(ctx, &rows,
		"SELECT * FROM journal WHERE session_id = ? ORDER BY id DESC LIMIT ?", sessionID, limit)
	if err != nil {
		return nil, simerr.Persistence("list journal", err)
	}
	out := make([]journal.Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record
		out[i].Ref = journal.Ref{Kind: journal.RefKind(row.RefKind), ID: row.RefID}
	}
	return out, nil
}
