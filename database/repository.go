package database

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ops-dashboard/models"
)

var (
	// ErrNotFound is returned by updates that match no row owned by the caller.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidReference is returned when a foreign id names a row the
	// caller does not own.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Publisher receives a notification after every successful row change.
type Publisher interface {
	Publish(change models.Change)
}

type Repository struct {
	db        *DB
	publisher Publisher
	now       func() time.Time
}

func NewRepository(db *DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks that the database answers.
func (r *Repository) Ping() error {
	return r.db.Ping()
}

// SetPublisher wires the realtime feed. A nil publisher disables notifications.
func (r *Repository) SetPublisher(p Publisher) {
	r.publisher = p
}

func (r *Repository) publish(table string, typ models.ChangeType, userID, recordID string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(models.Change{
		Table:    table,
		Type:     typ,
		RecordID: recordID,
		UserID:   userID,
		At:       r.now(),
	})
}

// execer is satisfied by *DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// inTx runs fn in one transaction. fn's error rolls it back.
func (r *Repository) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// updateColumns applies a partial update to a row owned by userID and bumps
// updated_at. Column names come from the models' Columns methods, never from
// request input.
func (r *Repository) updateColumns(q execer, table, userID, id string, cols map[string]any, extra ...string) error {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+len(extra)+1)
	args := make([]any, 0, len(names)+3)
	for _, name := range names {
		sets = append(sets, name+" = ?")
		args = append(args, cols[name])
	}
	sets = append(sets, extra...)
	sets = append(sets, "updated_at = ?")
	args = append(args, r.now(), id, userID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ? AND user_id = ?", table, strings.Join(sets, ", "))
	res, err := q.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// deleteRow removes a row owned by userID. A missing row is not an error and
// reports false.
func (r *Repository) deleteRow(q execer, table, userID, id string) (bool, error) {
	res, err := q.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ? AND user_id = ?", table), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// checkOwned verifies that id names a row of table owned by userID. Empty ids
// pass.
func (r *Repository) checkOwned(table, userID, id string) error {
	if id == "" {
		return nil
	}
	var n int
	err := r.db.QueryRow(
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ? AND user_id = ?", table), id, userID,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrInvalidReference)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UTC()
}
