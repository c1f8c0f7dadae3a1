package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// timeLayout is the stored timestamp format: UTC with millisecond precision,
// so that text comparison orders rows chronologically.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// timeFormats are accepted when reading timestamps written by older
// releases.
var timeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	types.DateLayout,
}

// querier is satisfied by both *sql.DB and *sql.Tx. Reads that happen while
// a transaction is open must go through the transaction: the pool holds a
// single connection.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, types.ErrInvalidData)
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseNullDate(ns sql.NullString) (*types.Date, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	d, err := types.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullFloat64Ptr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Column value converters. Named string types, pointers, and dates are
// flattened to driver values before they reach the driver.

func str[T ~string](v T) any { return string(v) }

func nullStr[T ~string](v T) any {
	if v == "" {
		return nil
	}
	return string(v)
}

func num[T ~int | ~int64](v T) any { return int64(v) }

func flag(v bool) any { return boolInt(v) }

func nullNum(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullReal(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullDate(p *types.Date) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func timestamp(t time.Time) any { return formatTime(t) }

// changeset collects the column assignments of a partial update.
type changeset struct {
	cols []string
	args []any
}

func (c *changeset) add(col string, v any) {
	c.cols = append(c.cols, col+" = ?")
	c.args = append(c.args, v)
}

func (c *changeset) empty() bool {
	return len(c.cols) == 0
}

// exec runs UPDATE table SET ... WHERE id = ?.
func (c *changeset) exec(q querier, table, id string) error {
	query := "UPDATE " + table + " SET " + strings.Join(c.cols, ", ") + " WHERE id = ?"
	_, err := q.Exec(query, append(c.args, id)...)
	return err
}

// setField adds col to the changeset when o was provided.
func setField[T any](c *changeset, col string, o types.Optional[T], conv func(T) any) {
	if v, ok := o.Get(); ok {
		c.add(col, conv(v))
	}
}

// repoBase holds what every entity table shares: the backend, the table
// name, and the entity name used in error messages.
type repoBase struct {
	backend *Backend
	table   string
	entity  string
}

func (r repoBase) db() (*sql.DB, error) {
	return r.backend.DB()
}

// now returns the backend clock truncated to the stored precision.
func (r repoBase) now() time.Time {
	return r.backend.Now().Truncate(time.Millisecond)
}

func (r repoBase) notFound(id string) error {
	return fmt.Errorf("%w: %s %s", types.ErrNotFound, r.entity, id)
}

// Count returns the number of rows in the table.
func (r repoBase) Count() (int, error) {
	db, err := r.db()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + r.table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", r.table, err)
	}
	return n, nil
}

// Exists reports whether a row with the given id exists.
func (r repoBase) Exists(id string) (bool, error) {
	db, err := r.db()
	if err != nil {
		return false, err
	}
	return r.exists(db, id)
}

func (r repoBase) exists(q querier, id string) (bool, error) {
	var one int
	err := q.QueryRow("SELECT 1 FROM "+r.table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking %s existence: %w", r.entity, err)
	}
	return true, nil
}

// Delete removes the row with the given id. Dependent rows go with it
// through the foreign keys.
func (r repoBase) Delete(id string) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM "+r.table+" WHERE id = ?", id)
	if err != nil {
		return wrapErr("deleting "+r.entity, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", r.entity, err)
	}
	if n == 0 {
		return r.notFound(id)
	}
	return nil
}

// withTx runs fn in a transaction and commits when fn succeeds.
func (r repoBase) withTx(fn func(tx *sql.Tx) error) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", r.entity, err)
	}
	return nil
}

// touch sets last_contact on one row. No other column changes.
func (r repoBase) touch(id string) error {
	db, err := r.db()
	if err != nil {
		return err
	}
	res, err := db.Exec("UPDATE "+r.table+" SET last_contact = ? WHERE id = ?", formatTime(r.now()), id)
	if err != nil {
		return fmt.Errorf("updating last contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating last contact: %w", err)
	}
	if n == 0 {
		return r.notFound(id)
	}
	return nil
}

// wrapErr adds op to err and marks storage constraint failures with
// ErrConstraint.
func wrapErr(op string, err error) error {
	if isConstraintErr(err) {
		return fmt.Errorf("%s: %w: %w", op, types.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}

// queryStrings returns the first column of every row. Rows are drained and
// closed before returning.
func queryStrings(q querier, query string, args ...any) ([]string, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// ensureTag returns the id of the tag called name, creating it when absent.
func ensureTag(q querier, name string, now time.Time) (string, error) {
	var id string
	err := q.QueryRow("SELECT id FROM tags WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("looking up tag %q: %w", name, err)
	}
	id = generateUUID()
	if _, err := q.Exec(
		"INSERT INTO tags (id, name, color, created_at) VALUES (?, ?, NULL, ?)",
		id, name, formatTime(now),
	); err != nil {
		return "", wrapErr("creating tag "+name, err)
	}
	return id, nil
}

// replaceTags makes names the complete tag set of one owner through the
// join table. Blank names are ignored.
func replaceTags(q querier, joinTable, ownerCol, ownerID string, names []string, now time.Time) error {
	if _, err := q.Exec("DELETE FROM "+joinTable+" WHERE "+ownerCol+" = ?", ownerID); err != nil {
		return fmt.Errorf("clearing %s: %w", joinTable, err)
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		tagID, err := ensureTag(q, name, now)
		if err != nil {
			return err
		}
		if _, err := q.Exec(
			"INSERT INTO "+joinTable+" ("+ownerCol+", tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			ownerID, tagID,
		); err != nil {
			return wrapErr("linking tag "+name, err)
		}
	}
	return nil
}

// replaceValues makes values the complete set of one owner in a
// (owner, value) association table.
func replaceValues[T ~string](q querier, table, ownerCol, valueCol, ownerID string, values []T) error {
	if _, err := q.Exec("DELETE FROM "+table+" WHERE "+ownerCol+" = ?", ownerID); err != nil {
		return fmt.Errorf("clearing %s: %w", table, err)
	}
	for _, v := range values {
		if strings.TrimSpace(string(v)) == "" {
			continue
		}
		if _, err := q.Exec(
			"INSERT INTO "+table+" ("+ownerCol+", "+valueCol+") VALUES (?, ?) ON CONFLICT DO NOTHING",
			ownerID, string(v),
		); err != nil {
			return wrapErr("inserting into "+table, err)
		}
	}
	return nil
}

// tagNames lists the tag names of one owner, sorted by name.
func tagNames(q querier, joinTable, ownerCol, ownerID string) ([]string, error) {
	return queryStrings(q,
		"SELECT t.name FROM tags t JOIN "+joinTable+" j ON j.tag_id = t.id WHERE j."+ownerCol+" = ? ORDER BY t.name",
		ownerID,
	)
}

// enumValues converts stored strings to a named string type.
func enumValues[T ~string](values []string) []T {
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}

// likePattern wraps s for a substring LIKE match.
func likePattern(s string) string {
	return "%" + s + "%"
}

// whereClause joins conditions with AND, or returns "" when there are none.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}
