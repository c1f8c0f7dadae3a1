package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// jsonlTableMapping maps JSONL filenames to their SQLite tables and column
// lists. Parents come before children.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
}{
	{"sellers.jsonl", "sellers", strings.Split(sellerColumns, ", ")},
	{"properties.jsonl", "properties", strings.Split(propertyColumns, ", ")},
	{"buyers.jsonl", "buyers", strings.Split(buyerColumns, ", ")},
	{"deals.jsonl", "deals", strings.Split(dealColumns, ", ")},
	{"activities.jsonl", "activities", strings.Split(activityColumns, ", ")},
	{"tags.jsonl", "tags", strings.Split(tagColumns, ", ")},
	{"buyer_tags.jsonl", "buyer_tags", []string{"buyer_id", "tag_id"}},
	{"property_tags.jsonl", "property_tags", []string{"property_id", "tag_id"}},
	{"buyer_zones.jsonl", "buyer_zones", []string{"buyer_id", "zone"}},
	{"buyer_preferred_types.jsonl", "buyer_preferred_types", []string{"buyer_id", "property_type"}},
	{"property_operation_types.jsonl", "property_operation_types", []string{"property_id", "operation_type"}},
	{"property_attachments.jsonl", "property_attachments", strings.Split(attachmentColumns, ", ")},
}

// maxOrphanPasses bounds the foreign key cleanup; each pass removes one
// level of orphans.
const maxOrphanPasses = 8

// ImportResult counts what happened to one table during an import.
type ImportResult struct {
	Table    string `json:"table"`
	Read     int    `json:"read"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Orphans  int    `json:"orphans"`
	Detached int    `json:"detached"`
}

// loadAllJSONL reads each JSONL file from dir and inserts its records into
// the matching table in one transaction. Malformed lines, records that
// violate a constraint, and rows whose id already exists are skipped.
// Unknown fields are ignored. Foreign keys are checked after loading:
// orphaned rows are removed, or detached where the reference is nullable,
// before commit.
func loadAllJSONL(db *sql.DB, dir string) ([]ImportResult, error) {
	if _, err := db.Exec("PRAGMA foreign_keys = OFF"); err != nil {
		return nil, fmt.Errorf("disabling foreign keys for load: %w", err)
	}
	defer db.Exec("PRAGMA foreign_keys = ON")

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	results := make([]ImportResult, 0, len(jsonlTableMapping))
	index := make(map[string]int, len(jsonlTableMapping))
	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dir, mapping.file))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		res := ImportResult{Table: mapping.table, Read: len(records)}
		if len(records) > 0 {
			res.Inserted, err = insertRecords(tx, mapping.table, mapping.columns, records)
			if err != nil {
				return nil, fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
			}
		}
		res.Skipped = res.Read - res.Inserted
		index[mapping.table] = len(results)
		results = append(results, res)
	}

	orphans, detached, err := removeOrphans(tx)
	if err != nil {
		return nil, err
	}
	for table, n := range orphans {
		if i, ok := index[table]; ok {
			results[i].Orphans = n
		}
	}
	for table, n := range detached {
		if i, ok := index[table]; ok {
			results[i].Detached = n
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing load transaction: %w", err)
	}
	return results, nil
}

// insertRecords inserts parsed JSONL records into a table and returns how
// many were inserted. Only columns listed in the mapping are extracted.
func insertRecords(tx *sql.Tx, table string, columns []string, records []json.RawMessage) (int, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		dec := json.NewDecoder(bytes.NewReader(rec))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			continue
		}

		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = jsonToSQL(obj[col])
		}

		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
		inserted++
	}
	return inserted, nil
}

// jsonToSQL converts a decoded JSON value to a driver value.
func jsonToSQL(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case bool:
		return boolInt(val)
	case string:
		return val
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(b)
	}
}

// setNullRefs names the nullable columns whose foreign key is ON DELETE
// SET NULL, keyed by "table.parent". Orphans through these columns are
// detached instead of removed.
var setNullRefs = map[string]string{
	"properties.sellers": "seller_id",
}

// removeOrphans repairs rows reported by PRAGMA foreign_key_check until none
// remain. Rows referencing a missing parent through a SET NULL column get
// that column cleared; all other orphans are deleted. It returns the
// removed and detached counts per table.
func removeOrphans(tx *sql.Tx) (removed, detached map[string]int, err error) {
	removed, detached = map[string]int{}, map[string]int{}
	for pass := 0; pass < maxOrphanPasses; pass++ {
		rows, err := tx.Query("PRAGMA foreign_key_check")
		if err != nil {
			return nil, nil, fmt.Errorf("checking foreign keys: %w", err)
		}
		type orphan struct {
			table  string
			parent string
			rowid  int64
		}
		var orphans []orphan
		for rows.Next() {
			var table, parent string
			var rowid sql.NullInt64
			var fkid int
			if err := rows.Scan(&table, &rowid, &parent, &fkid); err != nil {
				rows.Close()
				return nil, nil, fmt.Errorf("scanning foreign key check: %w", err)
			}
			if rowid.Valid {
				orphans = append(orphans, orphan{table, parent, rowid.Int64})
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, nil, fmt.Errorf("iterating foreign key check: %w", err)
		}
		if len(orphans) == 0 {
			return removed, detached, nil
		}

		for _, o := range orphans {
			if col, ok := setNullRefs[o.table+"."+o.parent]; ok {
				res, err := tx.Exec("UPDATE "+o.table+" SET "+col+" = NULL WHERE rowid = ?", o.rowid)
				if err != nil {
					return nil, nil, fmt.Errorf("detaching orphan in %s: %w", o.table, err)
				}
				if n, _ := res.RowsAffected(); n > 0 {
					detached[o.table]++
				}
				continue
			}
			res, err := tx.Exec("DELETE FROM "+o.table+" WHERE rowid = ?", o.rowid)
			if err != nil {
				return nil, nil, fmt.Errorf("removing orphan from %s: %w", o.table, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				removed[o.table]++
			}
		}
	}
	return removed, detached, nil
}
