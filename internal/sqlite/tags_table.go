package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.TagRepository = (*tagsTable)(nil)

const tagColumns = "id, name, color, created_at"

type tagsTable struct {
	repoBase
}

// GetAll returns every tag ordered by name.
func (tt *tagsTable) GetAll() ([]types.Tag, error) {
	return tt.list("SELECT " + tagColumns + " FROM tags ORDER BY name")
}

// GetByID returns the tag, or nil when absent.
func (tt *tagsTable) GetByID(id string) (*types.Tag, error) {
	return tt.getWhere("id", id)
}

// GetByName returns the tag with exactly this name, or nil when absent.
// Names are case sensitive.
func (tt *tagsTable) GetByName(name string) (*types.Tag, error) {
	return tt.getWhere("name", name)
}

// GetBuyerTags returns the tags attached to at least one buyer.
func (tt *tagsTable) GetBuyerTags() ([]types.Tag, error) {
	return tt.list("SELECT DISTINCT t.id, t.name, t.color, t.created_at FROM tags t" +
		" JOIN buyer_tags bt ON bt.tag_id = t.id ORDER BY t.name")
}

// GetPropertyTags returns the tags attached to at least one property.
func (tt *tagsTable) GetPropertyTags() ([]types.Tag, error) {
	return tt.list("SELECT DISTINCT t.id, t.name, t.color, t.created_at FROM tags t" +
		" JOIN property_tags pt ON pt.tag_id = t.id ORDER BY t.name")
}

// Create returns the existing tag when one with the same name exists, so
// creating a tag twice yields the same id.
func (tt *tagsTable) Create(req types.CreateTagRequest) (*types.Tag, error) {
	name := strings.TrimSpace(req.Name)
	existing, err := tt.GetByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	db, err := tt.db()
	if err != nil {
		return nil, err
	}
	id := generateUUID()
	if _, err := db.Exec(
		"INSERT INTO tags ("+tagColumns+") VALUES (?, ?, ?, ?)",
		id, name, nullStr(req.Color), formatTime(tt.now()),
	); err != nil {
		return nil, wrapErr("creating tag", err)
	}
	return tt.GetByID(id)
}

// Update renames or recolors a tag. Tags carry no updated_at.
func (tt *tagsTable) Update(req types.UpdateTagRequest) (*types.Tag, error) {
	err := tt.withTx(func(tx *sql.Tx) error {
		ok, err := tt.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return tt.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "name", req.Name, func(s string) any { return strings.TrimSpace(s) })
		setField(&cs, "color", req.Color, nullStr)
		if cs.empty() {
			return nil
		}
		if err := cs.exec(tx, "tags", req.ID); err != nil {
			return wrapErr("updating tag", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tt.GetByID(req.ID)
}

func (tt *tagsTable) getWhere(col, value string) (*types.Tag, error) {
	db, err := tt.db()
	if err != nil {
		return nil, err
	}
	t, err := scanTag(db.QueryRow("SELECT "+tagColumns+" FROM tags WHERE "+col+" = ?", value))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag by %s: %w", col, err)
	}
	return t, nil
}

func (tt *tagsTable) list(query string) ([]types.Tag, error) {
	db, err := tt.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("fetching tags: %w", err)
	}
	defer rows.Close()

	tags := []types.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating tag: %w", err)
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func scanTag(row rowScanner) (*types.Tag, error) {
	var t types.Tag
	var color sql.NullString
	var createdAt string
	if err := row.Scan(&t.ID, &t.Name, &color, &createdAt); err != nil {
		return nil, err
	}
	t.Color = color.String
	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &t, nil
}
