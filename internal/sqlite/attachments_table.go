package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.AttachmentRepository = (*attachmentsTable)(nil)

const attachmentColumns = "id, property_id, filename, original_filename, file_path, file_type, file_size, created_at"

type attachmentsTable struct {
	repoBase
}

// GetAll returns every attachment record, newest first.
func (at *attachmentsTable) GetAll() ([]types.PropertyAttachment, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	atts, err := queryAttachments(db, "SELECT "+attachmentColumns+" FROM property_attachments ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("fetching attachments: %w", err)
	}
	return atts, nil
}

// GetByID returns the attachment record, or nil when absent.
func (at *attachmentsTable) GetByID(id string) (*types.PropertyAttachment, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	a, err := scanAttachment(db.QueryRow("SELECT "+attachmentColumns+" FROM property_attachments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting attachment %s: %w", id, err)
	}
	return a, nil
}

// GetByPropertyID returns the attachments of one property, newest first.
func (at *attachmentsTable) GetByPropertyID(propertyID string) ([]types.PropertyAttachment, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	atts, err := queryAttachments(db,
		"SELECT "+attachmentColumns+" FROM property_attachments WHERE property_id = ? ORDER BY created_at DESC", propertyID)
	if err != nil {
		return nil, fmt.Errorf("fetching attachments of property %s: %w", propertyID, err)
	}
	return atts, nil
}

// Create records a file already written to disk. The property must exist.
func (at *attachmentsTable) Create(req types.CreateAttachmentRequest) (*types.PropertyAttachment, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	id := generateUUID()
	if _, err := db.Exec(
		"INSERT INTO property_attachments ("+attachmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, req.PropertyID, req.Filename, req.OriginalFilename, req.FilePath, req.FileType, req.FileSize,
		formatTime(at.now()),
	); err != nil {
		return nil, wrapErr("creating attachment", err)
	}
	return at.GetByID(id)
}

// Update returns the record unchanged: attachments are immutable. A missing
// record is ErrNotFound.
func (at *attachmentsTable) Update(id string) (*types.PropertyAttachment, error) {
	a, err := at.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, at.notFound(id)
	}
	return a, nil
}

// DeleteByPropertyID removes every record of one property and returns how
// many were removed.
func (at *attachmentsTable) DeleteByPropertyID(propertyID string) (int, error) {
	db, err := at.db()
	if err != nil {
		return 0, err
	}
	res, err := db.Exec("DELETE FROM property_attachments WHERE property_id = ?", propertyID)
	if err != nil {
		return 0, fmt.Errorf("deleting attachments of property %s: %w", propertyID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting attachments of property %s: %w", propertyID, err)
	}
	return int(n), nil
}

func queryAttachments(q querier, query string, args ...any) ([]types.PropertyAttachment, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	atts := []types.PropertyAttachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating attachment: %w", err)
		}
		atts = append(atts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attachments: %w", err)
	}
	return atts, nil
}

func scanAttachment(row rowScanner) (*types.PropertyAttachment, error) {
	var a types.PropertyAttachment
	var fileType sql.NullString
	var fileSize sql.NullInt64
	var createdAt string
	if err := row.Scan(&a.ID, &a.PropertyID, &a.Filename, &a.OriginalFilename, &a.FilePath,
		&fileType, &fileSize, &createdAt); err != nil {
		return nil, err
	}
	a.FileType = fileType.String
	a.FileSize = fileSize.Int64
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
