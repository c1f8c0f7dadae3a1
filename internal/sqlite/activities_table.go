package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

var _ types.ActivityRepository = (*activitiesTable)(nil)

const activityColumns = "id, deal_id, date, type, description, created_at"

type activitiesTable struct {
	repoBase
}

// GetAll returns every activity, most recent date first.
func (at *activitiesTable) GetAll() ([]types.Activity, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	activities, err := queryActivities(db, "SELECT "+activityColumns+" FROM activities ORDER BY date DESC")
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}
	return activities, nil
}

// GetByID returns the activity, or nil when absent.
func (at *activitiesTable) GetByID(id string) (*types.Activity, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	a, err := scanActivity(db.QueryRow("SELECT "+activityColumns+" FROM activities WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting activity %s: %w", id, err)
	}
	return a, nil
}

// GetByDeal returns the activities of one deal, most recent date first.
func (at *activitiesTable) GetByDeal(dealID string) ([]types.Activity, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	return activitiesByDeal(db, dealID)
}

// GetRecent returns at most limit activities dated within the last days,
// most recent first.
func (at *activitiesTable) GetRecent(days, limit int) ([]types.Activity, error) {
	db, err := at.db()
	if err != nil {
		return nil, err
	}
	since := at.now().AddDate(0, 0, -days)
	activities, err := queryActivities(db,
		"SELECT "+activityColumns+" FROM activities WHERE date >= ? ORDER BY date DESC LIMIT ?",
		formatTime(since), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching recent activities: %w", err)
	}
	return activities, nil
}

// Create logs an activity and moves the parent deal's updated_at to the
// activity's creation time. A zero date defaults to the creation time.
func (at *activitiesTable) Create(req types.CreateActivityRequest) (*types.Activity, error) {
	id := generateUUID()
	now := at.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}

	err := at.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT INTO activities ("+activityColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			id, req.DealID, formatTime(date), string(req.Type), req.Description, formatTime(now),
		)
		if err != nil {
			return wrapErr("creating activity", err)
		}
		if _, err := tx.Exec("UPDATE deals SET updated_at = ? WHERE id = ?", formatTime(now), req.DealID); err != nil {
			return fmt.Errorf("touching deal %s: %w", req.DealID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return at.GetByID(id)
}

// Update applies the provided fields. Activities carry no updated_at, so the
// parent deal is left untouched.
func (at *activitiesTable) Update(req types.UpdateActivityRequest) (*types.Activity, error) {
	err := at.withTx(func(tx *sql.Tx) error {
		ok, err := at.exists(tx, req.ID)
		if err != nil {
			return err
		}
		if !ok {
			return at.notFound(req.ID)
		}

		var cs changeset
		setField(&cs, "date", req.Date, timestamp)
		setField(&cs, "type", req.Type, str)
		setField(&cs, "description", req.Description, str)
		if cs.empty() {
			return nil
		}
		if err := cs.exec(tx, "activities", req.ID); err != nil {
			return wrapErr("updating activity", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return at.GetByID(req.ID)
}

func activitiesByDeal(q querier, dealID string) ([]types.Activity, error) {
	activities, err := queryActivities(q,
		"SELECT "+activityColumns+" FROM activities WHERE deal_id = ? ORDER BY date DESC", dealID)
	if err != nil {
		return nil, fmt.Errorf("loading activities of deal %s: %w", dealID, err)
	}
	return activities, nil
}

func queryActivities(q querier, query string, args ...any) ([]types.Activity, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []types.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("hydrating activity: %w", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return activities, nil
}

func scanActivity(row rowScanner) (*types.Activity, error) {
	var a types.Activity
	var activityType, date, createdAt string
	if err := row.Scan(&a.ID, &a.DealID, &date, &activityType, &a.Description, &createdAt); err != nil {
		return nil, err
	}
	a.Type = types.ActivityType(activityType)

	var err error
	if a.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
