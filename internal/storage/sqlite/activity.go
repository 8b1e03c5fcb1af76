package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mmynk/splitpool/internal/activity"
)

// SaveEvent persists an activity event.
func (s *SQLiteStore) SaveEvent(ctx context.Context, e activity.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO activity_events (id, pool_id, actor_id, event_type, event_data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.PoolID, e.ActorID, e.Type, string(data), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListEvents retrieves a pool's most recent events, newest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, poolID string, limit int) ([]activity.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, pool_id, actor_id, event_type, event_data, created_at
		 FROM activity_events WHERE pool_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		poolID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []activity.Event
	for rows.Next() {
		var e activity.Event
		var data string
		if err := rows.Scan(&e.ID, &e.PoolID, &e.ActorID, &e.Type, &data, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return nil, fmt.Errorf("failed to decode event data: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}
