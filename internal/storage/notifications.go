package storage

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/core"
)

// Stored timestamps are UTC RFC 3339, which sorts lexically.
const timestampLayout = time.RFC3339

type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(s *Store) *NotificationRepository {
	return &NotificationRepository{store: s}
}

// Send stores n. A zero timestamp is set to now.
func (r *NotificationRepository) Send(ctx context.Context, n *core.Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = r.store.now().UTC().Truncate(time.Second)
	}
	_, err := r.store.Execute(ctx, `INSERT INTO notifications (notif_id, type, message, timestamp) VALUES (?, ?, ?, ?)`,
		n.ID, n.Type, n.Message, n.Timestamp.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.store.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE notif_id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("check notification: %w", err)
	}
	return n > 0, nil
}

// List returns notifications, newest first.
func (r *NotificationRepository) List(ctx context.Context) ([]core.Notification, error) {
	rows, err := r.store.Query(ctx, `SELECT notif_id, type, message, timestamp FROM notifications ORDER BY timestamp DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n  core.Notification
			ts string
		)
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("notification %s: %w", n.ID, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
