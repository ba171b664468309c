package repository

import (
	"context"

	"github.com/newsdesk/newsroom/internal/db"
	"github.com/newsdesk/newsroom/internal/domain"
)

type subscriberRepository struct {
	conn *db.Connection
}

// NewSubscriberRepository wires a repository over the confirmed subscriber set.
func NewSubscriberRepository(conn *db.Connection) SubscriberRepository {
	return &subscriberRepository{conn: conn}
}

func (r *subscriberRepository) ListConfirmed(ctx context.Context) ([]domain.Subscriber, error) {
	rows, err := r.conn.Pool.Query(
		ctx,
		`SELECT id, email, created_at FROM subscribers
		 WHERE confirmed = TRUE
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, storageError("list subscribers", err)
	}
	defer rows.Close()

	subscribers := []domain.Subscriber{}
	for rows.Next() {
		var s domain.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.CreatedAt); err != nil {
			return nil, storageError("scan subscriber", err)
		}
		subscribers = append(subscribers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate subscribers", err)
	}
	return subscribers, nil
}
