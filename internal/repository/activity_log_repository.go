package repository

import (
	"context"
	"sort"
	"time"

	"funnybanny-backend/internal/db"
	"funnybanny-backend/internal/domain"
	"funnybanny-backend/internal/ports"
)

// ActivityLogRepository records who did what, under "activityLogs".
type ActivityLogRepository struct {
	Store ports.Store
}

type CreateActivityLogInput struct {
	Title     string
	Message   string
	Actor     string
	Type      domain.ActivityLogType
	Timestamp time.Time
}

func (r ActivityLogRepository) Create(ctx context.Context, in CreateActivityLogInput) (string, error) {
	id, err := r.Store.Push(ctx, domain.PathActivityLogs)
	if err != nil {
		return "", err
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}
	err = r.Store.Set(ctx, db.JoinPath(domain.PathActivityLogs, id), domain.ActivityLog{
		Title:    in.Title,
		Message:  in.Message,
		Actor:    in.Actor,
		Type:     in.Type,
		LoggedAt: in.Timestamp,
	})
	return id, err
}

// List returns the newest entries first.
func (r ActivityLogRepository) List(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	items, err := listCollection(ctx, r.Store, domain.PathActivityLogs, func(l *domain.ActivityLog, id string) { l.ID = id })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].LoggedAt.After(items[j].LoggedAt) })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
