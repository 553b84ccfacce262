// Package requestdata carries per-request identity through context.
package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	observerIDKey contextKey = "observer_id"
	roleKey       contextKey = "role"
)

func WithObserverID(ctx context.Context, observerID uuid.UUID) context.Context {
	return context.WithValue(ctx, observerIDKey, observerID)
}

func ObserverID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(observerIDKey).(uuid.UUID)
	return id, ok
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func Role(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}
