// Package identity resolves the user on whose behalf the core operates.
package identity

import (
	"context"
	"strings"
)

// Provider yields the current user id, or false when nobody is signed in.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Static always resolves to the same user. An empty id resolves to nobody.
type Static string

func (s Static) CurrentUserID(context.Context) (string, bool) {
	id := strings.TrimSpace(string(s))
	return id, id != ""
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext extracts the user id placed by WithUserID.
// Returns empty string if not found.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// FromContext reads the user id placed in the request context by WithUserID.
type FromContext struct{}

func (FromContext) CurrentUserID(ctx context.Context) (string, bool) {
	id := UserIDFromContext(ctx)
	return id, id != ""
}

// Chain tries each provider in order and returns the first user it resolves.
type Chain []Provider

func (c Chain) CurrentUserID(ctx context.Context) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if id, ok := p.CurrentUserID(ctx); ok {
			return id, true
		}
	}
	return "", false
}
