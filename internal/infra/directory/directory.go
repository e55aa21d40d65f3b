// Package directory adapts the user store into the read-side profile
// resolver consumed by the Q&A service.
package directory

import (
	"context"
	"log/slog"
	"time"

	"github.com/prepnest/prepnest/internal/domain/qna"
	"github.com/prepnest/prepnest/internal/domain/users"
)

// ProfileCache is an optional lookaside cache for resolved profiles.
type ProfileCache interface {
	Get(ctx context.Context, userID int64) (qna.Profile, bool, error)
	Set(ctx context.Context, profile qna.Profile, ttl time.Duration) error
}

// Resolver implements qna.ProfileResolver on top of the user repository.
// Cache failures degrade to a repository read, never to a failed resolve.
type Resolver struct {
	repo   users.Repository
	cache  ProfileCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewResolver constructs the resolver. cache may be nil.
func NewResolver(repo users.Repository, cache ProfileCache, ttl time.Duration, logger *slog.Logger) *Resolver {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Resolver{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "directory.resolver"),
	}
}

// Resolve returns the display profile for a user id.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (qna.Profile, bool, error) {
	if r.cache != nil {
		profile, ok, err := r.cache.Get(ctx, userID)
		if err != nil {
			r.logger.Warn("profile cache read failed", "userId", userID, "error", err)
		} else if ok {
			return profile, true, nil
		}
	}

	user, found, err := r.repo.GetByID(ctx, userID)
	if err != nil {
		return qna.Profile{}, false, err
	}
	if !found {
		return qna.Profile{}, false, nil
	}

	profile := qna.Profile{ID: user.ID, Name: user.Name, Email: user.Email}
	if r.cache != nil {
		if err := r.cache.Set(ctx, profile, r.ttl); err != nil {
			r.logger.Warn("profile cache write failed", "userId", userID, "error", err)
		}
	}
	return profile, true, nil
}

var _ qna.ProfileResolver = (*Resolver)(nil)
