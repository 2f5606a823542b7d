package repository

import (
	"context"

	"github.com/user/facility-scraper/internal/entity"
)

// SessionProvider obtains the browser-derived cookie set the availability API
// requires. Acquire is called exactly once per run.
type SessionProvider interface {
	// Acquire produces a fresh session or fails with ErrSessionUnavailable.
	Acquire(ctx context.Context) (entity.Session, error)
}
