package repository

import (
	"context"

	"github.com/user/facility-scraper/internal/entity"
)

// AvailabilityAPI defines the contract for the per-facility daily
// availability endpoint.
type AvailabilityAPI interface {
	// FetchDaily retrieves the raw availability document for a facility over
	// the given window, authenticated with the session's cookies. The returned
	// bytes are valid JSON of an unspecified shape.
	FetchDaily(ctx context.Context, facilityID int64, session entity.Session, window entity.DateWindow) ([]byte, error)
}
