package repository

import (
	"context"

	"github.com/user/facility-scraper/internal/entity"
)

// ListingPage is one page of the facility listing endpoint. Total is the
// upstream's record count, which may be stale; the page size the upstream
// actually honors is len(Items), not the requested size.
type ListingPage struct {
	Items []entity.Facility
	Total int
}

// ListingAPI defines the contract for the paginated facility listing
// endpoint.
type ListingAPI interface {
	// FetchPage requests one page of the listing. Page numbers start at 1.
	FetchPage(ctx context.Context, page, perPage int) (*ListingPage, error)
}
