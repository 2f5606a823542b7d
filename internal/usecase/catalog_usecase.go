package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
	"github.com/user/facility-scraper/pkg/metrics"
)

// CatalogBuilder enumerates the paginated facility listing and merges newly
// discovered facilities into the known catalog. Pagination is strictly
// sequential: the upstream paginator is unreliable under concurrent offset
// requests.
type CatalogBuilder struct {
	listing   repository.ListingAPI
	pageSize  int
	pageDelay time.Duration
}

// NewCatalogBuilder creates a new catalog builder. pageSize is the requested
// records-per-page; the size the upstream actually honors may differ and is
// measured from the first response. pageDelay is the courtesy pause between
// page requests.
func NewCatalogBuilder(listing repository.ListingAPI, pageSize int, pageDelay time.Duration) *CatalogBuilder {
	if pageSize < 1 {
		pageSize = 100
	}
	return &CatalogBuilder{
		listing:   listing,
		pageSize:  pageSize,
		pageDelay: pageDelay,
	}
}

// Discover merges newly listed facilities into catalog and returns the number
// added. Existing entries are never overwritten; nothing is pruned.
//
// A transport error or malformed page aborts pagination: whatever has been
// accumulated so far is kept and the error wraps ErrPaginationAborted, so the
// caller decides whether to persist partial data.
func (b *CatalogBuilder) Discover(ctx context.Context, catalog *entity.Catalog) (int, error) {
	first, err := b.listing.FetchPage(ctx, 1, b.pageSize)
	if err != nil {
		return 0, fmt.Errorf("%w: page 1: %v", repository.ErrPaginationAborted, err)
	}
	metrics.CatalogPagesTotal.Inc()

	added := b.ingest(catalog, first.Items)

	// Trust the response, not the request: the upstream may honor a different
	// page size than the one asked for.
	itemsPerPage := len(first.Items)
	totalPages := 1
	if itemsPerPage > 0 {
		totalPages = (first.Total + itemsPerPage - 1) / itemsPerPage
	}
	slog.Info("Listing inventory",
		"total", first.Total,
		"items_per_page", itemsPerPage,
		"pages", totalPages,
	)
	if itemsPerPage == 0 {
		return added, nil
	}

	for page := 2; page <= totalPages; page++ {
		sleepCtx(ctx, b.pageDelay)

		pg, err := b.listing.FetchPage(ctx, page, b.pageSize)
		if err != nil {
			slog.Error("Listing page failed, aborting pagination", "page", page, "error", err)
			return added, fmt.Errorf("%w: page %d: %v", repository.ErrPaginationAborted, page, err)
		}
		metrics.CatalogPagesTotal.Inc()

		// An empty page signals upstream exhaustion even when total was stale.
		if len(pg.Items) == 0 {
			slog.Info("Empty listing page, stopping early", "page", page)
			break
		}

		pageAdded := b.ingest(catalog, pg.Items)
		added += pageAdded
		slog.Info("Listing page merged",
			"page", page,
			"items", len(pg.Items),
			"new", pageAdded,
		)
	}

	return added, nil
}

func (b *CatalogBuilder) ingest(catalog *entity.Catalog, items []entity.Facility) int {
	added := 0
	for _, f := range items {
		if catalog.Insert(f) {
			added++
			metrics.FacilitiesDiscovered.Inc()
		}
	}
	return added
}
