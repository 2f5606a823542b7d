package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/user/facility-scraper/internal/aggregate"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/repository"
)

// State identifies a stage of a scrape run.
type State string

const (
	StateLoadCatalog    State = "load_catalog"
	StatePaginate       State = "paginate"
	StateAcquireSession State = "acquire_session"
	StateFetch          State = "fetch"
	StateAggregate      State = "aggregate"
	StatePersist        State = "persist"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Document keys in the store.
const (
	CatalogDocumentKey      = "all_facilities"
	AvailabilityDocumentKey = "facility_availability"
	DetailedDocumentKey     = "detailed_availability"
)

// detailedDocument is the persisted run report with its per-facility results.
type detailedDocument struct {
	entity.RunReport
	Results []entity.FacilityAvailability `json:"results"`
}

// Pipeline orchestrates one run: load catalog, refresh it from the listing,
// acquire a session, fan out availability fetches, aggregate, persist.
//
// Only session acquisition failure, or discovery ending with an empty
// catalog, is fatal. Any subset of fetch failures still proceeds to
// aggregation and persistence with partial data.
type Pipeline struct {
	catalog  *CatalogBuilder
	sessions repository.SessionProvider
	fetcher  *FetcherPool
	sink     *aggregate.Aggregator
	store    repository.DocumentStore

	// refresh controls whether the run paginates the listing or relies on the
	// persisted catalog alone.
	refresh bool

	state State
}

// NewPipeline wires the pipeline stages together.
func NewPipeline(
	catalog *CatalogBuilder,
	sessions repository.SessionProvider,
	fetcher *FetcherPool,
	sink *aggregate.Aggregator,
	store repository.DocumentStore,
	refresh bool,
) *Pipeline {
	return &Pipeline{
		catalog:  catalog,
		sessions: sessions,
		fetcher:  fetcher,
		sink:     sink,
		store:    store,
		refresh:  refresh,
	}
}

// State returns the stage the pipeline last entered.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes one full scrape over the given window.
func (p *Pipeline) Run(ctx context.Context, window entity.DateWindow) (entity.RunReport, error) {
	p.enter(StateLoadCatalog)
	catalog := entity.NewCatalog()
	switch err := p.store.Read(ctx, CatalogDocumentKey, catalog); {
	case err == nil:
		slog.Info("Loaded persisted catalog", "facilities", catalog.Size(), "centers", len(catalog.Centers))
	case errors.Is(err, repository.ErrDocumentNotFound):
		slog.Info("No persisted catalog, starting empty")
	default:
		slog.Warn("Failed to load persisted catalog, starting empty", "error", err)
	}

	partial := false
	if p.refresh {
		p.enter(StatePaginate)
		added, err := p.catalog.Discover(ctx, catalog)
		if err != nil {
			partial = true
			slog.Warn("Catalog refresh incomplete", "added", added, "error", err)
		} else {
			slog.Info("Catalog refreshed", "added", added, "facilities", catalog.Size())
		}
		// The merge only ever appends, so a partially refreshed catalog is
		// still safe to persist.
		if err := p.store.Write(ctx, CatalogDocumentKey, catalog); err != nil {
			slog.Error("Failed to persist catalog", "error", err)
		}
	}

	if catalog.Size() == 0 {
		p.enter(StateFailed)
		return entity.RunReport{}, fmt.Errorf("no facilities known after discovery: %w", repository.ErrPaginationAborted)
	}

	p.enter(StateAcquireSession)
	session, err := p.sessions.Acquire(ctx)
	if err != nil {
		p.enter(StateFailed)
		return entity.RunReport{}, fmt.Errorf("acquire session: %w", err)
	}
	slog.Info("Session acquired", "cookies", len(session.Cookies))

	p.enter(StateFetch)
	p.fetcher.Fetch(ctx, catalog.Facilities(), session, window)

	p.enter(StateAggregate)
	report := p.sink.Report(catalog)
	report.PartialCatalog = partial

	p.enter(StatePersist)
	if err := p.store.Write(ctx, AvailabilityDocumentKey, p.sink.Grouped()); err != nil {
		slog.Error("Failed to persist availability document", "error", err)
	}
	detailed := detailedDocument{RunReport: report, Results: p.sink.Details()}
	if err := p.store.Write(ctx, DetailedDocumentKey, detailed); err != nil {
		slog.Error("Failed to persist detailed document", "error", err)
	}

	p.enter(StateDone)
	slog.Info("Run complete",
		"bookable", report.TotalBookable,
		"with_availability", report.WithAvailability,
		"failed", report.FailedFetches,
		"skipped", report.SkippedUnbookable,
		"partial_catalog", report.PartialCatalog,
	)
	return report, nil
}

func (p *Pipeline) enter(s State) {
	p.state = s
	slog.Info("Pipeline state", "state", string(s))
}
