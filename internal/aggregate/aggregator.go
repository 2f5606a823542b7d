// Package aggregate collects per-facility availability results from
// concurrent fetch workers into a single grouped dataset.
package aggregate

import (
	"sync"
	"time"

	"github.com/user/facility-scraper/internal/entity"
)

// Grouped is center name -> facility name -> date label -> rendered slots,
// the shape of the persisted availability document.
type Grouped map[string]map[string]map[string][]string

// Aggregator merges results under a mutex; fetch workers submit from many
// goroutines. Within a center, equal facility names overwrite rather than
// merge, matching at-most-one result per facility per run.
type Aggregator struct {
	mu      sync.Mutex
	grouped Grouped
	details []entity.FacilityAvailability
	failed  int
	skipped int
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{grouped: Grouped{}}
}

// Add merges one facility's result. Results with no slots are ignored;
// "no availability" is not an error and produces no entry.
func (a *Aggregator) Add(res entity.AvailabilityResult) {
	rendered := res.Rendered()
	if len(rendered) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	byFacility := a.grouped[res.Facility.CenterName]
	if byFacility == nil {
		byFacility = make(map[string]map[string][]string)
		a.grouped[res.Facility.CenterName] = byFacility
	}
	byFacility[res.Facility.Name] = rendered

	a.details = append(a.details, entity.FacilityAvailability{
		FacilityID:   res.Facility.ID,
		FacilityName: res.Facility.Name,
		CenterName:   res.Facility.CenterName,
		FacilityType: res.Facility.TypeName,
		MaxCapacity:  res.Facility.MaxCapacity,
		TimeSlots:    rendered,
	})
}

// RecordFailure counts a failed-skip fetch.
func (a *Aggregator) RecordFailure() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed++
}

// RecordSkip counts a facility skipped because it is not bookable online.
func (a *Aggregator) RecordSkip() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.skipped++
}

// Grouped returns the grouped results. Call only after all workers are done.
func (a *Aggregator) Grouped() Grouped {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.grouped
}

// Details returns the per-facility records in submission order.
func (a *Aggregator) Details() []entity.FacilityAvailability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.details
}

// Report assembles run metadata. The per-type breakdown comes from the
// catalog, not the result set, so zero-availability types still show up.
func (a *Aggregator) Report(catalog *entity.Catalog) entity.RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return entity.RunReport{
		ScrapedAt:         time.Now(),
		CatalogSize:       catalog.Size(),
		TotalBookable:     len(catalog.Bookable()),
		WithAvailability:  len(a.details),
		FailedFetches:     a.failed,
		SkippedUnbookable: a.skipped,
		FacilitiesByType:  catalog.CountByType(),
	}
}
