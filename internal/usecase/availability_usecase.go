package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/user/facility-scraper/internal/aggregate"
	"github.com/user/facility-scraper/internal/entity"
	"github.com/user/facility-scraper/internal/normalize"
	"github.com/user/facility-scraper/internal/repository"
	"github.com/user/facility-scraper/pkg/metrics"
)

// progressInterval controls how often the fetch loop logs a progress count.
const progressInterval = 25

// FetcherPool drains a queue of facilities with a fixed number of workers,
// issuing at most one availability request per facility. Workers share the
// session read-only and submit results to the aggregator; a worker failure
// never affects other workers or cancels the pool.
type FetcherPool struct {
	api         repository.AvailabilityAPI
	sink        *aggregate.Aggregator
	concurrency int
	minDelay    time.Duration
	maxDelay    time.Duration
}

// NewFetcherPool creates a pool with the given concurrency. Each worker
// sleeps a jittered delay in [minDelay, maxDelay] between requests to bound
// the request rate against the upstream; the delay is per-worker, so the
// aggregate rate scales with concurrency.
func NewFetcherPool(api repository.AvailabilityAPI, sink *aggregate.Aggregator, concurrency int, minDelay, maxDelay time.Duration) *FetcherPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &FetcherPool{
		api:         api,
		sink:        sink,
		concurrency: concurrency,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
	}
}

// Fetch checks availability for every facility in the list over the given
// window. Non-bookable facilities are skipped without a network call. All
// per-facility failures are failed-skip: logged, counted, and excluded from
// results.
func (p *FetcherPool) Fetch(ctx context.Context, facilities []entity.Facility, session entity.Session, window entity.DateWindow) {
	queue := make(chan entity.Facility)

	var wg sync.WaitGroup
	wg.Add(p.concurrency)
	for i := 0; i < p.concurrency; i++ {
		go func() {
			defer wg.Done()
			for f := range queue {
				if p.fetchOne(ctx, f, session, window) {
					sleepCtx(ctx, p.jitter())
				}
			}
		}()
	}

	for i, f := range facilities {
		if i > 0 && i%progressInterval == 0 {
			slog.Info("Availability progress", "dispatched", i, "total", len(facilities))
		}
		queue <- f
	}
	close(queue)
	wg.Wait()
}

// fetchOne processes a single facility and reports whether a network request
// was made.
func (p *FetcherPool) fetchOne(ctx context.Context, f entity.Facility, session entity.Session, window entity.DateWindow) bool {
	if !f.Bookable {
		p.sink.RecordSkip()
		return false
	}

	start := time.Now()
	raw, err := p.api.FetchDaily(ctx, f.ID, session, window)
	metrics.FetchDuration.WithLabelValues(f.CenterName).Observe(time.Since(start).Seconds())

	if err != nil {
		errorType := classifyFetchError(err)
		metrics.FetchesTotal.WithLabelValues("failure", errorType).Inc()
		slog.Warn("Availability fetch failed, skipping facility",
			"facility", f.Name,
			"id", f.ID,
			"error_type", errorType,
			"error", err,
		)
		p.sink.RecordFailure()
		return true
	}
	metrics.FetchesTotal.WithLabelValues("success", "").Inc()

	slots := normalize.Normalize(raw)
	if len(slots) == 0 {
		slog.Debug("No availability", "facility", f.Name, "id", f.ID)
		return true
	}

	p.sink.Add(entity.AvailabilityResult{
		Facility:    f,
		SlotsByDate: slots,
		FetchedAt:   time.Now(),
	})
	slog.Info("Found availability",
		"facility", f.Name,
		"center", f.CenterName,
		"days", len(slots),
	)
	return true
}

func (p *FetcherPool) jitter() time.Duration {
	if p.maxDelay <= p.minDelay {
		return p.minDelay
	}
	return p.minDelay + rand.N(p.maxDelay-p.minDelay)
}

func classifyFetchError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, repository.ErrBadStatus):
		return "status"
	case errors.Is(err, repository.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, repository.ErrTransport):
		return "transport"
	default:
		return "unknown"
	}
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
