package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/facility-scraper/internal/aggregate"
	"github.com/user/facility-scraper/internal/entity"
)

func TestNonBookableSkippedWithoutRequest(t *testing.T) {
	api := &fakeAvailability{}
	sink := aggregate.New()
	pool := NewFetcherPool(api, sink, 3, 0, 0)

	facilities := []entity.Facility{
		{ID: 1, Name: "Locked Room", CenterName: "C1", Bookable: false},
		{ID: 2, Name: "Open Room", CenterName: "C1", Bookable: true},
	}
	pool.Fetch(context.Background(), facilities, testSession(), testWindow())

	require.Equal(t, []int64{2}, api.requested, "non-bookable facilities must not hit the network")

	catalog := entity.NewCatalog()
	for _, f := range facilities {
		catalog.Insert(f)
	}
	report := sink.Report(catalog)
	require.Equal(t, 1, report.SkippedUnbookable)
}

func TestPartialFailureTolerance(t *testing.T) {
	// 3 of 10 facilities fail; the other 7 still aggregate correctly.
	facilities := makeFacilities(1, 10, "Community Centre")

	api := &fakeAvailability{
		responses: make(map[int64][]byte),
		errOn: map[int64]error{
			2: errNetwork,
			5: errNetwork,
			9: errNetwork,
		},
	}
	for _, f := range facilities {
		if _, failing := api.errOn[f.ID]; !failing {
			api.responses[f.ID] = dailyDetailsDoc("2025-08-20")
		}
	}

	sink := aggregate.New()
	pool := NewFetcherPool(api, sink, 4, 0, 0)
	pool.Fetch(context.Background(), facilities, testSession(), testWindow())

	byFacility := sink.Grouped()["Community Centre"]
	require.Len(t, byFacility, 7)
	for name, slots := range byFacility {
		require.Equal(t, map[string][]string{"Aug 20, 2025": {"09:00 - 10:00"}}, slots, name)
	}

	catalog := entity.NewCatalog()
	for _, f := range facilities {
		catalog.Insert(f)
	}
	report := sink.Report(catalog)
	require.Equal(t, 3, report.FailedFetches)
	require.Equal(t, 7, report.WithAvailability)
}

func TestEmptyAvailabilityDropped(t *testing.T) {
	facilities := makeFacilities(1, 2, "C1")
	api := &fakeAvailability{responses: map[int64][]byte{
		1: []byte(`{"body":{"details":{"daily_details":[]}}}`),
		2: dailyDetailsDoc("2025-08-20"),
	}}

	sink := aggregate.New()
	pool := NewFetcherPool(api, sink, 2, 0, 0)
	pool.Fetch(context.Background(), facilities, testSession(), testWindow())

	byFacility := sink.Grouped()["C1"]
	require.Len(t, byFacility, 1)
	require.Contains(t, byFacility, "Facility 2")
	require.Equal(t, 2, api.requestCount())

	// "No availability" is not a failure.
	catalog := entity.NewCatalog()
	for _, f := range facilities {
		catalog.Insert(f)
	}
	require.Zero(t, sink.Report(catalog).FailedFetches)
}

func TestAllFacilitiesDrained(t *testing.T) {
	// More facilities than workers: every one is processed exactly once.
	facilities := makeFacilities(1, 30, "C1")
	api := &fakeAvailability{responses: make(map[int64][]byte)}
	for _, f := range facilities {
		api.responses[f.ID] = dailyDetailsDoc("2025-08-20")
	}

	sink := aggregate.New()
	pool := NewFetcherPool(api, sink, 3, 0, 0)
	pool.Fetch(context.Background(), facilities, testSession(), testWindow())

	require.Equal(t, 30, api.requestCount())
	require.Len(t, sink.Grouped()["C1"], 30)
}
