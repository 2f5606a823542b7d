package entity

import "time"

// FacilityAvailability is one per-facility record in the detailed output
// document.
type FacilityAvailability struct {
	FacilityID   int64               `json:"facility_id"`
	FacilityName string              `json:"facility_name"`
	CenterName   string              `json:"center_name"`
	FacilityType string              `json:"facility_type"`
	MaxCapacity  *int                `json:"max_capacity"`
	TimeSlots    map[string][]string `json:"time_slots"`
}

// RunReport summarizes one scrape run. Per-type counts derive from the
// catalog rather than the result set, so types with zero availability remain
// visible in reporting.
type RunReport struct {
	ScrapedAt         time.Time      `json:"scraped_at"`
	CatalogSize       int            `json:"catalog_size"`
	TotalBookable     int            `json:"total_bookable_facilities"`
	WithAvailability  int            `json:"facilities_with_availability"`
	FailedFetches     int            `json:"failed_fetches"`
	SkippedUnbookable int            `json:"skipped_unbookable"`
	FacilitiesByType  map[string]int `json:"facilities_by_type"`
	PartialCatalog    bool           `json:"partial_catalog"`
}
