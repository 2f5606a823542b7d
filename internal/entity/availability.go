package entity

import "time"

// TimeSlot is a bookable interval on a given date. Exactly one representation
// is populated: either Start/End times of day, or a pre-formatted Display
// label when the upstream only supplies one.
type TimeSlot struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Display string `json:"display,omitempty"`
}

// Render returns the human-readable form of the slot.
func (s TimeSlot) Render() string {
	if s.Display != "" {
		return s.Display
	}
	return s.Start + " - " + s.End
}

// DateWindow is the inclusive date range over which availability is queried.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFromToday builds a window spanning today through today+days.
func WindowFromToday(days int) DateWindow {
	now := time.Now()
	return DateWindow{Start: now, End: now.AddDate(0, 0, days)}
}

// AvailabilityResult holds the normalized open slots for one facility,
// produced by a single fetch. Keys are human-readable date labels; slot order
// within a day is the upstream's emission order.
type AvailabilityResult struct {
	Facility    Facility
	SlotsByDate map[string][]TimeSlot
	FetchedAt   time.Time
}

// Rendered returns the slots as display strings per date label.
func (r AvailabilityResult) Rendered() map[string][]string {
	out := make(map[string][]string, len(r.SlotsByDate))
	for date, slots := range r.SlotsByDate {
		rendered := make([]string, len(slots))
		for i, s := range slots {
			rendered[i] = s.Render()
		}
		out[date] = rendered
	}
	return out
}

// Session is the set of authentication cookies required by the availability
// API. One immutable instance is acquired per run and shared read-only across
// all fetch workers; there is no mid-run refresh, so expiry manifests as
// fetch failures.
type Session struct {
	Cookies    map[string]string
	AcquiredAt time.Time
}
