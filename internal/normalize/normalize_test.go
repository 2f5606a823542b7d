package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/facility-scraper/internal/entity"
)

// rendered flattens slots to their display strings for easy comparison.
func rendered(slots SlotsByDate) map[string][]string {
	out := make(map[string][]string, len(slots))
	for date, day := range slots {
		for _, s := range day {
			out[date] = append(out[date], s.Render())
		}
	}
	return out
}

func TestDailyDetailsPattern(t *testing.T) {
	raw := []byte(`{"body":{"details":{"daily_details":[
		{"date":"2025-08-20","times":[{"start_time":"09:00:00","end_time":"10:30:00"}]}
	]}}}`)

	got := Normalize(raw)
	require.Equal(t, map[string][]string{
		"Aug 20, 2025": {"09:00 - 10:30"},
	}, rendered(got))
}

func TestDailyDetailsMultipleDaysAndSlots(t *testing.T) {
	raw := []byte(`{"body":{"details":{"daily_details":[
		{"date":"2025-08-20","times":[
			{"start_time":"09:00:00","end_time":"10:30:00"},
			{"start_time":"13:15:00","end_time":"14:00:00"}
		]},
		{"date":"2025-08-21","times":[{"start_time":"08:00:00","end_time":"09:00:00"}]}
	]}}}`)

	got := rendered(Normalize(raw))
	require.Equal(t, map[string][]string{
		"Aug 20, 2025": {"09:00 - 10:30", "13:15 - 14:00"},
		"Aug 21, 2025": {"08:00 - 09:00"},
	}, got)
}

func TestDailyDetailsEmptyDayOmitted(t *testing.T) {
	raw := []byte(`{"body":{"details":{"daily_details":[
		{"date":"2025-08-20","times":[]},
		{"date":"2025-08-21","times":[{"start_time":"08:00:00","end_time":"09:00:00"}]}
	]}}}`)

	got := Normalize(raw)
	require.NotContains(t, got, "Aug 20, 2025")
	require.Contains(t, got, "Aug 21, 2025")
	require.Len(t, got, 1)
}

func TestDailyDetailsWinsOverLaterPatterns(t *testing.T) {
	// A document carrying both the nested path and map-shaped noise resolves
	// through the first matcher only.
	raw := []byte(`{
		"body":{"details":{"daily_details":[
			{"date":"2025-08-20","times":[{"start_time":"09:00:00","end_time":"10:00:00"}]}
		]}},
		"2025-09-01":["ignored"]
	}`)

	got := rendered(Normalize(raw))
	require.Equal(t, map[string][]string{"Aug 20, 2025": {"09:00 - 10:00"}}, got)
}

func TestFlatDateMapPattern(t *testing.T) {
	raw := []byte(`{
		"2025-08-20": ["10:00 AM - 11:00 AM", {"startTime":"13:00","endTime":"14:00"}],
		"2025-08-21": [{"time":"3:00 PM"}, {"display":"Evening block"}]
	}`)

	got := rendered(Normalize(raw))
	require.Equal(t, map[string][]string{
		"Aug 20, 2025": {"10:00 AM - 11:00 AM", "13:00 - 14:00"},
		"Aug 21, 2025": {"3:00 PM", "Evening block"},
	}, got)
}

func TestFlatDateMapKeepsUnparseableDateKey(t *testing.T) {
	raw := []byte(`{"next tuesday": ["09:00 - 10:00"]}`)

	got := rendered(Normalize(raw))
	require.Equal(t, map[string][]string{"next tuesday": {"09:00 - 10:00"}}, got)
}

func TestDayListPattern(t *testing.T) {
	raw := []byte(`[
		{"date":"2025-08-20","slots":["09:00 - 10:00"]},
		{"date":"2025-08-21","timeslots":[{"start_time":"11:00","end_time":"12:00"}]},
		{"date":"2025-08-22","times":[{"time":"1:00 PM"}]},
		{"date":"2025-08-23","availability":[{"display":"All day"}]}
	]`)

	got := rendered(Normalize(raw))
	require.Equal(t, map[string][]string{
		"Aug 20, 2025": {"09:00 - 10:00"},
		"Aug 21, 2025": {"11:00 - 12:00"},
		"Aug 22, 2025": {"1:00 PM"},
		"Aug 23, 2025": {"All day"},
	}, got)
}

func TestDayListEmptySlotsOmitted(t *testing.T) {
	raw := []byte(`[
		{"date":"2025-08-20","slots":[]},
		{"date":"2025-08-21"}
	]`)

	require.Empty(t, Normalize(raw))
}

func TestTotalFunction(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte(`null`),
		[]byte(`{}`),
		[]byte(`[]`),
		[]byte(`42`),
		[]byte(`"just a string"`),
		[]byte(`{"unrelated":{"nested":"object"}}`),
		[]byte(`{"body":{"details":{}}}`),
		[]byte(`not json at all`),
		[]byte(`{"2025-08-20": "not a list"}`),
	}
	for _, raw := range inputs {
		require.NotPanics(t, func() {
			got := Normalize(raw)
			require.Empty(t, got, "input %q", raw)
		})
	}
}

func TestSlotVariantExclusivity(t *testing.T) {
	got := Normalize([]byte(`{"2025-08-20": [{"start_time":"09:00","end_time":"10:00"}, "verbatim"]}`))

	slots := got["Aug 20, 2025"]
	require.Len(t, slots, 2)
	require.Equal(t, entity.TimeSlot{Start: "09:00", End: "10:00"}, slots[0])
	require.Equal(t, entity.TimeSlot{Display: "verbatim"}, slots[1])
}
