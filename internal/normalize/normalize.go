// Package normalize converts the availability endpoint's shape-variable JSON
// responses into a canonical date -> time slots mapping.
//
// The upstream response shape is not contractually fixed, so parsing is an
// ordered chain of pattern matchers, each total, first match wins. Adding
// support for a new upstream shape means adding a matcher, not a deeper
// branch.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/user/facility-scraper/internal/entity"
)

// SlotsByDate maps a human-readable date label to its open slots in upstream
// emission order.
type SlotsByDate = map[string][]entity.TimeSlot

// matcher inspects a decoded document and reports whether it recognized the
// shape. Matchers never fail; an unrecognized document simply reports false.
type matcher func(doc any) (SlotsByDate, bool)

var matchers = []matcher{
	matchDailyDetails,
	matchDateMap,
	matchDayList,
}

// Normalize converts a raw availability document into date label -> slots.
// It is total: unparseable, empty or unrecognized input yields an empty map.
// Days with zero usable slots are omitted entirely.
func Normalize(raw []byte) SlotsByDate {
	var doc any
	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return SlotsByDate{}
	}
	for _, match := range matchers {
		if slots, ok := match(doc); ok {
			return slots
		}
	}
	return SlotsByDate{}
}

// matchDailyDetails handles the primary upstream shape:
// body.details.daily_details = [{date, times: [{start_time, end_time}]}].
// Times carry seconds which are dropped, e.g. "09:00:00" -> "09:00".
func matchDailyDetails(doc any) (SlotsByDate, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	body, _ := root["body"].(map[string]any)
	details, _ := body["details"].(map[string]any)
	days, ok := details["daily_details"].([]any)
	if !ok {
		return nil, false
	}

	out := SlotsByDate{}
	for _, d := range days {
		day, ok := d.(map[string]any)
		if !ok {
			continue
		}
		date, _ := day["date"].(string)
		times, _ := day["times"].([]any)
		if date == "" || len(times) == 0 {
			continue
		}
		var slots []entity.TimeSlot
		for _, t := range times {
			tm, ok := t.(map[string]any)
			if !ok {
				continue
			}
			start, _ := tm["start_time"].(string)
			end, _ := tm["end_time"].(string)
			if start == "" || end == "" {
				continue
			}
			slots = append(slots, entity.TimeSlot{
				Start: truncateClock(start),
				End:   truncateClock(end),
			})
		}
		if len(slots) > 0 {
			out[dateLabel(date)] = slots
		}
	}
	return out, true
}

// matchDateMap handles a flat date -> slot list object. Unlike the other
// matchers it only claims the document when at least one day yields slots,
// so envelope objects that merely look map-shaped fall through.
func matchDateMap(doc any) (SlotsByDate, bool) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, false
	}
	out := SlotsByDate{}
	for date, v := range root {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		if slots := listSlots(list); len(slots) > 0 {
			out[dateLabel(date)] = slots
		}
	}
	return out, len(out) > 0
}

// slotListFields are the field names under which day objects have been
// observed to carry their slot lists. First present wins.
var slotListFields = []string{"slots", "timeslots", "times", "availability"}

// matchDayList handles an array of day objects:
// [{date, <slots|timeslots|times|availability>: [...]}].
func matchDayList(doc any) (SlotsByDate, bool) {
	days, ok := doc.([]any)
	if !ok {
		return nil, false
	}
	out := SlotsByDate{}
	for _, d := range days {
		day, ok := d.(map[string]any)
		if !ok {
			continue
		}
		date, _ := day["date"].(string)
		if date == "" {
			continue
		}
		for _, field := range slotListFields {
			list, ok := day[field].([]any)
			if !ok {
				continue
			}
			if slots := listSlots(list); len(slots) > 0 {
				out[dateLabel(date)] = slots
			}
			break
		}
	}
	return out, true
}

// listSlots converts a raw slot list. Strings are used verbatim; objects are
// probed for known field combinations.
func listSlots(list []any) []entity.TimeSlot {
	var slots []entity.TimeSlot
	for _, s := range list {
		switch v := s.(type) {
		case string:
			if v != "" {
				slots = append(slots, entity.TimeSlot{Display: v})
			}
		case map[string]any:
			if slot, ok := objectSlot(v); ok {
				slots = append(slots, slot)
			}
		}
	}
	return slots
}

// objectSlot probes a slot object for, in order: a start/end time pair
// (snake_case or camelCase), a "time" field, then a "display" field.
func objectSlot(m map[string]any) (entity.TimeSlot, bool) {
	start := firstString(m, "start_time", "startTime")
	end := firstString(m, "end_time", "endTime")
	if start != "" && end != "" {
		return entity.TimeSlot{Start: start, End: end}, true
	}
	if t := firstString(m, "time"); t != "" {
		return entity.TimeSlot{Display: t}, true
	}
	if d := firstString(m, "display"); d != "" {
		return entity.TimeSlot{Display: d}, true
	}
	return entity.TimeSlot{}, false
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// truncateClock drops the seconds component: "09:00:00" -> "09:00". Values
// without at least hours and minutes pass through unchanged.
func truncateClock(clock string) string {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return clock
	}
	return parts[0] + ":" + parts[1]
}

// dateLabel reformats an ISO date key into a human label ("2025-08-20" ->
// "Aug 20, 2025"). Keys that do not parse are kept unchanged.
func dateLabel(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Jan 02, 2006")
}
