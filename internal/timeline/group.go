package timeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/edutate/vanessa/models"
)

// Granularity is the bucket size used by GroupEvents.
type Granularity string

const (
	GroupDay   Granularity = "day"
	GroupWeek  Granularity = "week"
	GroupMonth Granularity = "month"
)

// ParseGranularity resolves a user-supplied granularity. Empty means day.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupDay, nil
	case GroupDay, GroupWeek, GroupMonth:
		return g, nil
	default:
		return "", fmt.Errorf("unknown granularity %q (expected day, week or month)", s)
	}
}

// Bucket is one group of events. Key is ISO-shaped and sortable; Label
// is for display.
type Bucket struct {
	Key    string         `json:"key"`
	Label  string         `json:"label"`
	Events []models.Event `json:"events"`
}

const isoLayout = "2006-01-02"

// SortEvents returns a copy of events in ascending date order. The
// comparison is lexical on YYYY-MM-DD, so it is stable across time zones.
func SortEvents(events []models.Event) []models.Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.Event) int {
		av, bv := models.IsISODate(a.Date), models.IsISODate(b.Date)
		if av != bv {
			// Malformed dates sort last.
			if av {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Date, b.Date)
	})
	return sorted
}

// WeekStart returns the Monday of the week containing d. Sundays belong
// to the week that began the previous Monday.
func WeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func bucketFor(dateStr string, g Granularity) (key, label string) {
	d, err := time.Parse(isoLayout, dateStr)
	if err != nil {
		return dateStr, dateStr
	}
	switch g {
	case GroupWeek:
		ws := WeekStart(d)
		return ws.Format(isoLayout), "Week of " + ws.Format("January 2, 2006")
	case GroupMonth:
		return d.Format("2006-01"), d.Format("January 2006")
	default:
		return d.Format(isoLayout), d.Format("Monday, January 2, 2006")
	}
}

// GroupEvents sorts events by date and buckets them by day, week or
// month. Buckets appear in order of their first event.
func GroupEvents(events []models.Event, g Granularity) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)
	for _, ev := range SortEvents(events) {
		key, label := bucketFor(ev.Date, g)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key, Label: label})
		}
		buckets[i].Events = append(buckets[i].Events, ev)
	}
	return buckets
}
