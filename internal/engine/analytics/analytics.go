package analytics

import (
	"sort"
	"time"

	"shortr/internal/engine/links"
	"shortr/internal/pkg/parser"
)

const (
	DefaultTopLocations = 5
	dateLayout          = "2006-01-02"
)

type Summary struct {
	TotalClicks     int        `json:"total_clicks"`
	UniqueLocations int        `json:"unique_locations"`
	UniqueSources   int        `json:"unique_sources"`
	LastClickTime   *time.Time `json:"last_click_time"`
	IsExpired       bool       `json:"is_expired"`
}

type LocationCount struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Breakdown counts clicks by what their user agent reveals.
type Breakdown struct {
	Browsers map[string]int `json:"browsers"`
	OS       map[string]int `json:"os"`
	Devices  map[string]int `json:"devices"`
}

// Summarize reports click totals for a record. LastClickTime is the timestamp
// of the most recently appended click. A nil record yields the zero Summary.
func Summarize(record *links.LinkRecord, now time.Time) Summary {
	if record == nil {
		return Summary{}
	}

	locations := make(map[string]struct{})
	sources := make(map[string]struct{})
	for _, c := range record.Clicks {
		locations[c.Location] = struct{}{}
		sources[c.Source] = struct{}{}
	}

	s := Summary{
		TotalClicks:     len(record.Clicks),
		UniqueLocations: len(locations),
		UniqueSources:   len(sources),
		IsExpired:       record.IsExpired(now),
	}
	if n := len(record.Clicks); n > 0 {
		last := record.Clicks[n-1].Timestamp
		s.LastClickTime = &last
	}
	return s
}

// TopLocations counts clicks per location, most frequent first. Equal counts
// keep the order in which the location was first seen.
func TopLocations(clicks []links.ClickEvent, limit int) []LocationCount {
	if limit <= 0 {
		return []LocationCount{}
	}

	index := make(map[string]int)
	counts := []LocationCount{}
	for _, c := range clicks {
		i, ok := index[c.Location]
		if !ok {
			i = len(counts)
			index[c.Location] = i
			counts = append(counts, LocationCount{Location: c.Location})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}

// ClickTrends counts clicks per calendar date in loc, oldest date first.
// Clicks without a timestamp are left out.
func ClickTrends(clicks []links.ClickEvent, loc *time.Location) []DailyCount {
	if loc == nil {
		loc = time.Local
	}

	perDay := make(map[string]int)
	for _, c := range clicks {
		if c.Timestamp.IsZero() {
			continue
		}
		perDay[c.Timestamp.In(loc).Format(dateLayout)]++
	}

	trends := make([]DailyCount, 0, len(perDay))
	for date, n := range perDay {
		trends = append(trends, DailyCount{Date: date, Count: n})
	}
	// ISO dates sort lexically
	sort.Slice(trends, func(i, j int) bool {
		return trends[i].Date < trends[j].Date
	})
	return trends
}

func BreakdownClients(clicks []links.ClickEvent) Breakdown {
	b := Breakdown{
		Browsers: make(map[string]int),
		OS:       make(map[string]int),
		Devices:  make(map[string]int),
	}
	for _, c := range clicks {
		client := parser.ParseClient(c.Source)
		b.Browsers[client.Browser]++
		b.OS[client.OS]++
		b.Devices[client.Device]++
	}
	return b
}
