package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"pulse-ai/internal/interest"
	"pulse-ai/internal/subscription"
)

// DailyStats summarizes subscriber activity for one UTC day.
type DailyStats struct {
	Date             string         `json:"date"`
	NewSubscribers   int            `json:"new_subscribers"`
	ReturningUpdates int            `json:"returning_updates"`
	TotalSubscribers int            `json:"total_subscribers"`
	InterestsByTag   map[string]int `json:"interests_by_tag"`
	TopEvents        []EventStat    `json:"top_events"`
}

type EventStat struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

const topEventsLimit = 5

// AnalyzeDay counts subscriptions created or updated on day. Interest counts
// are cumulative since the counter keeps no per-day history.
func AnalyzeDay(subs []subscription.Record, interests []interest.Record, day time.Time) *DailyStats {
	day = day.UTC()
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := startOfDay.Add(24 * time.Hour)
	inDay := func(t time.Time) bool { return !t.Before(startOfDay) && t.Before(endOfDay) }

	stats := &DailyStats{
		Date:             startOfDay.Format("2006-01-02"),
		TotalSubscribers: len(subs),
		InterestsByTag:   make(map[string]int),
		TopEvents:        []EventStat{},
	}

	for _, s := range subs {
		switch {
		case inDay(s.CreatedAt):
			stats.NewSubscribers++
		case inDay(s.UpdatedAt):
			stats.ReturningUpdates++
		default:
			continue
		}
		for _, tag := range s.Interests {
			stats.InterestsByTag[strings.ToLower(tag)]++
		}
	}

	ranked := append([]interest.Record(nil), interests...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	for i := 0; i < len(ranked) && i < topEventsLimit; i++ {
		stats.TopEvents = append(stats.TopEvents, EventStat{ID: ranked[i].ID, Title: ranked[i].Title, Count: ranked[i].Count})
	}
	return stats
}

// Summary renders the stats as a short plain-text report.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pulseAI activity for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- New subscribers: %d\n", ds.NewSubscribers)
	fmt.Fprintf(&b, "- Returning subscribers: %d\n", ds.ReturningUpdates)
	fmt.Fprintf(&b, "- Total subscribers: %d\n", ds.TotalSubscribers)

	if len(ds.InterestsByTag) > 0 {
		tags := make([]string, 0, len(ds.InterestsByTag))
		for tag := range ds.InterestsByTag {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		b.WriteString("\nInterests:\n")
		for _, tag := range tags {
			fmt.Fprintf(&b, "- %s: %d\n", tag, ds.InterestsByTag[tag])
		}
	}

	if len(ds.TopEvents) > 0 {
		b.WriteString("\nMost followed events:\n")
		for _, e := range ds.TopEvents {
			fmt.Fprintf(&b, "- %s: %d\n", e.Title, e.Count)
		}
	}
	return b.String()
}

func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
