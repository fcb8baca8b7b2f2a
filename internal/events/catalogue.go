package events

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

var seed = []Event{
	{
		ID:          1,
		Title:       "AI Summit 2024",
		Description: "Join industry leaders to explore the latest in artificial intelligence and machine learning.",
		Date:        "2024-06-15",
		Location:    "San Francisco, CA",
		City:        "San Francisco",
		Attendees:   1200,
		Keywords:    []string{"ai", "machine learning", "deep learning", "neural networks", "technology"},
	},
	{
		ID:          2,
		Title:       "Natural Language Processing Workshop",
		Description: "Hands-on workshop on building NLP applications with transformer models.",
		Date:        "2024-07-05",
		Location:    "Online",
		City:        "Online",
		Attendees:   500,
		Keywords:    []string{"nlp", "language", "transformers", "gpt", "bert", "ai"},
	},
	{
		ID:          3,
		Title:       "Computer Vision Conference",
		Description: "Explore the latest research and applications in computer vision and image processing.",
		Date:        "2024-08-20",
		Location:    "Boston, MA",
		City:        "Boston",
		Attendees:   800,
		Keywords:    []string{"computer vision", "image processing", "object detection", "ai", "deep learning"},
	},
}

// Seed returns a copy of the static event catalogue served by /api/events.
func Seed() []Event {
	out := make([]Event, len(seed))
	for i, e := range seed {
		e.Keywords = append([]string(nil), e.Keywords...)
		out[i] = e
	}
	return out
}

// haystack is what a search term is matched against for one event.
func haystack(e Event) string {
	return strings.ToLower(e.Title + " " + e.Description + " " + strings.Join(e.Keywords, " "))
}

// Filter narrows events by a fuzzy search term and a city slug. Results keep
// the best matches first; an empty term keeps catalogue order.
func Filter(list []Event, term, city string) []Event {
	var byCity []Event
	for _, e := range list {
		if CityFilterActive(city) && !strings.EqualFold(e.City, DeslugCity(city)) {
			continue
		}
		byCity = append(byCity, e)
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return byCity
	}
	sources := make([]string, len(byCity))
	for i, e := range byCity {
		sources[i] = haystack(e)
	}
	matches := fuzzy.Find(term, sources)
	out := make([]Event, 0, len(matches))
	for _, m := range matches {
		out = append(out, byCity[m.Index])
	}
	return out
}
