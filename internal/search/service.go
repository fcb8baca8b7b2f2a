package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
	"pulse-ai/internal/llm"
)

const (
	// MaxEvents caps both enriched and fallback results.
	MaxEvents = 5

	// QuerySuffix narrows raw web search to event pages.
	QuerySuffix = " AI event conference"

	ExplanationNoResults = "No events found matching your search criteria."
	ExplanationEnriched  = "AI events matching your search criteria"
	ExplanationFallback  = "AI events matching your search criteria (processed from search results)"
)

// Result is what the events page renders.
type Result struct {
	Events      []events.Event `json:"events"`
	Explanation string         `json:"explanation"`
}

type Service struct {
	searcher Searcher
	enricher llm.Client
}

// NewService wires a searcher and an optional enrichment model (nil disables
// enrichment).
func NewService(searcher Searcher, enricher llm.Client) *Service {
	return &Service{searcher: searcher, enricher: enricher}
}

// Raw runs the web search for query and returns the unprocessed hits.
func (s *Service) Raw(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("Query parameter is required")
	}
	if s.searcher == nil {
		return nil, apperr.Configuration("Server configuration error")
	}
	return s.searcher.Search(ctx, query+QuerySuffix)
}

// EffectiveQuery appends the de-slugged city unless it is empty or "all".
func EffectiveQuery(query, city string) string {
	query = strings.TrimSpace(query)
	if events.CityFilterActive(city) {
		return query + " " + events.DeslugCity(city)
	}
	return query
}

// Search finds events for query in city. It fails only on a missing query,
// missing configuration or upstream search failure; enrichment problems
// degrade to the deterministic fallback.
func (s *Service) Search(ctx context.Context, query, city string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, apperr.Validation("Query parameter is required")
	}
	effective := EffectiveQuery(query, city)
	items, err := s.Raw(ctx, effective)
	if err != nil {
		return Result{}, err
	}
	if len(items) == 0 {
		return Result{Events: []events.Event{}, Explanation: ExplanationNoResults}, nil
	}
	if s.enricher == nil {
		return Fallback(items), nil
	}
	res, err := s.enrich(ctx, effective, items)
	if err != nil {
		logrus.WithError(err).WithField("query", effective).Warn("⚠️ Enrichment failed, using search results directly")
		return Fallback(items), nil
	}
	return res, nil
}

func (s *Service) enrich(ctx context.Context, query string, items []Item) (Result, error) {
	prompt, err := buildPrompt(query, items)
	if err != nil {
		return Result{}, apperr.Parse("build prompt", err)
	}
	resp, err := s.enricher.Generate(ctx, []llm.Message{llm.UserMessage(prompt)})
	if err != nil {
		return Result{}, apperr.Parse("generate", err)
	}
	return ParseEnrichment(resp.Content)
}

// Fallback maps the first MaxEvents hits to events with placeholder fields.
func Fallback(items []Item) Result {
	n := min(len(items), MaxEvents)
	out := make([]events.Event, 0, n)
	for i := 0; i < n; i++ {
		it := items[i]
		desc := it.Snippet
		if desc == "" {
			desc = "No description available"
		}
		out = append(out, events.Event{
			ID:          i + 1,
			Title:       it.Title,
			Description: desc,
			Date:        "Date not specified",
			Location:    "Location not specified",
			URL:         it.Link,
			Keywords:    []string{"ai", "event"},
		})
	}
	return Result{Events: out, Explanation: ExplanationFallback}
}

// ParseEnrichment validates model output against the expected shape. There
// is no partial recovery: any deviation is a ParseError.
func ParseEnrichment(text string) (Result, error) {
	obj, ok := firstObject(text)
	if !ok {
		return Result{}, apperr.Parse("no JSON object in model output", nil)
	}
	var raw struct {
		Events      json.RawMessage `json:"events"`
		Explanation string          `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return Result{}, apperr.Parse("decode model output", err)
	}
	trimmed := bytes.TrimSpace(raw.Events)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return Result{}, apperr.Parse("model output missing events array", nil)
	}
	var evs []events.Event
	if err := json.Unmarshal(trimmed, &evs); err != nil {
		return Result{}, apperr.Parse("decode events", err)
	}
	if len(evs) > MaxEvents {
		evs = evs[:MaxEvents]
	}
	for i := range evs {
		if evs[i].Keywords == nil {
			evs[i].Keywords = []string{}
		}
	}
	explanation := strings.TrimSpace(raw.Explanation)
	if explanation == "" {
		explanation = ExplanationEnriched
	}
	return Result{Events: evs, Explanation: explanation}, nil
}

// firstObject returns the first balanced {...} span of text, skipping braces
// inside JSON strings.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func buildPrompt(query string, items []Item) (string, error) {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, query, string(data), MaxEvents), nil
}

const promptTemplate = `You are an AI assistant helping to extract and enhance information about AI events from search results.

Here are search results for AI events matching the query: %q

%s

Please analyze these search results and extract information about AI events.
For each event, provide the following information in a structured format:

Return your response in this exact JSON format:
{
  "events": [
    {
      "id": number (starting from 1),
      "title": "event title",
      "description": "brief description",
      "date": "date of the event (if found, otherwise 'Date not specified')",
      "location": "location of the event (if found, otherwise 'Location not specified')",
      "url": "URL to the event page",
      "keywords": ["keyword1", "keyword2", ...] (extract 3-5 relevant keywords)
    }
  ],
  "explanation": "A brief explanation of the search results and what kinds of events were found"
}

Rules:
1. Only include items that are clearly AI-related events
2. Extract as much information as possible from the search snippets
3. Make sure all JSON fields are present
4. Make sure your response is valid JSON and nothing else
5. Limit to at most %d events
`
