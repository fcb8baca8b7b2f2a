package search

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"pulse-ai/internal/apperr"
)

// Item is one raw search hit as returned by /api/search.
type Item struct {
	Title        string `json:"title"`
	Link         string `json:"link"`
	Snippet      string `json:"snippet"`
	FormattedURL string `json:"formattedUrl"`
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]Item, error)
}

// GoogleSearcher queries Google Programmable Search (Custom Search JSON API).
type GoogleSearcher struct {
	svc      *customsearch.Service
	engineID string
}

// NewGoogleSearcher builds a searcher. Extra options are appended after the
// API key, e.g. option.WithEndpoint in tests.
func NewGoogleSearcher(ctx context.Context, apiKey, engineID string, opts ...option.ClientOption) (*GoogleSearcher, error) {
	if apiKey == "" || engineID == "" {
		return nil, apperr.Configuration("Server configuration error")
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.Upstream("Failed to fetch search results", 0, err)
	}
	return &GoogleSearcher{svc: svc, engineID: engineID}, nil
}

func (g *GoogleSearcher) Search(ctx context.Context, query string) ([]Item, error) {
	res, err := g.svc.Cse.List().Cx(g.engineID).Q(query).Context(ctx).Do()
	if err != nil {
		status := 0
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			status = gerr.Code
		}
		logrus.WithError(err).WithField("status", status).Error("❌ Google Search API error")
		return nil, apperr.Upstream("Failed to fetch search results", status, err)
	}
	items := make([]Item, 0, len(res.Items))
	for _, r := range res.Items {
		if r == nil {
			continue
		}
		items = append(items, Item{
			Title:        r.Title,
			Link:         r.Link,
			Snippet:      r.Snippet,
			FormattedURL: r.FormattedUrl,
		})
	}
	return items, nil
}

// MockSearcher serves canned results for local development without
// search credentials.
type MockSearcher struct{}

func (MockSearcher) Search(context.Context, string) ([]Item, error) {
	out := make([]Item, len(mockItems))
	copy(out, mockItems)
	return out, nil
}

var mockItems = []Item{
	{
		Title:        "AI Conference 2025 - San Francisco",
		Link:         "https://example.com/ai-conference-2025",
		Snippet:      "Join us for the biggest AI conference in San Francisco. Learn about the latest developments in artificial intelligence, machine learning, and more.",
		FormattedURL: "https://example.com/ai-conference-2025",
	},
	{
		Title:        "Machine Learning Workshop - Online",
		Link:         "https://example.com/ml-workshop",
		Snippet:      "Virtual workshop on machine learning fundamentals. Perfect for beginners and intermediate practitioners looking to enhance their skills.",
		FormattedURL: "https://example.com/ml-workshop",
	},
	{
		Title:        "AI Ethics Symposium - New York",
		Link:         "https://example.com/ai-ethics",
		Snippet:      "A symposium dedicated to discussing ethical considerations in AI development and deployment. Featuring speakers from academia and industry.",
		FormattedURL: "https://example.com/ai-ethics",
	},
	{
		Title:        "Deep Learning Summit - London",
		Link:         "https://example.com/deep-learning-summit",
		Snippet:      "Annual summit focusing on deep learning innovations. Network with experts and discover cutting-edge research in neural networks.",
		FormattedURL: "https://example.com/deep-learning-summit",
	},
	{
		Title:        "AI in Healthcare Conference - Boston",
		Link:         "https://example.com/ai-healthcare",
		Snippet:      "Explore the intersection of AI and healthcare. Learn how artificial intelligence is transforming patient care, diagnosis, and treatment.",
		FormattedURL: "https://example.com/ai-healthcare",
	},
}
