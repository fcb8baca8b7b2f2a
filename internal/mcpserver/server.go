// Package mcpserver exposes pulse operations as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
	"pulse-ai/internal/interest"
	"pulse-ai/internal/search"
	"pulse-ai/internal/selection"
	"pulse-ai/internal/subscription"
)

const defaultTopInterests = 10

type Handlers struct {
	search        *search.Service
	selection     *selection.Store
	subscriptions *subscription.Ledger
	interests     *interest.Counter
}

func NewHandlers(s *search.Service, sel *selection.Store, subs *subscription.Ledger, counter *interest.Counter) *Handlers {
	return &Handlers{search: s, selection: sel, subscriptions: subs, interests: counter}
}

// NewServer builds an MCP server with every pulse tool registered.
func NewServer(h *Handlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pulse-mcp-server",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_events",
		Description: "Searches the web for AI events matching a query, optionally in a city",
	}, h.SearchEvents)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_events",
		Description: "Lists the featured AI events, optionally filtered by term and city",
	}, h.ListEvents)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_context",
		Description: "Returns the currently selected event",
	}, h.GetContext)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_context",
		Description: "Selects an event as the current context; omit the event to clear it",
	}, h.SetContext)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "subscribe",
		Description: "Subscribes an email to event notifications with optional interests and event",
	}, h.Subscribe)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "top_interests",
		Description: "Returns the most popular events by interest count",
	}, h.TopInterests)

	logrus.Info("📋 Registered 6 pulse MCP tools")
	return server
}

type SearchArgs struct {
	Query string `json:"query"`
	City  string `json:"city,omitempty"`
}

type ListArgs struct {
	Term string `json:"term,omitempty"`
	City string `json:"city,omitempty"`
}

type EmptyArgs struct{}

type SetContextArgs struct {
	Event *events.Event `json:"event,omitempty"`
}

type SubscribeArgs struct {
	Email     string        `json:"email"`
	Interests []string      `json:"interests,omitempty"`
	Event     *events.Event `json:"event,omitempty"`
}

type TopArgs struct {
	Limit int `json:"limit,omitempty"`
}

func (h *Handlers) SearchEvents(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SearchArgs]) (*mcp.CallToolResultFor[any], error) {
	res, err := h.search.Search(ctx, params.Arguments.Query, params.Arguments.City)
	if err != nil {
		return errorResult(err, "search failed"), nil
	}
	return jsonResult(res)
}

func (h *Handlers) ListEvents(_ context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ListArgs]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(events.Filter(events.Seed(), params.Arguments.Term, params.Arguments.City))
}

func (h *Handlers) GetContext(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyArgs]) (*mcp.CallToolResultFor[any], error) {
	return jsonResult(h.selection.Get(ctx))
}

func (h *Handlers) SetContext(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SetContextArgs]) (*mcp.CallToolResultFor[any], error) {
	var (
		rec selection.Record
		err error
	)
	if params.Arguments.Event == nil {
		rec, err = h.selection.Clear(ctx)
	} else {
		rec, err = h.selection.Set(ctx, params.Arguments.Event)
	}
	if err != nil {
		return errorResult(err, "failed to update context"), nil
	}
	return jsonResult(rec)
}

func (h *Handlers) Subscribe(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[SubscribeArgs]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	rec, err := h.subscriptions.Upsert(ctx, args.Email, args.Interests, args.Event)
	if err != nil {
		return errorResult(err, "failed to save subscription"), nil
	}
	return jsonResult(rec)
}

func (h *Handlers) TopInterests(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[TopArgs]) (*mcp.CallToolResultFor[any], error) {
	n := params.Arguments.Limit
	if n <= 0 {
		n = defaultTopInterests
	}
	return jsonResult(h.interests.Top(ctx, n))
}

func jsonResult(v any) (*mcp.CallToolResultFor[any], error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

func errorResult(err error, fallback string) *mcp.CallToolResultFor[any] {
	logrus.WithError(err).Warn("⚠️ MCP tool failed")
	msg := fallback
	if apperr.Is(err, apperr.KindValidation) {
		msg = apperr.PublicMessage(err, fallback)
	}
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "❌ " + msg}},
	}
}
