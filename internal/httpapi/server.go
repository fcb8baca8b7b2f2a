// Package httpapi serves the pulse JSON API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pulse-ai/internal/interest"
	"pulse-ai/internal/pipeline"
	"pulse-ai/internal/search"
	"pulse-ai/internal/selection"
	"pulse-ai/internal/subscription"
)

// Pipeline is the part of the scrape-and-notify pipeline the API triggers.
type Pipeline interface {
	Scrape(ctx context.Context) (pipeline.Scraped, error)
	Run(ctx context.Context) (pipeline.Report, error)
}

type Deps struct {
	Search        *search.Service
	Selection     *selection.Store
	Subscriptions *subscription.Ledger
	Interests     *interest.Counter
	Pipeline      Pipeline
	// Extra handlers mounted under their path, e.g. the MCP SSE endpoint.
	Mounts map[string]http.Handler
}

type Server struct {
	deps Deps
	now  func() time.Time
}

func New(deps Deps) *Server {
	return &Server{deps: deps, now: func() time.Time { return time.Now().UTC() }}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	r.GET("/api/status", s.status)

	api := r.Group("/api")
	{
		api.GET("/events", s.listEvents)
		api.GET("/events/search", s.searchEvents)
		api.GET("/search", s.rawSearch)

		api.GET("/context", s.getContext)
		api.POST("/context", s.setContext)
		api.DELETE("/context", s.clearContext)

		api.POST("/subscribe", s.subscribe)
		api.POST("/event-tracking", s.trackInterest)
		api.POST("/event-interest", s.trackInterest)
		api.GET("/interests", s.listInterests)
		api.GET("/stats", s.stats)

		api.GET("/scrape", s.scrape)
		api.POST("/pipeline/run", s.runPipeline)
	}

	for path, h := range s.deps.Mounts {
		r.Any(path, gin.WrapH(h))
	}
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("🚀 pulse API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("🛑 Shutting down pulse API")
		return srv.Shutdown(shutdownCtx)
	}
}
