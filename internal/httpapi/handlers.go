package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pulse-ai/internal/analytics"
	"pulse-ai/internal/apperr"
	"pulse-ai/internal/events"
)

// fail writes {error} with the status derived from err. Only the public
// message reaches the caller; the detail goes to the log.
func fail(c *gin.Context, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	msg := fallback
	if apperr.Is(err, apperr.KindValidation) {
		msg = apperr.PublicMessage(err, fallback)
	}
	logEntry(c).WithError(err).WithField("status", status).Error("❌ Request failed")
	c.JSON(status, gin.H{"error": msg})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": s.now()})
}

func (s *Server) listEvents(c *gin.Context) {
	list := events.Seed()
	if q, city := c.Query("q"), c.Query("city"); q != "" || events.CityFilterActive(city) {
		list = events.Filter(list, q, city)
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) rawSearch(c *gin.Context) {
	items, err := s.deps.Search.Raw(c.Request.Context(), c.Query("query"))
	if err != nil {
		fail(c, err, "Failed to fetch search results")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) searchEvents(c *gin.Context) {
	res, err := s.deps.Search.Search(c.Request.Context(), c.Query("query"), c.Query("city"))
	if err != nil {
		fail(c, err, "An error occurred while searching for events")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getContext(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.deps.Selection.Get(c.Request.Context())})
}

type setContextRequest struct {
	SelectedEvent *events.Event `json:"selectedEvent"`
}

func (s *Server) setContext(c *gin.Context) {
	var req setContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err, "Failed to update context")
		return
	}
	rec, err := s.deps.Selection.Set(c.Request.Context(), req.SelectedEvent)
	if err != nil {
		fail(c, err, "Failed to update context")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Context updated successfully", "data": rec})
}

func (s *Server) clearContext(c *gin.Context) {
	if _, err := s.deps.Selection.Clear(c.Request.Context()); err != nil {
		fail(c, err, "Failed to clear context")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Context cleared successfully"})
}

type subscribeRequest struct {
	Email     string        `json:"email"`
	Interests []string      `json:"interests"`
	Event     *events.Event `json:"event"`
}

func (s *Server) subscribe(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	var req subscribeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logEntry(c).WithError(err).Warn("⚠️ Malformed subscription body")
		var partial struct {
			Email string `json:"email"`
		}
		if json.Unmarshal(body, &partial) != nil || strings.TrimSpace(partial.Email) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	rec, err := s.deps.Subscriptions.Upsert(c.Request.Context(), req.Email, req.Interests, req.Event)
	if err != nil {
		fail(c, err, "Failed to process subscription")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Subscription for %s has been saved successfully", rec.Email),
	})
}

type trackRequest struct {
	Event *events.Event `json:"event"`
}

func (s *Server) trackInterest(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event data is required"})
		return
	}
	list, err := s.deps.Interests.RecordInterest(c.Request.Context(), req.Event)
	if err != nil {
		fail(c, err, "Failed to track event interest")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Interest in %q has been tracked successfully", req.Event.Title),
		"data":    list,
	})
}

func (s *Server) listInterests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": s.deps.Interests.List(c.Request.Context())})
}

func (s *Server) stats(c *gin.Context) {
	day := s.now()
	if d := c.Query("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}
	ctx := c.Request.Context()
	stats := analytics.AnalyzeDay(s.deps.Subscriptions.List(ctx), s.deps.Interests.List(ctx), day)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats, "summary": stats.Summary()})
}

func (s *Server) scrape(c *gin.Context) {
	if s.deps.Pipeline == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "An error occurred while scraping data",
			"errorMessage": "pipeline is not configured",
		})
		return
	}
	out, err := s.deps.Pipeline.Scrape(c.Request.Context())
	if err != nil {
		logEntry(c).WithError(err).Error("❌ Scrape failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "An error occurred while scraping data",
			"errorMessage": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result": out.Text,
		"debug": gin.H{
			"context":     out.Context,
			"searchTerms": out.SearchTerms,
			"timestamp":   s.now(),
		},
	})
}

func (s *Server) runPipeline(c *gin.Context) {
	if s.deps.Pipeline == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pipeline is not configured"})
		return
	}
	rep, err := s.deps.Pipeline.Run(c.Request.Context())
	if err != nil {
		logEntry(c).WithError(err).Error("❌ Pipeline run failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        "Pipeline run failed",
			"errorMessage": err.Error(),
			"report":       rep,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "report": rep})
}
