// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package web exposes the query service over HTTP. All handlers are thin:
// they parse parameters, call the service, and serialize the result.
package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pdiddy/paper-atlas/internal/query"
)

// NewRouter builds the HTTP API over svc.
func NewRouter(svc *query.Service) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"healthy": true})
	})

	api := r.Group("/api")
	api.GET("/years", handleYears(svc))
	api.GET("/papers", handlePapers(svc))
	api.GET("/categories", handleCategories(svc))
	api.GET("/stats", handleStats(svc))
	api.POST("/reload/:year", handleReload(svc))

	return r
}

// handleYears lists the available catalog years, most recent first.
// The default year is the most recent one.
func handleYears(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		years := svc.Years()
		resp := gin.H{"years": years}
		if len(years) > 0 {
			resp["default_year"] = years[0]
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handlePapers answers a filtered, paginated paper query. Parameters:
// year (required), q, category (repeatable), field (repeatable), page,
// page_size.
func handlePapers(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := yearParam(c, c.Query("year"))
		if !ok {
			return
		}

		page, err := intQuery(c, "page", 1)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page parameter"})
			return
		}
		pageSize, err := intQuery(c, "page_size", 0)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page_size parameter"})
			return
		}

		res := svc.HandleQuery(query.Request{
			Year:       year,
			Text:       c.Query("q"),
			Categories: c.QueryArray("category"),
			Fields:     c.QueryArray("field"),
			Page:       page,
			PageSize:   pageSize,
		})
		c.JSON(http.StatusOK, res)
	}
}

// handleCategories returns the category buckets for a year, including
// per-category summaries and counts.
func handleCategories(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := yearParam(c, c.Query("year"))
		if !ok {
			return
		}

		snap, err := svc.Snapshot(year)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "year unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"year":       snap.Year,
			"run_id":     snap.RunID,
			"categories": snap.Buckets,
		})
	}
}

// handleStats returns totals for a year: paper count, category count, and
// per-category counts.
func handleStats(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := yearParam(c, c.Query("year"))
		if !ok {
			return
		}

		snap, err := svc.Snapshot(year)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "year unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"year":             snap.Year,
			"run_id":           snap.RunID,
			"total_papers":     snap.TotalCount,
			"total_categories": len(snap.Buckets),
			"category_counts":  query.CategoryCounts(snap),
			"warnings":         snap.Warnings,
		})
	}
}

// handleReload rebuilds the snapshot for a year and swaps it into the
// cache atomically. In-flight requests keep the snapshot they hold.
func handleReload(svc *query.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := yearParam(c, c.Param("year"))
		if !ok {
			return
		}

		snap, err := svc.Reload(year)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "year unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"year":         snap.Year,
			"run_id":       snap.RunID,
			"total_papers": snap.TotalCount,
		})
	}
}

func yearParam(c *gin.Context, raw string) (int, bool) {
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year parameter required"})
		return 0, false
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year parameter"})
		return 0, false
	}
	return year, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
