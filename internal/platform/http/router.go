package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/internal/repository"
	"github.com/emlakradar/api/pkg/model"
)

// Router wires HTTP handlers.
type Router struct {
	listings repository.ListingStore
	runs     repository.RunStore
	crawler  *crawler.Service
	origins  string
}

func NewRouter(listings repository.ListingStore, runs repository.RunStore, crawlerSvc *crawler.Service, allowedOrigins string) *gin.Engine {
	r := &Router{
		listings: listings,
		runs:     runs,
		crawler:  crawlerSvc,
		origins:  allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/listings", r.listListings)
		api.GET("/listings/export", r.exportListings)
		api.GET("/stats", r.getStats)
		api.GET("/sources", r.listSources)
		api.POST("/crawl/run", r.startCrawl)
		api.GET("/crawl/status", r.getCrawlStatus)
		api.GET("/crawl/runs", r.listCrawlRuns)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *Router) listListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if pageSize < 1 {
		pageSize = 50
	}

	filter := repository.ListingFilter{
		Source:      c.Query("source"),
		ListingType: c.Query("listingType"),
		District:    c.Query("district"),
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
	}
	if v := c.Query("minPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &p
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if p, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &p
		}
	}
	if v := c.Query("minRooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinRooms = &n
		}
	}

	items, total, err := r.listings.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
	})
}

func (r *Router) exportListings(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=listings.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"listing_id", "source_website", "title", "listing_type",
		"property_type", "price", "currency", "rooms", "area", "district",
		"metro_station", "contact_type", "contact_phone", "source_url", "updated_at"}
	if err := writer.Write(header); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	err := r.listings.StreamAll(c.Request.Context(), func(l model.Listing) error {
		row := []string{
			l.ListingID,
			l.SourceWebsite,
			l.Title,
			l.ListingType,
			l.PropertyType,
			formatFloat(l.Price),
			l.Currency,
			formatInt(l.Rooms),
			formatFloat(l.Area),
			l.District,
			l.MetroStation,
			l.ContactType,
			l.ContactPhone,
			l.SourceURL,
			l.UpdatedAt.Format(time.RFC3339),
		}
		return writer.Write(row)
	})
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
}

func (r *Router) getStats(c *gin.Context) {
	stats, err := r.listings.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (r *Router) listSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": r.crawler.SourceNames()})
}

type startCrawlReq struct {
	Sources []string `json:"sources"`
}

func (r *Router) startCrawl(c *gin.Context) {
	var req startCrawlReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	runID, err := r.crawler.Start(c.Request.Context(), req.Sources)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runId":   runID,
		"message": "Crawl started. Check status with GET /api/crawl/status?runId=" + runID,
	})
}

func (r *Router) getCrawlStatus(c *gin.Context) {
	runID := c.Query("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runId is required"})
		return
	}
	run, found, err := r.runs.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (r *Router) listCrawlRuns(c *gin.Context) {
	runs, err := r.runs.ListRuns(c.Request.Context(), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": runs})
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
