package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/auth"
	"github.com/bynikesh/findmyai-sub001/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the public, authenticated and admin API under /api/v1
func (h *Handlers) RegisterRoutes(r *gin.Engine, validator auth.TokenValidator) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimitAuth())
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", middleware.RequireAuth(validator), h.Me)
		}

		public := api.Group("")
		public.Use(middleware.RateLimitPublic(), middleware.OptionalAuth(validator))
		{
			public.GET("/tools", h.ListTools)
			public.GET("/tools/trending", h.GetTrendingTools)
			public.GET("/tools/:slug", h.GetTool)
			public.GET("/tools/:slug/stats", h.GetToolStats)
			public.GET("/tools/:slug/reviews", h.ListReviews)
			public.POST("/tools/:slug/click", h.TrackClick)
			public.POST("/tools/submit", middleware.RateLimitWrites(), h.SubmitTool)
			public.GET("/search", h.SearchTools)
			public.GET("/categories", h.ListCategories)
			public.GET("/categories/:slug", h.GetCategory)
			public.GET("/tags", h.ListTags)
		}

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(validator), middleware.RateLimitWrites())
		{
			authed.POST("/tools/:slug/reviews", h.CreateReview)
			authed.DELETE("/reviews/:id", h.DeleteReview)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(validator), middleware.RequireAdmin())
		{
			admin.GET("/tools", h.AdminListTools)
			admin.POST("/tools", h.CreateTool)
			admin.PUT("/tools/:id", h.UpdateTool)
			admin.DELETE("/tools/:id", h.DeleteTool)
			admin.POST("/tools/:id/verify", h.VerifyTool)

			admin.POST("/categories", h.CreateCategory)
			admin.PUT("/categories/:id", h.UpdateCategory)
			admin.DELETE("/categories/:id", h.DeleteCategory)

			admin.GET("/analytics/overview", h.GetOverview)
			admin.POST("/ai/generate", h.GenerateToolContent)
			admin.POST("/search/reindex", h.Reindex)

			jobs := admin.Group("/jobs")
			{
				jobs.POST("/trending", h.RunTrending)
				jobs.POST("/import", h.RunImport)
				jobs.POST("/import/sources/:source", h.RunImportSource)
				jobs.POST("/import/stop", h.StopImport)
				jobs.GET("/import/status", h.ImportStatus)
				jobs.GET("/import/logs", h.ImportLogs)
			}
		}
	}
}

// Health reports database and cache reachability
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	status := http.StatusOK

	sqlDB, err := h.repo.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.Ping(ctx); err != nil {
			// the API degrades to uncached reads without Redis
			checks["redis"] = err.Error()
		}
	}
	if h.search != nil {
		checks["search"] = "sql"
		if h.search.Enabled() {
			checks["search"] = "elasticsearch"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"service":   "findmyai-backend",
		"checks":    checks,
	})
}
