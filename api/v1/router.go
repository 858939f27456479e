package v1

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"sitehost/api/v1/auth"
	"sitehost/api/v1/domains"
	"sitehost/api/v1/middleware"
	"sitehost/api/v1/sites"
	"sitehost/internal/config"
	"sitehost/internal/domain"
	"sitehost/internal/httpx"
	"sitehost/internal/session"
	"sitehost/internal/site"
)

// SetupRouter registers all routes. API paths live at the root; unmatched
// requests fall through to site content serving keyed by the Host header.
func SetupRouter(r *gin.Engine, db *gorm.DB, cfg *config.Config, sessions *session.Store, domainSvc *domain.Service, siteSvc *site.Service) {
	r.GET("/ping", pingHandler)

	authHandler := auth.NewHandler(db, cfg, sessions)
	domainsHandler := domains.NewHandler(domainSvc, cfg.Edge.CNAMETarget)
	sitesHandler := sites.NewHandler(siteSvc)
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	protected := r.Group("")
	protected.Use(middleware.AuthRequired(sessions))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)

		protected.GET("/domains", domainsHandler.List)
		protected.POST("/domains", domainsHandler.Create)
		protected.PATCH("/domains", domainsHandler.Refresh)
		protected.DELETE("/domains", domainsHandler.Delete)

		protected.GET("/sites", sitesHandler.List)
		protected.POST("/sites/deploy", sitesHandler.Deploy)
		protected.PATCH("/sites", sitesHandler.Rename)
		protected.DELETE("/sites", sitesHandler.Delete)
	}

	// site traffic: anything not matching the API surface
	r.NoRoute(sitesHandler.Serve)
}

// pingHandler handles the ping request using unified response
func pingHandler(c *gin.Context) {
	httpx.OK(c, gin.H{
		"pong": true,
	})
}
