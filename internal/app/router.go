package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/assets"
	"github.com/church-console/backend/internal/auth"
	"github.com/church-console/backend/internal/calendar"
	"github.com/church-console/backend/internal/dashboard"
	"github.com/church-console/backend/internal/education"
	"github.com/church-console/backend/internal/finance"
	"github.com/church-console/backend/internal/groups"
	"github.com/church-console/backend/internal/media"
	"github.com/church-console/backend/internal/members"
	"github.com/church-console/backend/internal/middleware"
	"github.com/church-console/backend/internal/realtime"
	"github.com/church-console/backend/internal/reports"
	"github.com/church-console/backend/internal/session"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// Deps are the collaborators of the HTTP API. Files, Exports and Signer are optional; leave them nil
// (not a typed nil pointer) when the backing service is not configured.
type Deps struct {
	Store          *store.Store
	JWT            *auth.JWTService
	Hub            *realtime.Hub
	Files          media.ObjectStore
	Exports        reports.Exports
	Signer         reports.Signer
	Gatherer       prometheus.Gatherer
	CORSOrigins    string
	ChurchName     string
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// NewRouter builds the console API.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	console := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStaff, middleware.RoleTreasurer)
	staff := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleStaff)
	treasury := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleTreasurer)

	sessionHandler := session.NewHandler(d.Store, logger)
	dashboardHandler := dashboard.NewHandler(d.Store)
	reportHandler := reports.NewHandler(d.Store, d.Exports, d.Signer, d.ChurchName, logger)

	api := router.Group("")
	api.Use(middleware.JWT(d.JWT), actorContext)
	{
		// Session
		api.POST("/session/load", console, sessionHandler.Load)
		api.POST("/session/reset", console, sessionHandler.Reset)
		api.GET("/session/state", sessionHandler.State)
		api.GET("/notifications/next", sessionHandler.NextNotification)

		// Collections
		members.NewHandler(d.Store, logger).Register(api.Group("/members"), staff)
		assets.NewHandler(d.Store, logger).Register(api.Group("/assets"), staff)
		finance.NewHandler(d.Store, logger).Register(api.Group("/finance"), treasury)
		calendar.NewHandler(d.Store, logger).Register(api.Group("/events"), staff)
		education.NewHandler(d.Store, logger).Register(api.Group("/education"), staff)
		media.NewHandler(d.Store, d.Files, d.MaxUploadBytes, logger).Register(api.Group("/media"), staff)
		groups.NewHandler(d.Store, logger).Register(api.Group("/groups"), staff)

		// Dashboard
		api.GET("/dashboard/stats", dashboardHandler.Stats)
		api.GET("/dashboard/birthdays", dashboardHandler.Birthdays)

		// Reports
		api.GET("/reports/assets.csv", reportHandler.Download(reports.FormatCSV))
		api.GET("/reports/summary.xlsx", treasury, reportHandler.Download(reports.FormatXLSX))
		api.GET("/reports/summary.pdf", treasury, reportHandler.Download(reports.FormatPDF))
		api.GET("/reports/members.xlsx", staff, reportHandler.MembersReport)
		api.GET("/reports/groups.xlsx", staff, reportHandler.GroupsReport)
		api.GET("/members/:id/card.pdf", staff, reportHandler.MemberCard)
		api.POST("/reports/exports", treasury, reportHandler.Enqueue)
		api.GET("/reports/exports/:id", treasury, reportHandler.Status)

		// Change stream (token in query; browsers cannot set headers on websocket upgrades)
		if d.Hub != nil {
			api.GET("/ws", realtime.ServeWs(d.Hub, logger, d.CORSOrigins, middleware.UserID))
		}
	}
	return router
}

// actorContext tags the request context with the caller so store notifications reach only them.
func actorContext(c *gin.Context) {
	c.Request = c.Request.WithContext(store.WithActor(c.Request.Context(), middleware.UserID(c)))
	c.Next()
}
