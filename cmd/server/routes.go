package main

import (
	"github.com/gin-gonic/gin"

	"github.com/codehive/server/internal/handlers"
	"github.com/codehive/server/internal/middleware"
	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/pkg/logger"
)

// registerRoutes sets up all HTTP and websocket routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	// Rate limiter for the expensive proxied routes (code execution, AI)
	proxyLimiter := middleware.NewRateLimiter(2, 5)

	db := models.GetDB()

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "codehive"})
	})

	// Websocket routes (public with internal token validation; browsers
	// cannot set headers on websocket dials)
	wsHandler := handlers.NewWSHandler(db, svc.hub, svc.presence)
	r.GET("/ws/projects/:id", wsHandler.ServeProject)
	r.GET("/ws/notifications", wsHandler.ServeNotifications)

	// API routes
	api := r.Group("/api")
	{
		authHandler := handlers.NewAuthHandler(db, &svc.cfg.JWT)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", authHandler.Me)
			protected.POST("/auth/logout", authHandler.Logout)

			// Projects
			projectHandler := handlers.NewProjectHandler(db)
			protected.GET("/projects", projectHandler.List)
			protected.POST("/projects", projectHandler.Create)
			protected.GET("/projects/:id", projectHandler.GetByID)
			protected.DELETE("/projects/:id", projectHandler.Terminate)

			// Membership
			memberHandler := handlers.NewMemberHandler(db, svc.bridge)
			protected.POST("/projects/join", memberHandler.Join)
			protected.GET("/projects/:id/members", memberHandler.Members)
			protected.GET("/projects/:id/requests", memberHandler.Pending)
			protected.POST("/projects/:id/requests/:requestId/approve", memberHandler.Approve)
			protected.DELETE("/projects/:id/requests/:requestId", memberHandler.Reject)
			protected.PUT("/projects/:id/members/:userId/role", memberHandler.UpdateRole)
			protected.DELETE("/projects/:id/members/:userId", memberHandler.Remove)

			// File tree
			fileTreeHandler := handlers.NewFileTreeHandler(db, svc.bridge, svc.taskQueue)
			protected.GET("/projects/:id/tree", fileTreeHandler.Tree)
			protected.POST("/projects/:id/folders", fileTreeHandler.CreateFolder)
			protected.DELETE("/projects/:id/folders/:folderId", fileTreeHandler.DeleteFolder)
			protected.POST("/projects/:id/files", fileTreeHandler.CreateFile)
			protected.GET("/projects/:id/files/:fileId", fileTreeHandler.GetFile)
			protected.PUT("/projects/:id/files/:fileId", fileTreeHandler.UpdateFile)
			protected.DELETE("/projects/:id/files/:fileId", fileTreeHandler.DeleteFile)

			// Documents
			documentHandler := handlers.NewDocumentHandler(db, svc.bridge)
			protected.GET("/projects/:id/docs", documentHandler.List)
			protected.POST("/projects/:id/docs", documentHandler.Create)
			protected.GET("/projects/:id/docs/:docId", documentHandler.Get)
			protected.PUT("/projects/:id/docs/:docId", documentHandler.Update)
			protected.DELETE("/projects/:id/docs/:docId", documentHandler.Delete)

			// Alerts
			alertHandler := handlers.NewAlertHandler(db, svc.bridge)
			protected.GET("/projects/:id/alerts", alertHandler.List)
			protected.POST("/projects/:id/alerts", alertHandler.Create)
			protected.POST("/projects/:id/alerts/:alertId/resolve", alertHandler.Resolve)

			// Chat history
			chatHandler := handlers.NewChatHandler(db)
			protected.GET("/projects/:id/chat", chatHandler.History)

			// Dashboard
			dashboardHandler := handlers.NewDashboardHandler(db)
			protected.GET("/projects/:id/dashboard", dashboardHandler.ProjectStats)

			// Code execution (rate limited)
			executeHandler := handlers.NewExecuteHandler(db, &svc.cfg.Judge)
			protected.GET("/execute/languages", executeHandler.Languages)
			protected.POST("/projects/:id/execute", proxyLimiter.Middleware(), executeHandler.Run)

			// AI assistant (rate limited)
			aiHandler := handlers.NewAIHandler(db, svc.ragService, svc.taskQueue)
			protected.POST("/projects/:id/ai/index", aiHandler.Index)
			protected.POST("/projects/:id/ai/chat", proxyLimiter.Middleware(), aiHandler.Chat)
		}
	}
}
