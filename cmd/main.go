package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"roninads/internal/auth"
	"roninads/internal/config"
	"roninads/internal/database"
	"roninads/internal/handlers"
	"roninads/internal/jobs"
	"roninads/internal/services"
	"roninads/internal/xapi"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	sessionService := services.NewSessionService(db, cfg.App.SessionTTL, cfg.App.SessionIdleTimeout)
	referralService := services.NewReferralService(db)
	authService := services.NewAuthService(db, sessionService, referralService, cfg.App.AdminWallets)
	passService := services.NewPassService(db)
	assetService := services.NewAssetService(db, cfg.Points.AssetVerifyCooldown)
	postService := services.NewPostService(db, ledgerService, passService, cfg.Points)
	xClient := xapi.NewClient(cfg.XAPI.BearerToken, cfg.XAPI.BaseURL, cfg.XAPI.Timeout)
	xpostService := services.NewXPostService(db, ledgerService, assetService, xClient, cfg.Points, cfg.XAPI.FailOpen)
	rewardService := services.NewRewardService(db, ledgerService, cfg.Points.ReferralClaimBonus)
	weeklyService := services.NewWeeklyService(db)
	adminService := services.NewAdminService(db, ledgerService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	memberHandler := handlers.NewMemberHandler(ledgerService, passService, postService, weeklyService)
	postHandler := handlers.NewPostHandler(postService)
	xpostHandler := handlers.NewXPostHandler(xpostService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	referralHandler := handlers.NewReferralHandler(referralService)
	assetHandler := handlers.NewAssetHandler(assetService)
	weeklyHandler := handlers.NewWeeklyHandler(weeklyService)
	adminHandler := handlers.NewAdminHandler(adminService, postService, rewardService,
		xpostService, assetService, passService, weeklyService, ledgerService)

	// Start the automatic prize rotation if configured
	rotationSched, err := jobs.StartWeeklyRotation(weeklyService, cfg.Weekly)
	if err != nil {
		log.Fatalf("Failed to start weekly rotation: %v", err)
	}

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth routes
	authProtected := router.Group("/auth")
	authProtected.Use(auth.RequireSession(sessionService))
	{
		authProtected.GET("/session", authHandler.Session)
		authProtected.POST("/x-handle", authHandler.SetXHandle)
	}

	// Public routes
	router.GET("/api/posts", postHandler.GetPosts)
	router.GET("/api/posts/:id", postHandler.GetPost)
	router.GET("/api/rewards", rewardHandler.GetRewards)
	router.GET("/api/rewards/:id", rewardHandler.GetReward)
	router.GET("/api/leaderboard", memberHandler.Leaderboard)
	router.GET("/api/weekly/active", weeklyHandler.GetActivePeriod)
	router.GET("/api/weekly/:id/winners", weeklyHandler.GetWinners)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.RequireSession(sessionService))
	{
		// Member endpoints
		memberRoutes := api.Group("/member")
		{
			memberRoutes.GET("/profile", memberHandler.Profile)
			memberRoutes.GET("/points/history", memberHandler.PointsHistory)
			memberRoutes.GET("/views", memberHandler.ViewHistory)
		}

		// Post endpoints
		api.GET("/posts/mine", postHandler.GetMyPosts)
		api.POST("/posts", postHandler.CreatePost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/posts/:id/view", postHandler.RecordView)

		// Social task endpoints
		api.GET("/x-posts", xpostHandler.GetXPosts)
		api.GET("/x-posts/actions", xpostHandler.GetMyActions)
		api.POST("/x-posts/:id/verify", xpostHandler.VerifyAction)

		// Reward endpoints
		api.POST("/rewards/:id/claim", rewardHandler.ClaimReward)
		api.GET("/rewards/claims/mine", rewardHandler.GetMyClaims)

		// Referral endpoints
		api.GET("/referral/stats", referralHandler.GetStats)
		api.GET("/referral/referrals", referralHandler.GetReferrals)
		api.POST("/referral/code", referralHandler.EnsureCode)

		// Featured asset endpoints
		api.GET("/assets", assetHandler.GetAssets)
		api.GET("/assets/mine", assetHandler.GetMyAssets)
		api.POST("/assets/:id/verify", assetHandler.VerifyHoldings)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.RequireSession(sessionService))
	admin.Use(auth.RequireAdmin())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		// Member management
		admin.GET("/members", adminHandler.GetMembers)
		admin.PUT("/members/:id/active", adminHandler.SetMemberActive)
		admin.PUT("/members/:id/admin", adminHandler.SetMemberAdmin)
		admin.POST("/members/:id/points", adminHandler.AdjustPoints)
		admin.POST("/members/:id/reconcile", adminHandler.ReconcilePoints)
		admin.POST("/members/:id/click-pass", adminHandler.GrantClickPass)
		admin.POST("/members/:id/publisher-pass", adminHandler.GrantPublisherPass)

		// Post moderation
		admin.GET("/posts/pending", adminHandler.GetPendingPosts)
		admin.POST("/posts/:id/approve", adminHandler.ApprovePost)
		admin.POST("/posts/:id/reject", adminHandler.RejectPost)

		// Reward management
		admin.POST("/rewards", adminHandler.CreateReward)
		admin.PUT("/rewards/:id", adminHandler.UpdateReward)
		admin.GET("/claims", adminHandler.GetClaims)
		admin.POST("/claims/:id/process", adminHandler.ProcessClaim)

		// Social task management
		admin.POST("/x-posts", adminHandler.CreateXPost)
		admin.PUT("/x-posts/:id/active", adminHandler.SetXPostActive)

		// Featured asset management
		admin.POST("/assets", adminHandler.CreateAsset)
		admin.PUT("/assets/:id", adminHandler.UpdateAsset)

		// Weekly prize management
		admin.GET("/weekly", adminHandler.GetWeeklyPeriods)
		admin.POST("/weekly", adminHandler.CreateWeeklyPeriod)
		admin.POST("/weekly/rotate", adminHandler.RotateWeeklyPeriod)
		admin.POST("/weekly/:id/draw", adminHandler.GenerateWeeklyWinners)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if rotationSched != nil {
		if err := rotationSched.Shutdown(); err != nil {
			log.Printf("Failed to stop rotation scheduler: %v", err)
		}
	}

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
