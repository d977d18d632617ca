package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adrena/backend/config"
	"github.com/adrena/backend/internal/auth"
	"github.com/adrena/backend/internal/backup"
	"github.com/adrena/backend/internal/cache"
	"github.com/adrena/backend/internal/catalog"
	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/gamification"
	"github.com/adrena/backend/internal/guard"
	"github.com/adrena/backend/internal/handlers"
	"github.com/adrena/backend/internal/logger"
	"github.com/adrena/backend/internal/messaging"
	"github.com/adrena/backend/internal/metrics"
	"github.com/adrena/backend/internal/middleware"
	"github.com/adrena/backend/internal/models"
	"github.com/adrena/backend/internal/moderation"
	"github.com/adrena/backend/internal/notifications"
	"github.com/adrena/backend/internal/realtime"
	"github.com/adrena/backend/internal/repository"
	"github.com/adrena/backend/internal/social"
	"github.com/adrena/backend/internal/storage"
	"github.com/adrena/backend/internal/wallet"
	"github.com/adrena/backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("adrena-backend", "info").WithError(err).Fatal("failed to load config")
	}

	log := logger.New("adrena-backend", cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(cfg.GetDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	log.Info("running database migrations")
	if err := database.RunMigrations(db.DB, log); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Without Redis the API still serves; caching, presence and live updates are off
	var (
		modCache moderation.Cache
		broker   realtime.Broker
		limiter  messaging.Limiter
	)
	redis, err := cache.NewRedisClient(cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Warn("failed to connect to redis, running without realtime features")
		redis = nil
	} else {
		defer redis.Close()
		modCache, broker, limiter = redis, redis, redis
	}

	if err := handlers.RegisterValidators(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	inflight := guard.New()
	publisher := realtime.NewPublisher(broker, m, log)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	modRepo := repository.NewModerationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	followRepo := repository.NewFollowRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	// Services
	statsTTL := time.Duration(cfg.Cache.StatsTTLSeconds) * time.Second
	modService := moderation.NewService(modRepo, reportRepo, userRepo, modCache, publisher, inflight, m, log, statsTTL)
	socialService := social.NewService(followRepo, groupRepo, userRepo, notifRepo, publisher, social.Options{
		PopularThreshold: cfg.Social.PopularThreshold,
		CandidatePool:    cfg.Social.CandidatePool,
	}, log)
	groupService := social.NewGroupService(groupRepo, userRepo, notifRepo, publisher, log)
	notifService := notifications.NewService(notifRepo, groupRepo, socialService, catalogRepo, userRepo, publisher, log)
	badgeService := gamification.NewService(badgeRepo, userRepo, publisher, log)
	walletService := wallet.NewService(walletRepo, inflight, cfg.Wallet.MinWithdrawal, log)
	msgService := messaging.NewService(msgRepo, userRepo, limiter, cfg.API.RateLimitMessagesPerSec, publisher, log)
	msgService.Cleanup(ctx)
	catalogService := catalog.NewService(catalogRepo, modService, log)

	var uploader storage.Uploader
	if cfg.Storage.Configured() {
		uploader = storage.NewFTPStore(cfg.GetFTPAddr(), cfg.Storage.User, cfg.Storage.Password, cfg.Storage.BaseURL)
	} else {
		log.Warn("backup storage is not configured")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, jwtService)
	modHandler := handlers.NewModerationHandler(modService)
	notifHandler := handlers.NewNotificationHandler(notifService)
	socialHandler := handlers.NewSocialHandler(socialService, groupService)
	accountHandler := handlers.NewAccountHandler(badgeService, walletService)
	msgHandler := handlers.NewMessageHandler(msgService)
	submissionHandler := handlers.NewSubmissionHandler(catalogService)
	backupHandler := backup.NewHandler(backupRepo, jwtService, userRepo, uploader, m, log)

	var wsHandler *websocket.Handler
	if redis != nil {
		hub := websocket.NewHub(redis, log)
		go hub.Run(ctx)
		go hub.Subscribe(ctx, redis)
		wsHandler = websocket.NewHandler(hub, jwtService, notifService, cfg.CORS.AllowedOrigins, log)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.API.RateLimitMessagesPerSec)
	rateLimiter.Cleanup(ctx)
	limited := middleware.RateLimitMiddleware(rateLimiter)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), log.Middleware(), m.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	// The backup function answers its own pre-flight with permissive CORS
	router.OPTIONS("/functions/v1/backup-database", backupHandler.Options)
	router.POST("/functions/v1/backup-database", backupHandler.Backup)

	if wsHandler != nil {
		router.GET("/ws", wsHandler.HandleWebSocket)
	}

	router.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtService))
	{
		api.GET("/me", authHandler.GetMe)
		api.GET("/me/stats", accountHandler.Stats)
		api.GET("/me/badges", accountHandler.BadgeProgress)
		api.POST("/me/badges/check", accountHandler.CheckBadges)
		api.GET("/me/wallet", accountHandler.Wallet)
		api.GET("/me/wallet/transactions", accountHandler.Transactions)
		api.POST("/me/wallet/withdrawals", limited, accountHandler.Withdraw)

		api.GET("/notifications", notifHandler.List)
		api.GET("/notifications/unread-count", notifHandler.UnreadCount)
		api.POST("/notifications/read-all", notifHandler.MarkAllRead)
		api.POST("/notifications/:id/read", notifHandler.MarkRead)
		api.POST("/notifications/:id/respond", notifHandler.Respond)
		api.DELETE("/notifications/:id", notifHandler.Delete)

		api.GET("/social/suggestions", socialHandler.Suggestions)
		api.POST("/users/:id/follow", limited, socialHandler.Follow)
		api.DELETE("/users/:id/follow", socialHandler.Unfollow)
		api.GET("/users/:id/followers", socialHandler.Followers)
		api.GET("/users/:id/following", socialHandler.Following)
		api.POST("/users/:id/friend-request", limited, socialHandler.SendFriendRequest)
		api.POST("/follow-requests/:id/respond", socialHandler.RespondFollowRequest)
		api.POST("/friend-requests/:id/respond", socialHandler.RespondFriendRequest)
		api.POST("/groups", socialHandler.CreateGroup)
		api.POST("/groups/:id/invite", limited, socialHandler.InviteToGroup)

		api.POST("/events", submissionHandler.CreateEvent)
		api.POST("/events/share", limited, notifHandler.ShareEvent)
		api.POST("/services", submissionHandler.CreateService)
		api.POST("/provider-applications", submissionHandler.ApplyAsProvider)

		api.GET("/messages/unread-count", msgHandler.UnreadCount)
		api.POST("/messages", msgHandler.SendMessage)
		api.GET("/conversations/:id", msgHandler.GetMessages)
		api.POST("/conversations/:id/read", msgHandler.MarkConversationRead)

		api.POST("/reports", limited, modHandler.SubmitReport)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(userRepo, models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.GET("/stats", modHandler.Stats)
		admin.GET("/activity", modHandler.ActivityLog)
		admin.GET("/moderation/:kind", modHandler.ListPending)
		admin.POST("/moderation/:kind/:id", modHandler.Moderate)
		admin.DELETE("/moderation/:kind/:id", modHandler.Delete)
		admin.GET("/reports", modHandler.ListReports)
		admin.POST("/reports/:id/review", modHandler.ReviewReport)
		if wsHandler != nil {
			admin.GET("/online", wsHandler.OnlineUsers)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).WithField("env", cfg.Server.Env).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
