package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/lifehubhq/lifehub/internal/access"
	"github.com/lifehubhq/lifehub/internal/auth"
	"github.com/lifehubhq/lifehub/internal/cache"
	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/http/handlers"
	"github.com/lifehubhq/lifehub/internal/http/middlewares"
	"github.com/lifehubhq/lifehub/internal/observability"
	"github.com/lifehubhq/lifehub/internal/queue/redisclient"
	"github.com/lifehubhq/lifehub/internal/repo/postgres"
)

type RouterDeps struct {
	Cfg   config.Config
	Log   *slog.Logger
	Pool  *pgxpool.Pool
	Redis *redisclient.Client
	Prom  *observability.Prom
	Reg   *prometheus.Registry
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Cfg

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("lifehub-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	r.Use(limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))

	// health + metrics

	dbPing := func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	}

	redisPing := func() error {
		if deps.Redis == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Redis.Ping(ctx)
	}

	health := handlers.NewHealthHandler(dbPing, redisPing)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Reg, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)

	// repositories

	usersRepo := postgres.NewUsersRepo(deps.Pool)
	refreshRepo := postgres.NewRefreshTokensRepo(deps.Pool)
	grantsRepo := postgres.NewGrantsRepo(deps.Pool)
	tasksRepo := postgres.NewTasksRepo(deps.Pool)
	notesRepo := postgres.NewNotesRepo(deps.Pool)
	contactsRepo := postgres.NewContactsRepo(deps.Pool)
	documentsRepo := postgres.NewDocumentsRepo(deps.Pool)
	calendarRepo := postgres.NewCalendarRepo(deps.Pool)
	chatRepo := postgres.NewChatRepo(deps.Pool)
	supportRepo := postgres.NewSupportRepo(deps.Pool)
	auditRepo := postgres.NewAuditRepo(deps.Pool)
	healthRepo := postgres.NewHealthRecordsRepo(deps.Pool)
	bizRepo := postgres.NewBizMetricsRepo(deps.Pool)
	jobsRepo := postgres.NewJobsRepo(deps.Pool, deps.Prom)

	// auth plumbing

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authMw := middlewares.NewAuthMiddleware(jwtManager)
	resolver := access.NewResolver(grantsRepo, usersRepo)
	accessMw := middlewares.NewAccessContextMiddleware(resolver)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)

	authGroup := r.Group("/auth")
	authGroup.Use(middlewares.RequireJSON())
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	// everything below operates on owned rows: authenticate, then work
	// out whose data the request is for

	api := r.Group("/")
	api.Use(middlewares.RequireJSON())
	api.Use(authMw.RequireAuth())
	api.Use(accessMw.ResolveContext())

	sharedAccess := handlers.NewSharedAccessHandler(grantsRepo, usersRepo, jobsRepo)
	api.GET("/shared-access", sharedAccess.ListGrants)
	api.POST("/shared-access", sharedAccess.GrantAccess)
	api.DELETE("/shared-access", sharedAccess.RevokeAccess)
	api.GET("/user-context", sharedAccess.UserContext)

	tasks := handlers.NewTasksHandler(tasksRepo)
	api.GET("/tasks", tasks.ListTasks)
	api.POST("/tasks", tasks.CreateTask)
	api.GET("/tasks/:id", tasks.GetTask)
	api.PATCH("/tasks/:id", tasks.UpdateTask)
	api.DELETE("/tasks/:id", tasks.DeleteTask)

	notes := handlers.NewNotesHandler(notesRepo)
	api.GET("/notes", notes.ListNotes)
	api.POST("/notes", notes.CreateNote)
	api.GET("/notes/:id", notes.GetNote)
	api.PATCH("/notes/:id", notes.UpdateNote)
	api.DELETE("/notes/:id", notes.DeleteNote)

	contacts := handlers.NewContactsHandler(contactsRepo)
	api.GET("/contacts", contacts.ListContacts)
	api.POST("/contacts", contacts.CreateContact)
	api.GET("/contacts/:id", contacts.GetContact)
	api.PATCH("/contacts/:id", contacts.UpdateContact)
	api.DELETE("/contacts/:id", contacts.DeleteContact)

	documents := handlers.NewDocumentsHandler(documentsRepo)
	api.GET("/documents", documents.ListDocuments)
	api.POST("/documents", documents.CreateDocument)
	api.GET("/documents/:id", documents.GetDocument)
	api.PATCH("/documents/:id", documents.UpdateDocument)
	api.DELETE("/documents/:id", documents.DeleteDocument)
	api.GET("/documents/:id/fields", documents.ListFields)
	api.POST("/documents/:id/fields", documents.CreateField)
	api.PATCH("/documents/:id/fields/:fieldId", documents.UpdateField)
	api.DELETE("/documents/:id/fields/:fieldId", documents.DeleteField)

	calendarHandler := handlers.NewCalendarHandler(calendarRepo)
	api.GET("/calendar/events", calendarHandler.ListEvents)
	api.POST("/calendar/events", calendarHandler.CreateEvent)
	api.GET("/calendar/events/:id", calendarHandler.GetEvent)
	api.PATCH("/calendar/events/:id", calendarHandler.UpdateEvent)
	api.DELETE("/calendar/events/:id", calendarHandler.DeleteEvent)

	var chatPublisher handlers.ChangePublisher
	if deps.Redis != nil {
		chatPublisher = deps.Redis
	}
	chatHandler := handlers.NewChatHandler(chatRepo, chatPublisher)
	api.GET("/chat/conversations", chatHandler.ListConversations)
	api.POST("/chat/conversations", chatHandler.CreateConversation)
	api.GET("/chat/conversations/:id", chatHandler.GetConversation)
	api.DELETE("/chat/conversations/:id", chatHandler.DeleteConversation)
	api.GET("/chat/conversations/:id/messages", chatHandler.ListMessages)
	api.POST("/chat/conversations/:id/messages", chatHandler.CreateMessage)

	supportHandler := handlers.NewSupportHandler(supportRepo)
	api.GET("/support/threads", supportHandler.ListThreads)
	api.POST("/support/threads", supportHandler.CreateThread)
	api.GET("/support/threads/:id", supportHandler.GetThread)
	api.POST("/support/threads/:id/close", supportHandler.CloseThread)
	api.POST("/support/threads/:id/reopen", supportHandler.ReopenThread)
	api.GET("/support/threads/:id/messages", supportHandler.ListMessages)
	api.POST("/support/threads/:id/messages", supportHandler.CreateMessage)

	lifeAudit := handlers.NewLifeAuditHandler(auditRepo)
	api.GET("/life-audit", lifeAudit.ListRecords)
	api.POST("/life-audit", lifeAudit.CreateRecord)
	api.PATCH("/life-audit/:id", lifeAudit.UpdateRecord)
	api.DELETE("/life-audit/:id", lifeAudit.DeleteRecord)

	healthRecords := handlers.NewHealthRecordsHandler(healthRepo)
	api.GET("/health-records", healthRecords.ListRecords)
	api.POST("/health-records", healthRecords.CreateRecord)
	api.PATCH("/health-records/:id", healthRecords.UpdateRecord)
	api.DELETE("/health-records/:id", healthRecords.DeleteRecord)

	summaryCache := cache.New(30 * time.Second)
	bizMetrics := handlers.NewBizMetricsHandler(bizRepo, summaryCache)
	api.GET("/business-metrics", bizMetrics.ListMetrics)
	api.POST("/business-metrics", bizMetrics.CreateMetric)
	api.GET("/business-metrics/summary", bizMetrics.Summary)
	api.PATCH("/business-metrics/:id", bizMetrics.UpdateMetric)
	api.DELETE("/business-metrics/:id", bizMetrics.DeleteMetric)

	jobsHandler := handlers.NewJobsHandler(jobsRepo)
	api.POST("/business-metrics/digest", jobsHandler.EnqueueMetricsDigest)

	// operator-only queue controls

	adminJobs := handlers.NewAdminJobsHandler(jobsRepo)
	admin := r.Group("/admin")
	admin.Use(authMw.RequireAuth())
	admin.Use(authMw.RequireRole("admin"))
	admin.GET("/jobs", adminJobs.List)
	admin.GET("/jobs/:id", adminJobs.GetByID)
	admin.POST("/jobs/:id/retry", adminJobs.Retry)
	admin.POST("/jobs/reprocess-dead", adminJobs.ReprocessDead)

	return r
}
