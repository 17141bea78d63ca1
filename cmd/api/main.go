package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhttp "github.com/movstream/backend/internal/admin/http"
	adminservice "github.com/movstream/backend/internal/admin/service"
	"github.com/movstream/backend/internal/common/clock"
	"github.com/movstream/backend/internal/common/config"
	"github.com/movstream/backend/internal/common/constants"
	"github.com/movstream/backend/internal/common/crypto"
	"github.com/movstream/backend/internal/common/db"
	commonhttp "github.com/movstream/backend/internal/common/http"
	"github.com/movstream/backend/internal/common/httpmetrics"
	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	"github.com/movstream/backend/internal/common/server"
	feedbackhttp "github.com/movstream/backend/internal/feedback/http"
	feedbackrepo "github.com/movstream/backend/internal/feedback/repository"
	feedbackservice "github.com/movstream/backend/internal/feedback/service"
	"github.com/movstream/backend/internal/notification/email"
	notifhttp "github.com/movstream/backend/internal/notification/http"
	notifrepo "github.com/movstream/backend/internal/notification/repository"
	notifservice "github.com/movstream/backend/internal/notification/service"
	"github.com/movstream/backend/internal/notify/websocket"
	subhttp "github.com/movstream/backend/internal/subscription/http"
	subrepo "github.com/movstream/backend/internal/subscription/repository"
	subservice "github.com/movstream/backend/internal/subscription/service"
	userrepo "github.com/movstream/backend/internal/user/repository"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	users := userrepo.NewPgRepository(pool)
	subscriptions := subrepo.NewPgRepository(pool)
	feedback := feedbackrepo.NewPgRepository(pool)
	notificationLogs := notifrepo.NewPgRepository(pool)

	ids := crypto.NewUUIDGenerator()
	hasher := &crypto.BcryptHasher{}
	clk := clock.NewRealClock()

	hub := websocket.NewHub(cfg.JWTSecret, log)
	wsHandler := websocket.NewHandler(hub, cfg, log)

	adminSvc := adminservice.NewUserAdminService(adminservice.Deps{
		Repo:     users,
		Notifier: hub,
		Hasher:   hasher,
		IDs:      ids,
		Log:      log,
	})
	subSvc := subservice.NewSubscriptionService(subservice.Deps{
		Repo:     subscriptions,
		Users:    users,
		Notifier: hub,
		IDs:      ids,
		Log:      log,
	})
	feedbackSvc := feedbackservice.NewFeedbackService(feedbackservice.Deps{
		Repo:     feedback,
		Notifier: hub,
		IDs:      ids,
		Log:      log,
	})
	notifSvc := notifservice.NewNotificationService(notifservice.Deps{
		Repo:       notificationLogs,
		Recipients: users,
		Sender:     email.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword),
		IDs:        ids,
		Clock:      clk,
		Log:        log,
		From:       cfg.EmailFrom,
		BatchSize:  cfg.EmailBatchSize,
		BatchPause: cfg.EmailBatchPause,
	})

	jwtMw := jwtverify.Middleware(cfg.JWTSecret, log)
	optionalJwtMw := jwtverify.OptionalMiddleware(cfg.JWTSecret, log)
	adminMw := jwtverify.RequireAdmin(log)
	feedbackLimiter := commonhttp.NewRateLimiter(
		constants.RateLimitFeedbackRequestsPerSecond,
		constants.RateLimitFeedbackBurst,
	)

	// Public endpoints: anonymous feedback submission, rate limited per IP.
	publicMux := http.NewServeMux()
	feedbackhttp.NewHandler(feedbackSvc, log).RegisterPublicRoutes(publicMux)

	// Authenticated user endpoints.
	userMux := http.NewServeMux()
	subHandler := subhttp.NewHandler(subSvc, log)
	subHandler.RegisterUserRoutes(userMux)

	// Admin endpoints.
	adminMux := http.NewServeMux()
	adminhttp.NewHandler(adminSvc, log).RegisterRoutes(adminMux)
	subHandler.RegisterAdminRoutes(adminMux)
	feedbackhttp.NewHandler(feedbackSvc, log).RegisterAdminRoutes(adminMux)
	notifhttp.NewHandler(notifSvc, log).RegisterRoutes(adminMux)

	apiMux := http.NewServeMux()
	apiMux.Handle("/api/feedback", feedbackLimiter.Middleware("feedback")(optionalJwtMw(publicMux)))
	apiMux.Handle("/api/subscriptions", jwtMw(userMux))
	apiMux.Handle("/api/admin/", jwtMw(adminMw(adminMux)))

	generalLimiter := commonhttp.NewRateLimiter(
		constants.RateLimitGeneralRequestsPerSecond,
		constants.RateLimitGeneralBurst,
	)
	api := generalLimiter.Middleware("general")(
		commonhttp.MaxRequestSizeMiddleware(commonhttp.DefaultMaxRequestSize)(
			commonhttp.TimeoutMiddleware(cfg.RequestTimeout)(apiMux)))

	root := http.NewServeMux()
	root.Handle("/api/", httpmetrics.Wrap(api))
	root.HandleFunc("/health", commonhttp.HealthHandler(log))
	root.Handle("/metrics", promhttp.Handler())
	// The metrics wrapper cannot hijack, so the upgrade endpoint sits outside it.
	root.Handle("/ws", wsHandler)

	// Trace ID first so the recovery envelope can carry it.
	handler := commonhttp.TraceIDMiddleware(commonhttp.RecoveryMiddleware(log)(root))

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		IdleTimeout:       constants.ServerIdleTimeout,
	}

	server.StartWithGracefulShutdown(httpServer, log, "api", []server.ShutdownHook{
		func(ctx context.Context) error {
			hub.Shutdown()
			return nil
		},
	})
}
