package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lifehubhq/lifehub/internal/config"
	"github.com/lifehubhq/lifehub/internal/db"
	"github.com/lifehubhq/lifehub/internal/jobs"
	"github.com/lifehubhq/lifehub/internal/notifications"
	"github.com/lifehubhq/lifehub/internal/observability"
	"github.com/lifehubhq/lifehub/internal/queue/worker"
	"github.com/lifehubhq/lifehub/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	jobsRepo := postgres.NewJobsRepo(pool, nil)
	usersRepo := postgres.NewUsersRepo(pool)
	bizRepo := postgres.NewBizMetricsRepo(pool)
	deliveriesRepo := postgres.NewNotificationsDeliveriesRepo(pool)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(),
		notifications.ProtectedNotifierConfig{},
	)

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval:  250 * time.Millisecond,
		WorkerID:      workerID,
		Concurrency:   4,
		ShutdownGrace: 10 * time.Second,
	}, jobsRepo, log, observability.NewJobMetrics())

	w.Register(string(jobs.JobShareInvitation), worker.ShareInvitationHandler(usersRepo, deliveriesRepo, notifier))
	w.Register(string(jobs.JobMetricsDigest), worker.MetricsDigestHandler(usersRepo, bizRepo, deliveriesRepo, notifier))

	// health probes on a side port
	healthSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port+1),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if herr := healthSrv.ListenAndServe(); herr != nil && herr != http.ErrServerClosed {
			log.Error("worker health server failed", "err", herr)
		}
	}()

	log.Info("worker started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	hctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(hctx)

	log.Info("worker shutdown complete")
}
