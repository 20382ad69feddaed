package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehubhq/lifehub/internal/domain/job"
	"github.com/lifehubhq/lifehub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

// HandlerFunc executes one claimed job. A nil error acks the job; an
// error reschedules it with backoff until attempts run out.
type HandlerFunc func(ctx context.Context, j job.Job) error

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
	LockTTL       time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	log      *slog.Logger
	metrics  *observability.JobMetrics
	handlers map[string]HandlerFunc

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, log *slog.Logger, metrics *observability.JobMetrics) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}

	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		log:      log,
		metrics:  metrics,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register binds a job type to its handler. Must happen before Run.
func (w *Worker) Register(jobType string, fn HandlerFunc) {
	w.handlers[jobType] = fn
}

func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}

	// janitor: jobs whose worker died mid-flight go back to pending
	wg.Add(1)

	go func() {
		defer wg.Done()
		w.janitor(ctx)
	}()

	<-ctx.Done()
	w.log.Info("worker shutting down", "worker_id", w.cfg.WorkerID)

	done := make(chan struct{})

	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil

	case <-time.After(w.cfg.ShutdownGrace):
		w.log.Error("worker shutdown grace exceeded", "worker_id", w.cfg.WorkerID)
		return context.DeadlineExceeded
	}
}

func (w *Worker) loop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		processed, err := w.ProcessOne(ctx)

		if err != nil {
			w.log.Error("worker step failed", "err", err, "worker_id", w.cfg.WorkerID)
		}

		if processed {
			// drain the queue before sleeping again
			continue
		}

		select {
		case <-ctx.Done():
			return

		case <-time.After(w.cfg.PollInterval):
		}
	}
}

func (w *Worker) janitor(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil {
				w.log.Error("requeue stale failed", "err", err)
				continue
			}

			if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
