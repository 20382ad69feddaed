package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lifehubhq/lifehub/internal/actorctx"
	"github.com/lifehubhq/lifehub/internal/domain/job"
)

func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {

	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.metrics != nil {
		w.metrics.IncClaimed()
	}

	start := time.Now()

	err = w.execute(ctx, j)

	if w.metrics != nil {
		w.metrics.ObserveDuration(time.Since(start))
	}

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	if w.metrics != nil {
		w.metrics.IncDone()
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	fn, ok := w.handlers[j.Type]

	if !ok {
		// nothing will ever process this type; retrying is pointless
		return errPermanent{fmt.Errorf("unknown job type %q", j.Type)}
	}

	// carry the job's account on the context so anything downstream
	// logs or scopes against the right user
	if j.UserID != nil {
		ctx = actorctx.WithUserID(ctx, *j.UserID)
	}

	return fn(ctx, j)
}

// errPermanent marks a failure that retries cannot fix.
type errPermanent struct {
	err error
}

func (e errPermanent) Error() string { return e.err.Error() }

func (e errPermanent) Unwrap() error { return e.err }

// Permanent wraps an error so handleFailure dead-letters instead of
// rescheduling.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return errPermanent{err}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) {
	var perm errPermanent

	exhausted := j.Attempts+1 >= j.MaxAttempts

	if errors.As(cause, &perm) || exhausted {
		if err := w.repo.MarkFailed(ctx, j.ID, cause.Error()); err != nil {
			w.log.Error("mark failed error", "err", err, "job_id", j.ID)
		}

		if w.metrics != nil {
			w.metrics.IncDeadLettered()
		}

		w.log.Error("job dead-lettered",
			"job_id", j.ID,
			"job_type", j.Type,
			"attempts", j.Attempts+1,
			"err", cause,
		)
		return
	}

	delay := ExponentialBackoff(j.Attempts)

	if err := w.repo.Reschedule(ctx, j.ID, time.Now().UTC().Add(delay), cause.Error()); err != nil {
		w.log.Error("reschedule error", "err", err, "job_id", j.ID)
		return
	}

	if w.metrics != nil {
		w.metrics.IncRetried()
	}

	w.log.Warn("job rescheduled",
		"job_id", j.ID,
		"job_type", j.Type,
		"attempts", j.Attempts+1,
		"delay", delay.String(),
		"err", cause,
	)
}
