// File: internal/infra/worker/worker.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"omnimap-agent/internal/domain"
	"omnimap-agent/internal/domain/model"
	"omnimap-agent/internal/domain/ports/repository"
	"omnimap-agent/internal/infra/metrics"
)

// JobWorker drains the jobs table: fetch the oldest queued job of a known
// type, claim it with the conditional update, run its processor, record
// the terminal status. Multiple workers may run against the same table;
// the claim is the only synchronization between them.
type JobWorker struct {
	jobs       repository.JobRepository
	processors map[model.JobType]Processor
	types      []model.JobType
	poll       time.Duration
	log        *zerolog.Logger
}

func NewJobWorker(jobs repository.JobRepository, processors []Processor, poll time.Duration, logger *zerolog.Logger) *JobWorker {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	table := make(map[model.JobType]Processor, len(processors))
	types := make([]model.JobType, 0, len(processors))
	for _, p := range processors {
		table[p.Type()] = p
		types = append(types, p.Type())
	}
	wlog := logger.With().Str("component", "JobWorker").Logger()
	return &JobWorker{
		jobs:       jobs,
		processors: table,
		types:      types,
		poll:       poll,
		log:        &wlog,
	}
}

// Run polls until ctx is cancelled. When a job was processed it
// immediately looks for the next one; the poll interval only spaces out
// empty fetches.
func (w *JobWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("poll", w.poll).Int("types", len(w.types)).Msg("job worker started")
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("job worker stopping")
			return ctx.Err()
		case <-ticker.C:
			for w.ProcessOne(ctx) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}
		}
	}
}

// ProcessOne handles at most one job and reports whether it did any work.
// Exported for tests and for single-shot invocations.
func (w *JobWorker) ProcessOne(ctx context.Context) bool {
	job, err := w.jobs.FetchNextQueued(ctx, w.types)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			w.log.Error().Err(err).Msg("fetch queued job failed")
		}
		return false
	}

	claimed, err := w.jobs.Claim(ctx, job.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Another worker won the conditional update.
			metrics.IncClaimConflict()
			w.log.Debug().Str("job_id", job.ID).Msg("claim lost")
			return true
		}
		w.log.Error().Err(err).Str("job_id", job.ID).Msg("claim failed")
		return false
	}

	w.process(ctx, claimed)
	return true
}

func (w *JobWorker) process(ctx context.Context, job *model.Job) {
	log := w.log.With().Str("job_id", job.ID).Str("type", string(job.Type)).Logger()
	start := time.Now()

	outcome, procErr := w.dispatch(ctx, job)
	took := time.Since(start)
	metrics.ObserveJobDuration(string(job.Type), took.Seconds())

	patch := model.JobPatch{Status: model.JobStatusCompleted}
	if procErr != nil {
		patch = model.JobPatch{Status: model.JobStatusFailed, Error: procErr.Error()}
		log.Error().Err(procErr).Dur("took", took).Msg("job failed")
	} else {
		if outcome != nil {
			patch.Result = outcome.Result
		}
		log.Info().Dur("took", took).Msg("job completed")
	}
	metrics.IncJob(string(job.Type), string(patch.Status))

	// The terminal write must survive a cancelled worker context, otherwise
	// the job stays processing forever.
	bg := context.WithoutCancel(ctx)
	if err := w.jobs.Update(bg, nil, job.ID, patch); err != nil {
		log.Error().Err(err).Msg("terminal job update failed")
		return
	}

	// Follow-ups are enqueued strictly after the terminal write: a chained
	// job must never be observable while its parent is still processing.
	if procErr == nil && outcome != nil {
		w.enqueueFollowUps(bg, job, outcome.FollowUps, &log)
	}
}

func (w *JobWorker) enqueueFollowUps(ctx context.Context, parent *model.Job, followUps []*model.Job, log *zerolog.Logger) {
	for _, f := range followUps {
		if f == nil {
			continue
		}
		if f.ParentJobID == "" {
			f.ParentJobID = parent.ID
		}
		if err := w.jobs.Insert(ctx, nil, f); err != nil {
			// The parent already completed; the lost chain link is only
			// recoverable through the logs.
			log.Error().Err(err).Str("follow_up_type", string(f.Type)).Msg("follow-up enqueue failed")
			continue
		}
		log.Info().Str("follow_up_id", f.ID).Str("follow_up_type", string(f.Type)).Msg("follow-up job queued")
	}
}

func (w *JobWorker) dispatch(ctx context.Context, job *model.Job) (*Outcome, error) {
	p, ok := w.processors[job.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownJobType, job.Type)
	}
	return p.Process(ctx, job)
}
