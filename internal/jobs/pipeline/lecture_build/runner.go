package lecture_build

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
)

// Runner owns the operator's current run. Starting a run supersedes the previous one; the old
// run keeps going but its result is discarded.
type Runner struct {
	log      *logger.Logger
	pipeline *Pipeline
	tracker  *services.RunTracker
	baseCtx  context.Context

	mu     sync.Mutex
	result *Result
	wg     sync.WaitGroup
}

// NewRunner runs background builds under baseCtx, which should only end at shutdown.
func NewRunner(baseCtx context.Context, baseLog *logger.Logger, pipeline *Pipeline, tracker *services.RunTracker) *Runner {
	return &Runner{
		log:      baseLog.With("component", "LectureRunner"),
		pipeline: pipeline,
		tracker:  tracker,
		baseCtx:  baseCtx,
	}
}

// Start begins a run in the background and returns its id.
func (r *Runner) Start(req Request) uuid.UUID {
	id := r.begin()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("lecture build panic", "run_id", id.String(), "panic", rec)
			}
		}()
		r.execute(r.baseCtx, id, req)
	}()
	return id
}

// Run executes a run on the calling goroutine.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	return r.execute(ctx, r.begin(), req)
}

func (r *Runner) begin() uuid.UUID {
	id := r.tracker.Begin()
	r.mu.Lock()
	r.result = nil
	r.mu.Unlock()
	return id
}

func (r *Runner) execute(ctx context.Context, id uuid.UUID, req Request) (*Result, error) {
	res, err := r.pipeline.Run(ctx, id, req)
	if res != nil {
		r.tracker.Update(id, func(run *services.Run) { run.Slug = res.Slug })
	}
	if err != nil {
		return res, err
	}
	r.mu.Lock()
	if r.tracker.IsCurrent(id) {
		r.result = res
	}
	r.mu.Unlock()
	return res, nil
}

// Result returns the bundle of the current run once it is ready.
func (r *Runner) Result() (*Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil || !r.tracker.IsCurrent(r.result.RunID) {
		return nil, false
	}
	return r.result, true
}

func (r *Runner) Current() (services.Run, bool) {
	return r.tracker.Current()
}

// PublishCurrent publishes the current run. Nothing happens until its bundle is ready.
func (r *Runner) PublishCurrent(ctx context.Context) (domain.PublishedLecture, error) {
	res, ok := r.Result()
	if !ok {
		return domain.PublishedLecture{}, nil
	}
	return r.pipeline.Publish(ctx, res.RunID, res)
}

// Wait blocks until background runs return.
func (r *Runner) Wait() {
	r.wg.Wait()
}
