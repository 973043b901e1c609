package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
)

// Run is a snapshot of one generation run.
type Run struct {
	ID        uuid.UUID                `json:"id"`
	StartedAt time.Time                `json:"started_at"`
	Plan      domain.LecturePlan       `json:"plan"`
	Slug      string                   `json:"slug,omitempty"`
	Status    domain.GenerationStatus  `json:"status"`
	Assets    *domain.GeneratedAssets  `json:"assets,omitempty"`
	Published *domain.PublishedLecture `json:"published,omitempty"`
}

// RunTracker holds the operator's current run. Beginning a run supersedes the previous one;
// updates addressed to a superseded run are dropped.
type RunTracker struct {
	mu      sync.RWMutex
	current *Run
	now     func() time.Time
}

func NewRunTracker() *RunTracker {
	return &RunTracker{now: time.Now}
}

// Begin starts a new run. Its plan is filled in once loaded.
func (t *RunTracker) Begin() uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := uuid.New()
	t.current = &Run{ID: id, StartedAt: t.now(), Status: domain.StatusLoadingPlan}
	return id
}

func (t *RunTracker) IsCurrent(id uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current != nil && t.current.ID == id
}

// Update applies fn to the run when id is still current and reports whether it did.
func (t *RunTracker) Update(id uuid.UUID, fn func(r *Run)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil || t.current.ID != id {
		return false
	}
	fn(t.current)
	return true
}

func (t *RunTracker) Current() (Run, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return Run{}, false
	}
	return *t.current, true
}

// trackingNotifier records events on the tracker and forwards them only for the current run.
type trackingNotifier struct {
	tracker *RunTracker
	next    StatusNotifier
}

func NewTrackingNotifier(tracker *RunTracker, next StatusNotifier) StatusNotifier {
	return &trackingNotifier{tracker: tracker, next: next}
}

func (n *trackingNotifier) RunStarted(ctx context.Context, runID uuid.UUID, plan domain.LecturePlan) {
	if n.tracker.Update(runID, func(r *Run) { r.Plan = plan }) {
		n.next.RunStarted(ctx, runID, plan)
	}
}

func (n *trackingNotifier) RunStatus(ctx context.Context, runID uuid.UUID, status domain.GenerationStatus) {
	if n.tracker.Update(runID, func(r *Run) { r.Status = status }) {
		n.next.RunStatus(ctx, runID, status)
	}
}

func (n *trackingNotifier) RunReady(ctx context.Context, runID uuid.UUID, assets *domain.GeneratedAssets) {
	if n.tracker.Update(runID, func(r *Run) { r.Assets = assets }) {
		n.next.RunReady(ctx, runID, assets)
	}
}

func (n *trackingNotifier) LecturePublished(ctx context.Context, runID uuid.UUID, pub domain.PublishedLecture) {
	if n.tracker.Update(runID, func(r *Run) { r.Published = &pub }) {
		n.next.LecturePublished(ctx, runID, pub)
	}
}
