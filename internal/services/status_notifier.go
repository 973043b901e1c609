package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/clients/redis"
	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/sse"
)

// StatusNotifier receives run lifecycle events. Implementations must not block.
type StatusNotifier interface {
	RunStarted(ctx context.Context, runID uuid.UUID, plan domain.LecturePlan)
	RunStatus(ctx context.Context, runID uuid.UUID, status domain.GenerationStatus)
	RunReady(ctx context.Context, runID uuid.UUID, assets *domain.GeneratedAssets)
	LecturePublished(ctx context.Context, runID uuid.UUID, pub domain.PublishedLecture)
}

type sseStatusNotifier struct {
	log *logger.Logger
	hub *sse.SSEHub
	bus redis.SSEBus
}

// NewSSEStatusNotifier broadcasts on the run channel. With a bus, messages go through
// redis and reach the hub via the bus forwarder.
func NewSSEStatusNotifier(log *logger.Logger, hub *sse.SSEHub, bus redis.SSEBus) StatusNotifier {
	return &sseStatusNotifier{log: log.With("service", "SSEStatusNotifier"), hub: hub, bus: bus}
}

func (n *sseStatusNotifier) send(ctx context.Context, event sse.SSEEvent, data map[string]any) {
	msg := sse.SSEMessage{Channel: sse.RunChannel, Event: event, Data: data}
	if n.bus != nil {
		err := n.bus.Publish(context.WithoutCancel(ctx), msg)
		if err == nil {
			return
		}
		n.log.Warn("redis publish failed; broadcasting locally", "event", event, "error", err)
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}

func (n *sseStatusNotifier) RunStarted(ctx context.Context, runID uuid.UUID, plan domain.LecturePlan) {
	n.send(ctx, sse.SSEEventRunStarted, map[string]any{
		"run_id":     runID,
		"unit_title": plan.UnitTitle,
		"grade":      plan.Grade,
		"topics":     plan.TopicCount(),
	})
}

func (n *sseStatusNotifier) RunStatus(ctx context.Context, runID uuid.UUID, status domain.GenerationStatus) {
	event := sse.SSEEventRunStatus
	if status.Stage == domain.StageError {
		event = sse.SSEEventRunFailed
	}
	n.send(ctx, event, map[string]any{
		"run_id":  runID,
		"stage":   status.Stage,
		"message": status.Message,
	})
}

func (n *sseStatusNotifier) RunReady(ctx context.Context, runID uuid.UUID, assets *domain.GeneratedAssets) {
	n.send(ctx, sse.SSEEventRunReady, map[string]any{
		"run_id": runID,
		"assets": assets,
	})
}

func (n *sseStatusNotifier) LecturePublished(ctx context.Context, runID uuid.UUID, pub domain.PublishedLecture) {
	n.send(ctx, sse.SSEEventLecturePublished, map[string]any{
		"run_id":    runID,
		"path":      pub.Path,
		"url":       pub.URL,
		"cover_url": pub.CoverURL,
	})
}

type logStatusNotifier struct {
	log *logger.Logger
}

func NewLogStatusNotifier(log *logger.Logger) StatusNotifier {
	return &logStatusNotifier{log: log.With("service", "RunStatus")}
}

func (n *logStatusNotifier) RunStarted(_ context.Context, runID uuid.UUID, plan domain.LecturePlan) {
	n.log.Info("run started", "run_id", runID, "unit_title", plan.UnitTitle, "topics", plan.TopicCount())
}

func (n *logStatusNotifier) RunStatus(_ context.Context, runID uuid.UUID, status domain.GenerationStatus) {
	if status.Stage == domain.StageError {
		n.log.Error("run failed", "run_id", runID, "message", status.Message)
		return
	}
	n.log.Info(status.Message, "run_id", runID, "stage", status.Stage)
}

func (n *logStatusNotifier) RunReady(_ context.Context, runID uuid.UUID, assets *domain.GeneratedAssets) {
	n.log.Info("run ready", "run_id", runID, "video_url", assets.VideoURL, "audio", len(assets.AudioURLs))
}

func (n *logStatusNotifier) LecturePublished(_ context.Context, runID uuid.UUID, pub domain.PublishedLecture) {
	n.log.Info("lecture published", "run_id", runID, "path", pub.Path, "url", pub.URL)
}

// MultiNotifier fans every event out to each notifier in order.
type MultiNotifier []StatusNotifier

func (m MultiNotifier) RunStarted(ctx context.Context, runID uuid.UUID, plan domain.LecturePlan) {
	for _, n := range m {
		n.RunStarted(ctx, runID, plan)
	}
}

func (m MultiNotifier) RunStatus(ctx context.Context, runID uuid.UUID, status domain.GenerationStatus) {
	for _, n := range m {
		n.RunStatus(ctx, runID, status)
	}
}

func (m MultiNotifier) RunReady(ctx context.Context, runID uuid.UUID, assets *domain.GeneratedAssets) {
	for _, n := range m {
		n.RunReady(ctx, runID, assets)
	}
}

func (m MultiNotifier) LecturePublished(ctx context.Context, runID uuid.UUID, pub domain.PublishedLecture) {
	for _, n := range m {
		n.LecturePublished(ctx, runID, pub)
	}
}
