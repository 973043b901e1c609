package lecture_build

import (
	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/steps"
	"github.com/yungbote/lecture-studio/internal/platform/credentials"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
)

const MissingKeyMessage = "Please select an API key before generating the lecture."

type State string

const (
	StateStarted              State = "started"
	StatePlanLoaded           State = "plan_loaded"
	StateContextualImageReady State = "contextual_image_ready"
	StateMediaGenerated       State = "media_generated"
	StateMediaUploaded        State = "media_uploaded"
	StateBundleReady          State = "bundle_ready"
	StateFailed               State = "failed"
)

type Deps struct {
	Plans       steps.LoadPlanDeps
	Media       steps.GenerateMediaDeps
	Upload      steps.UploadMediaDeps
	Publish     steps.PublishDeps
	Credentials credentials.Provider
}

type Config struct {
	Illustrate    bool
	QuizQuestions int
	MaxSeedSide   int
}

type Request struct {
	Plan steps.Source
	Seed steps.Source
}

// Result is what a finished run leaves behind. Assets is nil unless State is StateBundleReady.
type Result struct {
	RunID   uuid.UUID
	State   State
	History []State
	Plan    domain.LecturePlan
	Slug    string
	Media   *steps.GeneratedMedia
	Assets  *domain.GeneratedAssets
}

func (r *Result) advance(s State) {
	r.State = s
	r.History = append(r.History, s)
}

type Pipeline struct {
	log    *logger.Logger
	deps   Deps
	notify services.StatusNotifier
	cfg    Config
}

func New(baseLog *logger.Logger, deps Deps, notify services.StatusNotifier, cfg Config) *Pipeline {
	if cfg.QuizQuestions <= 0 {
		cfg.QuizQuestions = services.DefaultQuizQuestions
	}
	if cfg.MaxSeedSide <= 0 {
		cfg.MaxSeedSide = services.DefaultSeedMaxSide
	}
	if notify == nil {
		notify = services.NewLogStatusNotifier(baseLog)
	}
	return &Pipeline{
		log:    baseLog.With("job", "lecture_build"),
		deps:   deps,
		notify: notify,
		cfg:    cfg,
	}
}

func (p *Pipeline) Type() string { return "lecture_build" }
