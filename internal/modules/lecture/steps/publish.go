package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/render"
	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/platform/slug"
	"github.com/yungbote/lecture-studio/internal/services"
)

const ungradedFolder = "ungraded"

type PublishDeps struct {
	Log   *logger.Logger
	Store blobstore.Store
	// Covers and Catalog are optional.
	Covers  services.CoverService
	Catalog services.CatalogService
}

type PublishInput struct {
	Plan   *domain.LecturePlan
	Assets *domain.GeneratedAssets
	// Slug is the run's media slug. Empty derives one from the plan, which is only stable for titled plans.
	Slug string
}

// MediaSlug names a run's uploaded media. Compute it once per run and reuse it.
func MediaSlug(plan domain.LecturePlan) string {
	return slug.Make(plan.UnitTitle)
}

// LectureLocation is where a run's deck and cover are published.
type LectureLocation struct {
	Grade string
	ID    string
}

// Locate uses the explicit lecture id when it slugs to something, otherwise the run's media slug.
// A grade that is empty or slugs to nothing publishes under "ungraded".
func Locate(plan domain.LecturePlan, mediaSlug string) LectureLocation {
	loc := LectureLocation{Grade: slug.Clean(plan.Grade.String()), ID: slug.Clean(plan.LectureID)}
	if loc.Grade == "" {
		loc.Grade = ungradedFolder
	}
	if loc.ID == "" {
		loc.ID = mediaSlug
	}
	return loc
}

func (l LectureLocation) LecturePath() string {
	return fmt.Sprintf("lectures/%s/%s.html", l.Grade, l.ID)
}

func (l LectureLocation) CoverPath() string {
	return fmt.Sprintf("covers/%s/%s.png", l.Grade, l.ID)
}

// PublishLecture renders and uploads the lecture deck. Missing plan or assets is a no-op.
// Republishing the same plan overwrites the same path.
func PublishLecture(ctx context.Context, deps PublishDeps, in PublishInput) (domain.PublishedLecture, error) {
	var out domain.PublishedLecture
	if in.Plan == nil || in.Assets == nil {
		return out, nil
	}
	mediaSlug := strings.TrimSpace(in.Slug)
	if mediaSlug == "" {
		mediaSlug = MediaSlug(*in.Plan)
	}
	loc := Locate(*in.Plan, mediaSlug)
	path := loc.LecturePath()
	if deps.Store == nil {
		return out, &domain.PublishError{Path: path, Err: errors.New("blob store required")}
	}

	html, err := render.Lecture(*in.Plan, in.Assets)
	if err != nil {
		return out, &domain.PublishError{Path: path, Err: err}
	}

	if deps.Covers != nil {
		out.CoverURL = uploadCover(ctx, deps, *in.Plan, loc.CoverPath())
	}

	url, err := deps.Store.Upload(ctx, path, "text/html; charset=utf-8", bytes.NewReader(html))
	if err != nil {
		return domain.PublishedLecture{}, &domain.PublishError{Path: path, Err: err}
	}
	out.Path = path
	out.URL = url

	if deps.Catalog != nil {
		if err := deps.Catalog.Record(ctx, *in.Plan, in.Assets, out); err != nil && deps.Log != nil {
			deps.Log.Warn("catalog record failed", "path", path, "error", err)
		}
	}
	return out, nil
}

// uploadCover is best effort; a failed cover leaves CoverURL empty.
func uploadCover(ctx context.Context, deps PublishDeps, plan domain.LecturePlan, key string) string {
	buf, err := deps.Covers.Render(plan)
	if err == nil {
		var url string
		url, err = deps.Store.Upload(ctx, key, "image/png", &buf)
		if err == nil {
			return url
		}
	}
	if deps.Log != nil {
		deps.Log.Warn("cover upload failed", "path", key, "error", err)
	}
	return ""
}
