package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lecture-studio/internal/domain"
	httpMW "github.com/yungbote/lecture-studio/internal/http/middleware"
	"github.com/yungbote/lecture-studio/internal/http/response"
	"github.com/yungbote/lecture-studio/internal/jobs/pipeline/lecture_build"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/render"
	"github.com/yungbote/lecture-studio/internal/modules/lecture/steps"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
	"github.com/yungbote/lecture-studio/internal/services"
)

const defaultMaxUploadBytes = 32 << 20

type LectureRunner interface {
	Start(req lecture_build.Request) uuid.UUID
	Current() (services.Run, bool)
	Result() (*lecture_build.Result, bool)
	PublishCurrent(ctx context.Context) (domain.PublishedLecture, error)
}

type RunHandler struct {
	log            *logger.Logger
	runs           LectureRunner
	maxUploadBytes int64
}

func NewRunHandler(log *logger.Logger, runs LectureRunner, maxUploadBytes int64) *RunHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &RunHandler{log: log.With("handler", "RunHandler"), runs: runs, maxUploadBytes: maxUploadBytes}
}

type startRunRequest struct {
	PlanURL string `json:"plan_url"`
	SeedURL string `json:"seed_url"`
}

// POST /api/runs
// Accepts JSON {plan_url, seed_url} or a multipart form with "plan" and optional "seed_image" files.
func (h *RunHandler) StartRun(c *gin.Context) {
	var (
		req lecture_build.Request
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, err = h.readMultipart(c)
	} else {
		var body startRunRequest
		if bindErr := c.ShouldBindJSON(&body); bindErr != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", bindErr)
			return
		}
		req = lecture_build.Request{
			Plan: steps.Source{URL: strings.TrimSpace(body.PlanURL)},
			Seed: steps.Source{URL: strings.TrimSpace(body.SeedURL)},
		}
	}
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_upload", err)
		return
	}
	if req.Plan.Empty() {
		response.RespondError(c, http.StatusBadRequest, "missing_plan", errors.New("a plan file or plan_url is required"))
		return
	}
	if len(req.Plan.Document) > 0 {
		if _, err := steps.ParsePlan(req.Plan.String(), req.Plan.Document); err != nil {
			response.RespondDomainError(c, err)
			return
		}
	}

	runID := h.runs.Start(req)
	httpMW.StampRunID(c, runID)
	h.log.Info("lecture run started", "run_id", runID.String(), "plan", req.Plan.String())
	response.RespondAccepted(c, gin.H{"run_id": runID})
}

func (h *RunHandler) readMultipart(c *gin.Context) (lecture_build.Request, error) {
	var req lecture_build.Request
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		return req, err
	}
	if req.Plan.Document, err = formFile(form, "plan"); err != nil {
		return req, err
	}
	if req.Seed.Document, err = formFile(form, "seed_image"); err != nil {
		return req, err
	}
	if len(req.Plan.Document) == 0 {
		req.Plan.URL = formValue(form, "plan_url")
	}
	if len(req.Seed.Document) == 0 {
		req.Seed.URL = formValue(form, "seed_url")
	}
	return req, nil
}

func formFile(form *multipart.Form, field string) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return b, nil
}

func formValue(form *multipart.Form, field string) string {
	if v := form.Value[field]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// GET /api/runs/current
func (h *RunHandler) CurrentRun(c *gin.Context) {
	run, ok := h.runs.Current()
	if !ok {
		response.RespondError(c, http.StatusNotFound, "no_run", errors.New("no lecture run yet"))
		return
	}
	httpMW.StampRunID(c, run.ID)
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/runs/current/slides/:index?nav=next|prev
// The preview cursor clamps at both ends.
func (h *RunHandler) Slide(c *gin.Context) {
	res, ok := h.runs.Result()
	if !ok {
		response.RespondError(c, http.StatusConflict, "not_ready", errors.New("the current run has no bundle yet"))
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_index", err)
		return
	}
	deck := render.Deck(res.Plan, res.Assets)
	cur := render.NewCursor(len(deck)).Seek(idx)
	switch c.Query("nav") {
	case "next":
		cur = cur.Next()
	case "prev":
		cur = cur.Prev()
	}
	response.RespondOK(c, gin.H{
		"index": cur.Index,
		"total": cur.Total,
		"slide": deck[cur.Index],
	})
}

// POST /api/runs/current/publish
func (h *RunHandler) Publish(c *gin.Context) {
	res, ok := h.runs.Result()
	if !ok {
		response.RespondError(c, http.StatusConflict, "not_ready", errors.New("the current run has no bundle yet"))
		return
	}
	httpMW.StampRunID(c, res.RunID)
	pub, err := h.runs.PublishCurrent(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": pub})
}
