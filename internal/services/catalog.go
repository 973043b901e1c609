package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/datatypes"

	"github.com/yungbote/lecture-studio/internal/data/repos/lectures"
	"github.com/yungbote/lecture-studio/internal/domain"
	"github.com/yungbote/lecture-studio/internal/pkg/dbctx"
	"github.com/yungbote/lecture-studio/internal/platform/blobstore"
	"github.com/yungbote/lecture-studio/internal/platform/logger"
)

// LecturesPrefix is the storage folder holding one sub-folder per grade.
const LecturesPrefix = "lectures/"

// ErrInvalidGrade rejects grade folders that are empty or escape the lectures prefix.
var ErrInvalidGrade = errors.New("invalid grade folder")

type GradeInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type LectureInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	CoverURL string `json:"cover_url,omitempty"`
}

type CatalogService interface {
	ListGrades(ctx context.Context) ([]GradeInfo, error)
	ListLectures(ctx context.Context, grade string) ([]LectureInfo, error)
	// Record stores a catalog row for a published lecture. It is a no-op without a database.
	Record(ctx context.Context, plan domain.LecturePlan, assets *domain.GeneratedAssets, pub domain.PublishedLecture) error
}

type catalogService struct {
	log   *logger.Logger
	store blobstore.Store
	repo  lectures.LectureRecordRepo
}

// NewCatalogService lists from repo when given one, otherwise from the storage folder layout.
func NewCatalogService(log *logger.Logger, store blobstore.Store, repo lectures.LectureRecordRepo) (CatalogService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil && repo == nil {
		return nil, fmt.Errorf("blob store or lecture repo required")
	}
	return &catalogService{log: log.With("service", "CatalogService"), store: store, repo: repo}, nil
}

// FormatTitle turns a storage name like "photosynthesis-basics.html" into "Photosynthesis Basics".
// Hidden names return "".
func FormatTitle(name string) string {
	base := name
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if strings.HasPrefix(base, ".") {
		return ""
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	words := strings.Split(base, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// GradeDisplayName formats a grade folder; bare numbers read as "Grade N".
func GradeDisplayName(folder string) string {
	if _, err := strconv.Atoi(folder); err == nil {
		return "Grade " + folder
	}
	return FormatTitle(folder)
}

// naturalLess compares strings with embedded digit runs ordered numerically.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, ra := leadingDigits(a)
			nb, rb := leadingDigits(b)
			ia := strings.TrimLeft(na, "0")
			ib := strings.TrimLeft(nb, "0")
			if len(ia) != len(ib) {
				return len(ia) < len(ib)
			}
			if ia != ib {
				return ia < ib
			}
			a, b = ra, rb
			continue
		}
		la, lb := unicode.ToLower(rune(ca)), unicode.ToLower(rune(cb))
		if la != lb {
			return la < lb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func (s *catalogService) ListGrades(ctx context.Context) ([]GradeInfo, error) {
	var folders []string
	if s.repo != nil {
		grades, err := s.repo.ListGrades(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, fmt.Errorf("list grades: %w", err)
		}
		folders = grades
	} else {
		entries, err := s.store.List(ctx, LecturesPrefix)
		if err != nil {
			return nil, fmt.Errorf("list grades: %w", err)
		}
		for _, e := range entries {
			if !e.Prefix {
				continue
			}
			folders = append(folders, path.Base(strings.TrimSuffix(e.Key, "/")))
		}
	}

	out := make([]GradeInfo, 0, len(folders))
	for _, f := range folders {
		name := GradeDisplayName(f)
		if name == "" {
			continue
		}
		out = append(out, GradeInfo{ID: f, Name: name})
	}
	sort.SliceStable(out, func(i, j int) bool { return naturalLess(out[i].Name, out[j].Name) })
	return out, nil
}

func (s *catalogService) ListLectures(ctx context.Context, grade string) ([]LectureInfo, error) {
	grade = strings.Trim(strings.TrimSpace(grade), "/")
	if grade == "" || strings.Contains(grade, "/") || grade == ".." {
		return nil, fmt.Errorf("%w %q", ErrInvalidGrade, grade)
	}

	var out []LectureInfo
	if s.repo != nil {
		recs, err := s.repo.ListByGrade(dbctx.Context{Ctx: ctx}, grade)
		if err != nil {
			return nil, fmt.Errorf("list lectures for grade %s: %w", grade, err)
		}
		for _, r := range recs {
			title := r.Title
			if title == "" {
				title = FormatTitle(path.Base(r.Path))
			}
			out = append(out, LectureInfo{ID: r.Path, Title: title, URL: r.URL, CoverURL: r.CoverURL})
		}
	} else {
		entries, err := s.store.List(ctx, LecturesPrefix+grade+"/")
		if err != nil {
			return nil, fmt.Errorf("list lectures for grade %s: %w", grade, err)
		}
		for _, e := range entries {
			if e.Prefix || !strings.HasSuffix(strings.ToLower(e.Key), ".html") {
				continue
			}
			title := FormatTitle(path.Base(e.Key))
			if title == "" {
				continue
			}
			out = append(out, LectureInfo{ID: e.Key, Title: title, URL: s.store.PublicURL(e.Key)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (s *catalogService) Record(ctx context.Context, plan domain.LecturePlan, assets *domain.GeneratedAssets, pub domain.PublishedLecture) error {
	if s.repo == nil || pub.Path == "" {
		return nil
	}
	grade := path.Base(path.Dir(pub.Path))
	rec := &domain.LectureRecord{
		Path:       pub.Path,
		Grade:      grade,
		Slug:       strings.TrimSuffix(path.Base(pub.Path), ".html"),
		Title:      plan.UnitTitle,
		URL:        pub.URL,
		CoverURL:   pub.CoverURL,
		TopicCount: plan.TopicCount(),
	}
	if assets != nil {
		rec.QuestionCount = len(assets.Quiz.Questions)
		issues := assets.Quiz.Issues()
		if issues == nil {
			issues = []int{}
		}
		summary, err := json.Marshal(map[string]any{"questions": rec.QuestionCount, "issues": issues})
		if err != nil {
			return fmt.Errorf("quiz summary: %w", err)
		}
		rec.QuizSummary = datatypes.JSON(summary)
	}
	if _, err := s.repo.Upsert(dbctx.Context{Ctx: ctx}, rec); err != nil {
		return fmt.Errorf("record lecture %s: %w", pub.Path, err)
	}
	s.log.Debug("catalog record stored", "path", pub.Path)
	return nil
}
