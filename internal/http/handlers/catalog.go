package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lecture-studio/internal/http/response"
	"github.com/yungbote/lecture-studio/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/grades
func (h *CatalogHandler) ListGrades(c *gin.Context) {
	grades, err := h.catalog.ListGrades(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusBadGateway, "list_grades_failed", err)
		return
	}
	if grades == nil {
		grades = []services.GradeInfo{}
	}
	response.RespondOK(c, gin.H{"grades": grades})
}

// GET /api/grades/:grade/lectures
func (h *CatalogHandler) ListLectures(c *gin.Context) {
	lectures, err := h.catalog.ListLectures(c.Request.Context(), c.Param("grade"))
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, services.ErrInvalidGrade) {
			status = http.StatusBadRequest
		}
		response.RespondError(c, status, "list_lectures_failed", err)
		return
	}
	if lectures == nil {
		lectures = []services.LectureInfo{}
	}
	response.RespondOK(c, gin.H{"lectures": lectures})
}
