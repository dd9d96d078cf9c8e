package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"forum-api/pkg/common"
	pkgerrors "forum-api/pkg/errors"
)

// CourseHandler handles course HTTP requests
type CourseHandler struct {
	forum  Forum
	errs   *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(forum Forum, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		forum:  forum,
		errs:   errs,
		logger: logger,
	}
}

// ListCourses handles GET /courses?first&after&last&before
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	page, err := common.ExtractCursorParams(r)
	if err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}
	courses, err := h.forum.GetAllCourses(r.Context(), page)
	respond(w, r, h.errs, http.StatusOK, courses, err)
}

// GetCourse handles GET /courses/{courseID}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.forum.GetCourseByID(r.Context(), chi.URLParam(r, "courseID"))
	respond(w, r, h.errs, http.StatusOK, course, err)
}

// GetCourseBySlug handles GET /courses/slug/{slug}
func (h *CourseHandler) GetCourseBySlug(w http.ResponseWriter, r *http.Request) {
	course, err := h.forum.GetCourseBySlug(r.Context(), chi.URLParam(r, "slug"))
	respond(w, r, h.errs, http.StatusOK, course, err)
}

// ListTopics handles GET /courses/{courseID}/topics?first&after&last&before
func (h *CourseHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	page, err := common.ExtractCursorParams(r)
	if err != nil {
		h.errs.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}
	topics, err := h.forum.GetTopicsByCourse(r.Context(), chi.URLParam(r, "courseID"), page)
	respond(w, r, h.errs, http.StatusOK, topics, err)
}
