package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	pkgerrors "forum-api/pkg/errors"
)

// TopicHandler handles topic HTTP requests
type TopicHandler struct {
	forum  Forum
	errs   *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(forum Forum, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *TopicHandler {
	return &TopicHandler{
		forum:  forum,
		errs:   errs,
		logger: logger,
	}
}

// CreateTopicRequest represents the request body for creating a topic
type CreateTopicRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
}

// UpdateTopicRequest represents the request body for updating a topic
type UpdateTopicRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
}

// CreateTextRequest carries the text of a new comment or reply
type CreateTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// ListTopics handles GET /topics
func (h *TopicHandler) ListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.forum.ListTopics(r.Context())
	respond(w, r, h.errs, http.StatusOK, topics, err)
}

// GetTopic handles GET /topics/{topicID}
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	topic, err := h.forum.GetTopicByID(r.Context(), chi.URLParam(r, "topicID"))
	respond(w, r, h.errs, http.StatusOK, topic, err)
}

// GetTopicBySlug handles GET /topics/slug/{slug}
func (h *TopicHandler) GetTopicBySlug(w http.ResponseWriter, r *http.Request) {
	topic, err := h.forum.GetTopicBySlug(r.Context(), chi.URLParam(r, "slug"))
	respond(w, r, h.errs, http.StatusOK, topic, err)
}

// CreateTopic handles POST /courses/{courseID}/topics
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	var req CreateTopicRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	topic, err := h.forum.CreateTopic(r.Context(), chi.URLParam(r, "courseID"), req.Title, req.Description)
	if err == nil {
		h.logger.Info("Topic created", zap.String("topicID", topic.ID), zap.String("courseID", chi.URLParam(r, "courseID")))
	}
	respond(w, r, h.errs, http.StatusCreated, topic, err)
}

// UpdateTopic handles PATCH /topics/{topicID}
func (h *TopicHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	var req UpdateTopicRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	topic, err := h.forum.UpdateTopic(r.Context(), chi.URLParam(r, "topicID"), req.Title, req.Description)
	respond(w, r, h.errs, http.StatusOK, topic, err)
}

// IncrementViews handles POST /topics/{topicID}/views
func (h *TopicHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	topic, err := h.forum.IncrementTopicViews(r.Context(), chi.URLParam(r, "topicID"))
	respond(w, r, h.errs, http.StatusOK, topic, err)
}

// ListComments handles GET /topics/{topicID}/comments
func (h *TopicHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.forum.GetCommentsByTopic(r.Context(), chi.URLParam(r, "topicID"))
	respond(w, r, h.errs, http.StatusOK, comments, err)
}

// CreateComment handles POST /topics/{topicID}/comments
func (h *TopicHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateTextRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	comment, err := h.forum.CreateComment(r.Context(), chi.URLParam(r, "topicID"), req.Text)
	respond(w, r, h.errs, http.StatusCreated, comment, err)
}
