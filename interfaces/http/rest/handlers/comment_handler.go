package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	pkgerrors "forum-api/pkg/errors"
)

// CommentHandler handles comment and reply HTTP requests
type CommentHandler struct {
	forum Forum
	errs  *pkgerrors.ErrorHandler
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(forum Forum, errs *pkgerrors.ErrorHandler) *CommentHandler {
	return &CommentHandler{forum: forum, errs: errs}
}

// GetComment handles GET /comments/{commentID}
func (h *CommentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.forum.GetCommentByID(r.Context(), chi.URLParam(r, "commentID"))
	respond(w, r, h.errs, http.StatusOK, comment, err)
}

// ListReplies handles GET /comments/{commentID}/replies
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	replies, err := h.forum.GetRepliesByComment(r.Context(), chi.URLParam(r, "commentID"))
	respond(w, r, h.errs, http.StatusOK, replies, err)
}

// CreateReply handles POST /comments/{commentID}/replies
func (h *CommentHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	var req CreateTextRequest
	if err := decode(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	reply, err := h.forum.CreateReply(r.Context(), chi.URLParam(r, "commentID"), req.Text)
	respond(w, r, h.errs, http.StatusCreated, reply, err)
}

// LikeComment handles POST /comments/{commentID}/likes
func (h *CommentHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.forum.LikeComment(r.Context(), chi.URLParam(r, "commentID"))
	respond(w, r, h.errs, http.StatusOK, comment, err)
}

// UnlikeComment handles DELETE /comments/{commentID}/likes
func (h *CommentHandler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.forum.UnlikeComment(r.Context(), chi.URLParam(r, "commentID"))
	respond(w, r, h.errs, http.StatusOK, comment, err)
}

// GetReply handles GET /replies/{replyID}
func (h *CommentHandler) GetReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.forum.GetReplyByID(r.Context(), chi.URLParam(r, "replyID"))
	respond(w, r, h.errs, http.StatusOK, reply, err)
}

// LikeReply handles POST /replies/{replyID}/likes
func (h *CommentHandler) LikeReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.forum.LikeReply(r.Context(), chi.URLParam(r, "replyID"))
	respond(w, r, h.errs, http.StatusOK, reply, err)
}

// UnlikeReply handles DELETE /replies/{replyID}/likes
func (h *CommentHandler) UnlikeReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.forum.UnlikeReply(r.Context(), chi.URLParam(r, "replyID"))
	respond(w, r, h.errs, http.StatusOK, reply, err)
}
