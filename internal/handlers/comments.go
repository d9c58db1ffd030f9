package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bloghub/internal/middleware"
	"bloghub/internal/service"
)

// Comments groups the comment handlers.
type Comments struct {
	svc *service.CommentService
	log *zap.Logger
}

// NewComments creates a new Comments handler group.
func NewComments(svc *service.CommentService, log *zap.Logger) *Comments {
	return &Comments{svc: svc, log: log}
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
	PostID  string `json:"postId" validate:"required,uuid"`
}

type commentUpdateRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// Create handles POST /api/comments.
func (c *Comments) Create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, c.log, err)
		return
	}

	comment, err := c.svc.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), uuid.MustParse(req.PostID), req.Content)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeData(w, http.StatusCreated, comment)
}

// ListForPost handles GET /api/comments/post/{postId}.
func (c *Comments) ListForPost(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "postId", "Post")
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	comments, err := c.svc.ListForPost(r.Context(), postID)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeData(w, http.StatusOK, comments)
}

// Update handles PUT /api/comments/{id}.
func (c *Comments) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Comment")
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	var req commentUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, c.log, err)
		return
	}

	comment, err := c.svc.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, req.Content)
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeData(w, http.StatusOK, comment)
}

// Delete handles DELETE /api/comments/{id}.
func (c *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Comment")
	if err != nil {
		writeError(w, r, c.log, err)
		return
	}
	if err := c.svc.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, c.log, err)
		return
	}
	writeMessage(w, "Comment deleted successfully")
}
