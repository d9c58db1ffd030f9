// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bloghub/internal/middleware"
	"bloghub/internal/models"
	"bloghub/internal/service"
)

// Posts groups the post handlers.
type Posts struct {
	svc *service.PostService
	log *zap.Logger
}

// NewPosts creates a new Posts handler group.
func NewPosts(svc *service.PostService, log *zap.Logger) *Posts {
	return &Posts{svc: svc, log: log}
}

type postRequest struct {
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content" validate:"required,max=100000"`
	Excerpt  string `json:"excerpt" validate:"max=1000"`
	Category string `json:"category" validate:"required,max=100"`
}

type postUpdateRequest struct {
	Title    *string `json:"title" validate:"omitnil,min=1,max=300"`
	Content  *string `json:"content" validate:"omitnil,min=1,max=100000"`
	Excerpt  *string `json:"excerpt" validate:"omitnil,max=1000"`
	Category *string `json:"category" validate:"omitnil,min=1,max=100"`
}

// postList is the listing response. It carries paging metadata next to
// the posts rather than inside data.
type postList struct {
	Success bool          `json:"success"`
	Posts   []models.Post `json:"posts"`
	Page    int           `json:"page"`
	Pages   int           `json:"pages"`
	Total   int           `json:"total"`
}

// List handles GET /api/posts?pageNumber=&keyword=&category=.
func (p *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("pageNumber"))

	res, err := p.svc.List(r.Context(), service.PostQuery{
		Page:     page,
		Keyword:  q.Get("keyword"),
		Category: q.Get("category"),
	})
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeJSON(w, http.StatusOK, postList{
		Success: true,
		Posts:   res.Posts,
		Page:    res.Page,
		Pages:   res.Pages,
		Total:   res.Total,
	})
}

// Get handles GET /api/posts/{idOrSlug}.
func (p *Posts) Get(w http.ResponseWriter, r *http.Request) {
	post, err := p.svc.Get(r.Context(), chi.URLParam(r, "idOrSlug"))
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusOK, post)
}

// ListByAuthor handles GET /api/posts/user/{userId}.
func (p *Posts) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := pathID(r, "userId", "User")
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	posts, err := p.svc.ListByAuthor(r.Context(), authorID)
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusOK, posts)
}

// Create handles POST /api/posts. It accepts JSON or a multipart form
// carrying an optional featuredImage file.
func (p *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var (
		req   postRequest
		image []byte
		err   error
	)
	if isMultipart(r) {
		if image, err = parseMultipart(w, r, "featuredImage"); err == nil {
			req = postRequest{
				Title:    deref(formValue(r, "title")),
				Content:  deref(formValue(r, "content")),
				Excerpt:  deref(formValue(r, "excerpt")),
				Category: deref(formValue(r, "category")),
			}
		}
	} else {
		err = decodeJSON(r, &req)
	}
	if err == nil {
		err = validateRequest(req)
	}
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}

	post, err := p.svc.Create(r.Context(), middleware.PrincipalFromCtx(r.Context()), service.PostInput{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Category: req.Category,
		Image:    image,
	})
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusCreated, post)
}

// Update handles PUT /api/posts/{id}.
func (p *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Post")
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}

	var (
		req   postUpdateRequest
		image []byte
	)
	if isMultipart(r) {
		if image, err = parseMultipart(w, r, "featuredImage"); err == nil {
			req = postUpdateRequest{
				Title:    formValue(r, "title"),
				Content:  formValue(r, "content"),
				Excerpt:  formValue(r, "excerpt"),
				Category: formValue(r, "category"),
			}
		}
	} else {
		err = decodeJSON(r, &req)
	}
	if err == nil {
		err = validateRequest(req)
	}
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}

	post, err := p.svc.Update(r.Context(), middleware.PrincipalFromCtx(r.Context()), id, service.PostUpdate{
		Title:    req.Title,
		Content:  req.Content,
		Excerpt:  req.Excerpt,
		Category: req.Category,
		Image:    image,
	})
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}.
func (p *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Post")
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	if err := p.svc.Delete(r.Context(), middleware.PrincipalFromCtx(r.Context()), id); err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeMessage(w, "Post removed")
}

// Like handles POST /api/posts/{id}/like.
func (p *Posts) Like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Post")
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	state, err := p.svc.Like(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusOK, state)
}

// Unlike handles POST /api/posts/{id}/unlike and DELETE /api/posts/{id}/like.
func (p *Posts) Unlike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "Post")
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	state, err := p.svc.Unlike(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		writeError(w, r, p.log, err)
		return
	}
	writeData(w, http.StatusOK, state)
}
