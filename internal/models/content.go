// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostPageSize is the fixed number of posts per listing page.
const PostPageSize = 10

// Post is a blog entry. LikesCount and CommentCount are caches derived from
// the like set and the comment collection; they are only ever written by
// the store operation that mutates the underlying data.
type Post struct {
	ID            uuid.UUID      `json:"_id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Content       string         `json:"content"`
	Excerpt       string         `json:"excerpt"`
	Category      string         `json:"category"`
	AuthorID      uuid.UUID      `json:"-"`
	Author        *AuthorSummary `json:"author,omitempty"`
	FeaturedImage *Image         `json:"featuredImage,omitempty"`
	Likes         []uuid.UUID    `json:"likes,omitempty"`
	LikesCount    int            `json:"likesCount"`
	CommentCount  int            `json:"commentCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a reply on a post. It is stored independently of the post but
// counted in the post's CommentCount.
type Comment struct {
	ID        uuid.UUID      `json:"_id"`
	PostID    uuid.UUID      `json:"post"`
	AuthorID  uuid.UUID      `json:"-"`
	Author    *AuthorSummary `json:"author,omitempty"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// PostFilter narrows a post listing. Zero values mean "no filter".
type PostFilter struct {
	Keyword  string
	Category string
	AuthorID *uuid.UUID
	Limit    int
	Offset   int
}

// LikeState is the like set and its count after a like or unlike.
type LikeState struct {
	Likes      []uuid.UUID `json:"likes"`
	LikesCount int         `json:"likesCount"`
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
