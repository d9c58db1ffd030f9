// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package access

import (
	"fmt"

	"github.com/google/uuid"

	"bloghub/internal/apperr"
)

// ResourceKind identifies the type of an owned resource.
type ResourceKind int

const (
	Post ResourceKind = iota
	Comment
	User
)

func (k ResourceKind) String() string {
	switch k {
	case Post:
		return "post"
	case Comment:
		return "comment"
	case User:
		return "user"
	default:
		return fmt.Sprintf("resource(%d)", int(k))
	}
}

// Action is a mutation a principal wants to perform on a resource.
type Action int

const (
	Update Action = iota
	Delete
	Administer
)

func (a Action) String() string {
	switch a {
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Administer:
		return "administer"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Authorize allows action on a resource owned by ownerID when the
// principal is the owner. Administrators are additionally allowed to
// delete comments and to administer users. Every update and delete path
// of every owned resource goes through here.
func Authorize(p *Principal, kind ResourceKind, ownerID uuid.UUID, action Action) error {
	if p == nil {
		return apperr.Unauthenticated("Not authorized", nil)
	}
	if p.IsAdmin && adminOverride(kind, action) {
		return nil
	}
	if action != Administer && p.UserID == ownerID {
		return nil
	}
	return apperr.Forbidden(fmt.Sprintf("Not authorized to %s this %s", action, kind))
}

// RequireAdmin fails with Forbidden unless p is an administrator.
func RequireAdmin(p *Principal) error {
	return Authorize(p, User, uuid.Nil, Administer)
}

func adminOverride(kind ResourceKind, action Action) bool {
	switch {
	case kind == Comment && action == Delete:
		return true
	case kind == User:
		return true
	default:
		return false
	}
}
