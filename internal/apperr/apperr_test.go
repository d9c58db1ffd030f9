package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("bad"), want: http.StatusBadRequest},
		{name: "unauthenticated", err: Unauthenticated("no token", nil), want: http.StatusUnauthorized},
		{name: "forbidden", err: Forbidden("nope"), want: http.StatusForbidden},
		{name: "not found", err: NotFound("missing"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("dup"), want: http.StatusConflict},
		{name: "upstream", err: Upstream("smtp", errors.New("timeout")), want: http.StatusBadGateway},
		{name: "store unavailable", err: StoreUnavailable(errors.New("conn refused")), want: http.StatusServiceUnavailable},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "wrapped kind", err: fmt.Errorf("outer: %w", Conflict("dup")), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessageHidesInternalCauses(t *testing.T) {
	assert.Equal(t, "Internal server error", Message(errors.New("pq: password authentication failed")))
	assert.Equal(t, "Internal server error", Message(StoreUnavailable(errors.New("dial tcp"))))
	assert.Equal(t, "title is required", Message(Validation("title is required")))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("token is expired")
	err := Unauthenticated("Not authorized, token expired", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindUnauthenticated, KindOf(err))
	assert.Equal(t, "Not authorized, token expired: token is expired", err.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
