package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestKindPredicates(t *testing.T) {
	if !IsNotFound(NotFound("user %s not found", "abc")) {
		t.Error("expected IsNotFound")
	}
	if !IsInvalid(Invalid("empty recipient set")) {
		t.Error("expected IsInvalid")
	}
	if !IsForbidden(Forbidden("not the authorized responder")) {
		t.Error("expected IsForbidden")
	}
	if !IsConflict(Conflict("request already responded")) {
		t.Error("expected IsConflict")
	}
	if IsNotFound(Invalid("nope")) {
		t.Error("kinds must not overlap")
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("respond: %w", Conflict("already responded"))
	if !IsConflict(err) {
		t.Error("expected wrapped error to keep its kind")
	}
	if HTTPStatus(err) != http.StatusConflict {
		t.Errorf("expected 409, got %d", HTTPStatus(err))
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Invalid("x"), http.StatusBadRequest},
		{Forbidden("x"), http.StatusForbidden},
		{Conflict("x"), http.StatusConflict},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}
