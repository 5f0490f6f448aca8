package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(KindConflict, "already_submitted", "already submitted")
	wrapped := fmt.Errorf("submit: %w", sentinel.WithCause(errors.New("row locked")))

	if !errors.Is(wrapped, sentinel) {
		t.Fatalf("errors.Is: want=true got=false")
	}
	other := New(KindConflict, "already_answered", "already answered")
	if errors.Is(wrapped, other) {
		t.Fatalf("errors.Is different code: want=false got=true")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrMatchNotFound, http.StatusNotFound},
		{ErrNotParticipant, http.StatusForbidden},
		{New(KindPreconditionFailed, "not_completed", "x"), http.StatusPreconditionFailed},
		{New(KindConflict, "active_game_exists", "x"), http.StatusConflict},
		{Invalid("bad_position", "x"), http.StatusBadRequest},
		{New(KindInsufficientData, "insufficient_answers", "x"), http.StatusUnprocessableEntity},
		{Wrap(KindUpstream, "llm_failed", "x", errors.New("503")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Fatalf("HTTPStatus(%v): want=%d got=%d", tc.err, tc.want, got)
		}
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(errors.New("boom")); got != "internal_error" {
		t.Fatalf("CodeOf: want=%q got=%q", "internal_error", got)
	}
}
