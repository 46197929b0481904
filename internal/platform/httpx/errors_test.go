package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("%w: unknown role R999", ErrNotFound), http.StatusNotFound},
		{"validation", fmt.Errorf("%w: unknown code X", ErrValidation), http.StatusBadRequest},
		{"forbidden", fmt.Errorf("%w: admin role required", ErrForbidden), http.StatusForbidden},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unmapped", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("internal error leaked into response: %s", rec.Body.String())
	}
}
