package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imadgeboyega/kiekky-couples/internal/common/utils"
)

func TestAuthenticate(t *testing.T) {
	m := NewMiddleware("secret")
	var seen int64
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	access, _ := utils.GenerateJWT(7, "access", time.Minute, "secret")
	refresh, _ := utils.GenerateJWT(7, "refresh", time.Minute, "secret")

	cases := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed", "Token " + access, "", http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, "", http.StatusUnauthorized},
		{"bearer", "Bearer " + access, "", http.StatusNoContent},
		{"query token", "", access, http.StatusNoContent},
	}
	for _, tc := range cases {
		seen = 0
		target := "/x"
		if tc.query != "" {
			target += "?token=" + tc.query
		}
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status want=%d got=%d", tc.name, tc.want, rec.Code)
		}
		if tc.want == http.StatusNoContent && seen != 7 {
			t.Fatalf("%s: user id want=7 got=%d", tc.name, seen)
		}
	}
}
