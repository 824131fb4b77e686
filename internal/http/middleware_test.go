package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudyy74/teams-api/internal/models"
	"github.com/cloudyy74/teams-api/internal/service"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthMiddleware(t *testing.T) {
	svc := &fakeAuthService{
		authFn: func(ctx context.Context, token string) (*models.User, error) {
			switch token {
			case "good":
				return &models.User{ID: 1, IsActive: true}, nil
			case "inactive":
				return nil, service.ErrUserInactive
			default:
				return nil, service.ErrTokenNotValid
			}
		},
	}
	rtr := newTestRouterWithAuthService(svc)

	var seen *models.User
	h := rtr.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = userFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{name: "valid", header: "Bearer good", wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer good", wantCode: http.StatusOK},
		{name: "missing", wantCode: http.StatusUnauthorized, wantErr: ErrCodeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantCode: http.StatusUnauthorized, wantErr: ErrCodeTokenNotValid},
		{name: "no token", header: "Bearer", wantCode: http.StatusUnauthorized, wantErr: ErrCodeTokenNotValid},
		{name: "extra parts", header: "Bearer a b", wantCode: http.StatusUnauthorized, wantErr: ErrCodeTokenNotValid},
		{name: "invalid token", header: "Bearer bad", wantCode: http.StatusUnauthorized, wantErr: ErrCodeTokenNotValid},
		{name: "inactive user", header: "Bearer inactive", wantCode: http.StatusUnauthorized, wantErr: ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/user/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantErr == "" {
				if seen == nil || seen.ID != 1 {
					t.Fatalf("expected user in context, got %+v", seen)
				}
				return
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != `Bearer realm="api"` {
				t.Fatalf("unexpected WWW-Authenticate header %q", got)
			}
			if resp := decodeError(t, rec); resp.Error.Code != tt.wantErr {
				t.Fatalf("expected code %s, got %s", tt.wantErr, resp.Error.Code)
			}
		})
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	rtr := &router{log: testLogger()}
	h := rtr.adminOrReadOnly(okHandler)

	member := &models.User{ID: 1}
	staff := &models.User{ID: 2, IsStaff: true}

	tests := []struct {
		name   string
		method string
		user   *models.User
		want   int
	}{
		{name: "anonymous", method: http.MethodGet, want: http.StatusUnauthorized},
		{name: "member reads", method: http.MethodGet, user: member, want: http.StatusOK},
		{name: "member head", method: http.MethodHead, user: member, want: http.StatusOK},
		{name: "member writes", method: http.MethodPatch, user: member, want: http.StatusForbidden},
		{name: "member deletes", method: http.MethodDelete, user: member, want: http.StatusForbidden},
		{name: "staff writes", method: http.MethodPut, user: staff, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/team/1/", nil)
			if tt.user != nil {
				req = req.WithContext(withUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			h(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestJSONMiddleware(t *testing.T) {
	rtr := &router{log: testLogger()}
	h := rtr.jsonMiddleware(okHandler)

	tests := []struct {
		contentType string
		want        int
	}{
		{contentType: "application/json", want: http.StatusOK},
		{contentType: "application/json; charset=utf-8", want: http.StatusOK},
		{contentType: "", want: http.StatusUnsupportedMediaType},
		{contentType: "text/plain", want: http.StatusUnsupportedMediaType},
		{contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/team/", nil)
		if tt.contentType != "" {
			req.Header.Set("Content-Type", tt.contentType)
		}
		rec := httptest.NewRecorder()

		h(rec, req)

		if rec.Code != tt.want {
			t.Fatalf("content type %q: expected status %d, got %d", tt.contentType, tt.want, rec.Code)
		}
	}
}

type fakeThrottle struct {
	allowed int
	keys    []string
}

func (f *fakeThrottle) Allow(key string) bool {
	f.keys = append(f.keys, key)
	if f.allowed <= 0 {
		return false
	}
	f.allowed--
	return true
}

func TestThrottleMiddleware(t *testing.T) {
	throttle := &fakeThrottle{allowed: 1}
	rtr := &router{throttle: throttle, log: testLogger()}
	h := rtr.throttleMiddleware(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/auth/token/", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()

		h(rec, req)

		if rec.Code != want {
			t.Fatalf("request %d: expected status %d, got %d", i, want, rec.Code)
		}
	}
	if throttle.keys[0] != "10.0.0.7" {
		t.Fatalf("expected client key by host, got %q", throttle.keys[0])
	}
}

func TestPanicMiddleware(t *testing.T) {
	rtr := &router{log: testLogger()}
	h := rtr.panicMiddleware(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != ErrCodeInternal {
		t.Fatalf("expected code %s, got %s", ErrCodeInternal, resp.Error.Code)
	}
}
