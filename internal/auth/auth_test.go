package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/khata/internal/auth"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

func TestLoginAndVerify(t *testing.T) {
	s := auth.NewService("s3cret", time.Hour)

	tests := []struct {
		name  string
		login func() (string, auth.User, error)
		want  auth.User
	}{
		{
			name:  "email",
			login: func() (string, auth.User, error) { return s.LoginWithEmail("ravi@example.com", "pw") },
			want:  auth.User{Name: "ravi", Email: "ravi@example.com", Method: auth.MethodEmail},
		},
		{
			name:  "mobile",
			login: func() (string, auth.User, error) { return s.LoginWithMobile("9876543210", "123456") },
			want:  auth.User{Name: "User 3210", Mobile: "9876543210", Method: auth.MethodMobile},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, u, err := tt.login()
			require.NoError(t, err)
			require.NotEmpty(t, token)
			assert.NotEmpty(t, u.ID)

			tt.want.ID = u.ID
			assert.Equal(t, tt.want, u)

			got, err := s.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, u, got)
		})
	}
}

func TestLogin_StableUserID(t *testing.T) {
	s := auth.NewService("s3cret", time.Hour)

	_, a, err := s.LoginWithEmail("Ravi@example.com", "pw")
	require.NoError(t, err)

	_, b, err := s.LoginWithEmail("ravi@example.com", "other")
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
}

func TestLogin_Validation(t *testing.T) {
	s := auth.NewService("s3cret", time.Hour)

	_, _, err := s.LoginWithEmail("not-an-email", "pw")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, _, err = s.LoginWithEmail("ravi@example.com", "")
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, _, err = s.LoginWithMobile(" ", "1")
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestVerify_Rejects(t *testing.T) {
	clock := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := auth.NewService("s3cret", time.Hour).WithClock(func() time.Time { return clock })

	token, _, err := s.LoginWithMobile("9876543210", "1")
	require.NoError(t, err)

	other := auth.NewService("different", time.Hour).WithClock(func() time.Time { return clock })
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	_, err = s.Verify("garbage")
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	clock = clock.Add(2 * time.Hour)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	s := auth.NewService("s3cret", time.Hour)
	token, user, err := s.LoginWithEmail("ravi@example.com", "pw")
	require.NoError(t, err)

	var seen auth.User

	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Token " + token, want: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, user, seen)
}

func TestMiddleware_Disabled(t *testing.T) {
	s := auth.NewService("", time.Hour)
	assert.False(t, s.Enabled())

	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, _, err := s.LoginWithEmail("ravi@example.com", "pw")
	assert.Error(t, err)
}
