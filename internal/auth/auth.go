// Package auth issues and checks the signed tokens the API and clients use to
// identify the book owner. Any credentials are accepted; there is no account
// store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrDisabled     = errors.New("token signing is not configured")
)

type Method string

const (
	MethodEmail  Method = "email"
	MethodMobile Method = "mobile"
)

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Method Method `json:"authMethod"`
}

type claims struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Method Method `json:"method"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService returns a token service. An empty secret disables Middleware
// checks.
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp and check expiry.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// LoginWithEmail accepts any email and non-empty password.
func (s *Service) LoginWithEmail(email, password string) (string, User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return "", User{}, &ledger.ValidationError{Field: "email", Reason: "a valid email is required"}
	}

	if password == "" {
		return "", User{}, &ledger.ValidationError{Field: "password", Reason: "is required"}
	}

	name, _, _ := strings.Cut(email, "@")

	return s.issue(User{
		ID:     userID(email),
		Name:   name,
		Email:  email,
		Method: MethodEmail,
	})
}

// LoginWithMobile accepts any mobile number and non-empty one-time code.
func (s *Service) LoginWithMobile(mobile, otp string) (string, User, error) {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return "", User{}, &ledger.ValidationError{Field: "mobile", Reason: "is required"}
	}

	if otp == "" {
		return "", User{}, &ledger.ValidationError{Field: "otp", Reason: "is required"}
	}

	suffix := mobile
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	return s.issue(User{
		ID:     userID(mobile),
		Name:   "User " + suffix,
		Mobile: mobile,
		Method: MethodMobile,
	})
}

func (s *Service) issue(u User) (string, User, error) {
	if !s.Enabled() {
		return "", User{}, ErrDisabled
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name:   u.Name,
		Email:  u.Email,
		Mobile: u.Mobile,
		Method: u.Method,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", User{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, u, nil
}

// Verify parses a token and returns the user it was issued to.
func (s *Service) Verify(token string) (User, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return User{ID: c.Subject, Name: c.Name, Email: c.Email, Mobile: c.Mobile, Method: c.Method}, nil
}

type ctxKey struct{}

// UserFromContext returns the user Middleware attached to the request.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// Middleware rejects requests without a valid bearer token. It lets every
// request through when the service has no secret.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}

		u, err := s.Verify(token)
		if err != nil {
			http.Error(w, ErrUnauthorized.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func userID(identifier string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(identifier))).String()
}
