package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/khata/internal/auth"
	"github.com/MrJamesThe3rd/khata/internal/http/render"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/otp", h.sendOTP)
	r.With(h.svc.Middleware).Get("/me", h.me)
}

type loginRequest struct {
	Method   auth.Method `json:"method"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Mobile   string      `json:"mobile"`
	OTP      string      `json:"otp"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

type otpRequest struct {
	Mobile string `json:"mobile"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !render.Decode(w, r, &req) {
		return
	}

	var (
		token string
		user  auth.User
		err   error
	)

	switch req.Method {
	case auth.MethodEmail:
		token, user, err = h.svc.LoginWithEmail(req.Email, req.Password)
	case auth.MethodMobile:
		token, user, err = h.svc.LoginWithMobile(req.Mobile, req.OTP)
	default:
		err = &ledger.ValidationError{Field: "method", Reason: "must be email or mobile"}
	}

	if errors.Is(err, auth.ErrDisabled) {
		render.Status(w, http.StatusNotImplemented, err.Error())
		return
	}

	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// sendOTP pretends to text a one-time code; any code is accepted at login.
func (h *Handler) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if !render.Decode(w, r, &req) {
		return
	}

	if req.Mobile == "" {
		render.Error(w, &ledger.ValidationError{Field: "mobile", Reason: "is required"})
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		render.Status(w, http.StatusNotFound, "no authenticated user")
		return
	}

	render.JSON(w, http.StatusOK, u)
}
