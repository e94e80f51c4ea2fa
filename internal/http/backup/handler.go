package backup

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/khata/internal/cloud"
	"github.com/MrJamesThe3rd/khata/internal/http/render"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

type Handler struct {
	svc *cloud.Service
}

func NewHandler(svc *cloud.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.status)
	r.Post("/", h.backup)
	r.Post("/connect", h.connect)
	r.Post("/disconnect", h.disconnect)
	r.Post("/restore", h.restore)
}

type connectRequest struct {
	Account string `json:"account"`
}

type statusResponse struct {
	Connected  bool       `json:"connected"`
	Account    string     `json:"account,omitempty"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
}

type mergeResponse struct {
	Matched    int `json:"matched"`
	Added      int `json:"added"`
	LineItems  int `json:"lineItems"`
	Duplicates int `json:"duplicates"`
}

type restoreResponse struct {
	BackupID  string        `json:"backupId"`
	Customers mergeResponse `json:"customers"`
	Creditors mergeResponse `json:"creditors"`
}

func toStatusResponse(s cloud.Status) statusResponse {
	return statusResponse{Connected: s.Connected, Account: s.Account, LastBackup: s.LastBackup}
}

func toMergeResponse(r ledger.MergeReport) mergeResponse {
	return mergeResponse{Matched: r.Matched, Added: r.Added, LineItems: r.LineItems, Duplicates: r.Duplicates}
}

func (h *Handler) status(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, toStatusResponse(h.svc.Status()))
}

func (h *Handler) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !render.Decode(w, r, &req) {
		return
	}

	render.JSON(w, http.StatusOK, toStatusResponse(h.svc.Connect(req.Account)))
}

func (h *Handler) disconnect(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, toStatusResponse(h.svc.Disconnect()))
}

func (h *Handler) backup(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Backup(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, m)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Restore(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	render.JSON(w, http.StatusOK, restoreResponse{
		BackupID:  report.BackupID,
		Customers: toMergeResponse(report.Customers),
		Creditors: toMergeResponse(report.Creditors),
	})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cloud.ErrNotConnected):
		render.Status(w, http.StatusConflict, err.Error())
	case errors.Is(err, cloud.ErrNoBackup):
		render.Status(w, http.StatusNotFound, err.Error())
	default:
		render.Error(w, err)
	}
}
