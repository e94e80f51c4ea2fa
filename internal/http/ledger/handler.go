package ledger

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/khata/internal/http/render"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

// Handler serves one collection: customers or creditors.
type Handler struct {
	svc  *ledger.Service
	kind ledger.Kind
}

func NewHandler(svc *ledger.Service, kind ledger.Kind) *Handler {
	return &Handler{svc: svc, kind: kind}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/items", h.addItem)
	r.Delete("/{id}/items/{itemID}", h.deleteItem)
	r.Post("/{id}/items/{itemID}/payments", h.addPayment)
	r.Post("/{id}/items/{itemID}/paid", h.markPaid)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entities, err := h.svc.List(r.Context(), h.kind)
	if err != nil {
		render.Error(w, err)
		return
	}

	status := ledger.Status(r.URL.Query().Get("status"))
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	filtered := entities[:0]

	for _, e := range entities {
		if status != "" && e.Status != status {
			continue
		}

		if q != "" && !strings.Contains(strings.ToLower(e.Name), q) && !strings.Contains(e.Mobile, q) {
			continue
		}

		filtered = append(filtered, e)
	}

	render.JSON(w, http.StatusOK, toResponseList(filtered))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !render.Decode(w, r, &req) {
		return
	}

	first, err := req.Item.params()
	if err != nil {
		render.Error(w, err)
		return
	}

	e, err := h.svc.Create(r.Context(), h.kind, req.identity(), first)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), h.kind, chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateRequest
	if !render.Decode(w, r, &req) {
		return
	}

	e, err := h.svc.Patch(r.Context(), h.kind, id, req.apply)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), h.kind, chi.URLParam(r, "id")); err != nil {
		render.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !render.Decode(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		render.Error(w, err)
		return
	}

	e, err := h.svc.AddLineItem(r.Context(), h.kind, chi.URLParam(r, "id"), params)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.DeleteLineItem(r.Context(), h.kind, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !render.Decode(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		render.Error(w, err)
		return
	}

	e, err := h.svc.AddPayment(r.Context(), h.kind, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), params)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.MarkPaid(r.Context(), h.kind, chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}
