package transfer

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/khata/internal/export"
	"github.com/MrJamesThe3rd/khata/internal/http/render"
	"github.com/MrJamesThe3rd/khata/internal/importer"
	"github.com/MrJamesThe3rd/khata/internal/ledger"
)

const maxUpload = 10 << 20

// Handler exports and imports one collection.
type Handler struct {
	exports *export.Service
	imports *importer.Service
	ledger  *ledger.Service
	kind    ledger.Kind
}

func NewHandler(exports *export.Service, imports *importer.Service, l *ledger.Service, kind ledger.Kind) *Handler {
	return &Handler{exports: exports, imports: imports, ledger: l, kind: kind}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/export", h.exportJSON)
	r.Get("/statement", h.statement)
	r.Post("/import", h.importFile)
}

type mergeResponse struct {
	Matched    int `json:"matched"`
	Added      int `json:"added"`
	LineItems  int `json:"lineItems"`
	Duplicates int `json:"duplicates"`
}

func (h *Handler) exportJSON(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	name, err := h.exports.Export(r.Context(), h.kind, &buf)
	if err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Collection(r.Context(), h.kind)
	if err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := io.WriteString(w, h.exports.Statement(c)); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}

// importFile accepts either a multipart form with a "file" field or the JSON
// document as the request body.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	var body io.Reader = r.Body

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			render.Status(w, http.StatusBadRequest, "failed to parse form: "+err.Error())
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			render.Status(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		body = file
	}

	report, err := h.imports.Import(r.Context(), h.kind, body)
	if err != nil {
		render.Error(w, err)
		return
	}

	render.JSON(w, http.StatusOK, mergeResponse{
		Matched:    report.Matched,
		Added:      report.Added,
		LineItems:  report.LineItems,
		Duplicates: report.Duplicates,
	})
}

// Archive serves a zip of both collections and their statements.
type Archive struct {
	exports *export.Service
}

func NewArchive(exports *export.Service) *Archive {
	return &Archive{exports: exports}
}

func (a *Archive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	name, err := a.exports.Archive(r.Context(), &buf)
	if err != nil {
		render.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write archive", "error", err)
	}
}
