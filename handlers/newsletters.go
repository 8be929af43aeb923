package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/newsroom/service"
	"github.com/kevinaaaquil/newsroom/utils"
)

type NewslettersHandler struct {
	Newsletters *service.Newsletters
	Logger      *slog.Logger
}

func (h *NewslettersHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := h.Newsletters.List(r.Context(), u, utils.GetPaginationParams(r.URL.Query()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NewslettersHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.NewsletterInput
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.Newsletters.Create(r.Context(), u, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NewslettersHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.Newsletters.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NewslettersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Newsletters.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
