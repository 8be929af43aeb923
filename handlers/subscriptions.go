package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/newsroom/service"
)

type SubscriptionsHandler struct {
	Subscriptions *service.Subscriptions
	Logger        *slog.Logger
}

func (h *SubscriptionsHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	subs, err := h.Subscriptions.List(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// Create answers 201 for a new subscription and 200 with a warning when the
// caller was already subscribed.
func (h *SubscriptionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.SubscriptionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	res, err := h.Subscriptions.Create(r.Context(), u, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	writeJSON(w, code, res)
}

func (h *SubscriptionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	sub, err := h.Subscriptions.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Subscriptions.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Overview is the "my subscriptions" page: targets plus their latest articles.
func (h *SubscriptionsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	o, err := h.Subscriptions.Overview(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
