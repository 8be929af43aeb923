package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

type DirectoryHandler struct {
	Directory *service.Directory
	Accounts  *service.Accounts
	Logger    *slog.Logger
}

type PublisherRegistrationResponse struct {
	Publisher *models.Publisher `json:"publisher"`
	Editor    *models.User      `json:"editor"`
}

type AddStaffRequest struct {
	UserID string `json:"userId"`
}

func (h *DirectoryHandler) Publishers(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	pubs, err := h.Directory.Publishers(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pubs)
}

// RegisterPublisher is public: it creates a publisher and its first editor.
func (h *DirectoryHandler) RegisterPublisher(w http.ResponseWriter, r *http.Request) {
	var req service.PublisherRegistration
	if !decodeJSON(w, r, &req) {
		return
	}
	p, editor, err := h.Accounts.RegisterPublisher(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, PublisherRegistrationResponse{Publisher: p, Editor: editor})
}

func (h *DirectoryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	d, err := h.Directory.Dashboard(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *DirectoryHandler) AddJournalist(w http.ResponseWriter, r *http.Request) {
	h.addStaff(w, r, models.RoleJournalist)
}

func (h *DirectoryHandler) AddEditor(w http.ResponseWriter, r *http.Request) {
	h.addStaff(w, r, models.RoleEditor)
}

func (h *DirectoryHandler) addStaff(w http.ResponseWriter, r *http.Request, role models.Role) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req AddStaffRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.Directory.AddStaff(r.Context(), u, chi.URLParam(r, "id"), req.UserID, role)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *DirectoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	cats, err := h.Directory.Categories(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *DirectoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.CategoryInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.Directory.CreateCategory(r.Context(), u, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *DirectoryHandler) Journalists(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	js, err := h.Directory.Journalists(r.Context(), u)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, js)
}
