package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/newsroom/service"
	"github.com/kevinaaaquil/newsroom/utils"
)

type ArticlesHandler struct {
	Articles  *service.Articles
	Approvals *service.Approvals
	MaxBytes  int64
	Logger    *slog.Logger
}

// List returns the caller's feed: what their role lets them see.
func (h *ArticlesHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, err := h.Articles.List(r.Context(), u, utils.GetPaginationParams(r.URL.Query()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ArticlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var in service.ArticleInput
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.Articles.Create(r.Context(), u, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *ArticlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.Articles.Get(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update serves both PUT and PATCH; absent fields are left alone.
func (h *ArticlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	var patch service.ArticlePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	a, err := h.Articles.Update(r.Context(), u, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Articles.Delete(r.Context(), u, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticlesHandler) Approve(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.Approvals.Approve(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticlesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.Articles.Submit(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *ArticlesHandler) Reject(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	a, err := h.Articles.Reject(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Home lists every published article, newest first. No login needed.
func (h *ArticlesHandler) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.Articles.Home(r.Context(), utils.GetPaginationParams(r.URL.Query()))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ArticlesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Articles.Search(r.Context(), service.SearchParams{
		Query:       q.Get("q"),
		CategoryID:  q.Get("category"),
		PublisherID: q.Get("publisher"),
		Page:        utils.GetPaginationParams(q),
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetPublic is the reader-facing detail view of a published article.
func (h *ArticlesHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	a, err := h.Articles.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UploadImage takes a multipart "file" field and stores it as the header image.
func (h *ArticlesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	a, err := h.Articles.UploadImage(r.Context(), u, chi.URLParam(r, "id"), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Image redirects to a presigned download link.
func (h *ArticlesHandler) Image(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUserOptional(r)
	url, err := h.Articles.ImageURL(r.Context(), u, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
