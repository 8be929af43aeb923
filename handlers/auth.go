package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kevinaaaquil/newsroom/middleware"
	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

type AuthHandler struct {
	Accounts  *service.Accounts
	Reset     *service.PasswordReset
	JWTSecret string
	TokenTTL  time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

const resetRequestedMessage = "If an account exists with that email, a password reset link has been sent."

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.Registration
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.Accounts.Register(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.respondWithToken(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		writeErrorMessage(w, http.StatusBadRequest, "login and password required")
		return
	}
	u, err := h.Accounts.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	h.respondWithToken(w, http.StatusOK, u)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, code int, u *models.User) {
	token, err := h.createToken(u)
	if err != nil {
		h.Logger.Error("sign token", "user", u.ID, "err", err)
		writeErrorMessage(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, code, LoginResponse{Token: token, User: u})
}

func (h *AuthHandler) createToken(u *models.User) (string, error) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return middleware.NewToken(h.JWTSecret, u, ttl, now())
}

// ForgotPassword answers the same way whether or not the email is known,
// unless the service is configured to reveal unknown addresses.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Reset.Request(r.Context(), req.Email); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": resetRequestedMessage})
}

// CheckResetToken lets the client decide whether to show the new password form.
func (h *AuthHandler) CheckResetToken(w http.ResponseWriter, r *http.Request) {
	t, err := h.Reset.Validate(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "expiresAt": t.CreatedAt.Add(models.ResetTokenTTL)})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.Reset.Reset(r.Context(), chi.URLParam(r, "token"), req.Password1, req.Password2); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset. You can now log in."})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, u)
}
