package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/utils"
)

const (
	resetTokenBytes   = 32
	minPasswordLength = 8
)

// PasswordReset issues and redeems one-time reset tokens.
type PasswordReset struct {
	repo    Repository
	mailer  Mailer
	limiter Limiter
	siteURL string
	// revealUnknown makes Request fail for unregistered emails instead of
	// answering the same way for every address.
	revealUnknown bool
	now           func() time.Time
	logger        *slog.Logger
}

type PasswordResetOptions struct {
	SiteURL       string
	RevealUnknown bool
	Limiter       Limiter
}

func NewPasswordReset(repo Repository, mailer Mailer, opts PasswordResetOptions, now func() time.Time, logger *slog.Logger) *PasswordReset {
	return &PasswordReset{
		repo:          repo,
		mailer:        mailer,
		limiter:       opts.Limiter,
		siteURL:       opts.SiteURL,
		revealUnknown: opts.RevealUnknown,
		now:           now,
		logger:        logger.With("component", "password-reset"),
	}
}

// ResetURL is the link mailed to the user.
func ResetURL(siteURL, token string) string {
	return siteURL + "/reset-password/" + token
}

// Request mints a token for the account behind email and mails the link.
// Mail failures are logged; the caller still gets success.
func (s *PasswordReset) Request(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if !utils.IsValidEmail(email) {
		return validationError("enter a valid email address")
	}
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.logger.Warn("reset limiter unavailable", "err", err)
		} else if !ok {
			return &Error{Kind: ErrRateLimited, Message: "too many reset requests, try again later"}
		}
	}

	u, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		if s.revealUnknown {
			return &Error{Kind: ErrNotFound, Message: "No account found with that email address."}
		}
		s.logger.Info("reset requested for unknown email")
		return nil
	}

	token, err := utils.NewToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}
	t := &models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Token:     token,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateResetToken(ctx, t); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	msg := Message{
		Subject: "Password Reset Request",
		Text:    "Click the link to reset your password: " + ResetURL(s.siteURL, token),
	}
	if err := s.mailer.Send(ctx, msg, []string{u.Email}); err != nil {
		s.logger.Error("send reset email", "user", u.ID, "err", err)
	}
	s.logger.Info("reset token issued", "user", u.ID)
	return nil
}

// Validate checks that token exists, is unused and has not expired.
func (s *PasswordReset) Validate(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	if token == "" {
		return nil, errInvalidToken
	}
	t, err := s.repo.ResetTokenByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load reset token: %w", err)
	}
	if t == nil || !t.IsValid(s.now().UTC()) {
		return nil, errInvalidToken
	}
	return t, nil
}

// Reset consumes token and sets the new password. The passwords are checked
// before the token is spent so a typo does not burn it.
func (s *PasswordReset) Reset(ctx context.Context, token, password1, password2 string) error {
	t, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if err := validatePasswords(password1, password2); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password1), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err := s.repo.MarkResetTokenUsed(ctx, token)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if !ok {
		return errInvalidToken
	}
	if err := s.repo.UpdateUserPassword(ctx, t.UserID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info("password reset", "user", t.UserID)
	return nil
}

func validatePasswords(p1, p2 string) error {
	switch {
	case p1 == "" || p2 == "":
		return validationError("enter the new password twice")
	case p1 != p2:
		return validationError("the two password fields didn't match")
	case len([]rune(p1)) < minPasswordLength:
		return validationError("password must be at least %d characters", minPasswordLength)
	}
	return nil
}
