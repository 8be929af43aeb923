package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/utils"
)

const (
	maxUsernameLen = 150
	maxNameLen     = 30
)

type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// PublisherRegistration creates a publisher and its first editor account.
type PublisherRegistration struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Website     string       `json:"website"`
	Editor      Registration `json:"editor"`
}

var errBadCredentials = &Error{Kind: ErrUnauthenticated, Message: "invalid username or password"}

// Accounts handles registration and login.
type Accounts struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
}

func NewAccounts(repo Repository, now func() time.Time, logger *slog.Logger) *Accounts {
	return &Accounts{repo: repo, now: now, logger: logger.With("component", "accounts")}
}

func (s *Accounts) Register(ctx context.Context, r Registration) (*models.User, error) {
	role, ok := models.ParseRole(r.Role)
	if !ok {
		return nil, validationError("role must be one of reader, editor, journalist")
	}
	return s.createUser(ctx, r, role)
}

func (s *Accounts) createUser(ctx context.Context, r Registration, role models.Role) (*models.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = utils.NormalizeEmail(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	switch {
	case r.Username == "":
		return nil, validationError("username is required")
	case len([]rune(r.Username)) > maxUsernameLen:
		return nil, validationError("username must be at most %d characters", maxUsernameLen)
	case strings.ContainsAny(r.Username, " \t\n@"):
		return nil, validationError("username may not contain spaces or @")
	case !utils.IsValidEmail(r.Email):
		return nil, validationError("enter a valid email address")
	case len([]rune(r.FirstName)) > maxNameLen || len([]rune(r.LastName)) > maxNameLen:
		return nil, validationError("names must be at most %d characters", maxNameLen)
	}
	if err := validatePasswords(r.Password1, r.Password2); err != nil {
		return nil, err
	}

	if u, err := s.repo.UserByUsername(ctx, r.Username); err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	} else if u != nil {
		return nil, conflictError("a user with this username already exists")
	}
	if u, err := s.repo.UserByEmail(ctx, r.Email); err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	} else if u != nil {
		return nil, conflictError("a user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password1), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		ID:        uuid.NewString(),
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Password:  string(hash),
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, conflictError("a user with this username or email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate accepts a username or an email as login.
func (s *Accounts) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, validationError("username and password are required")
	}
	var (
		u   *models.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.repo.UserByEmail(ctx, utils.NormalizeEmail(login))
	} else {
		u, err = s.repo.UserByUsername(ctx, login)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, errBadCredentials
	}
	return u, nil
}

// RegisterPublisher creates the publisher and an editor account for it. If
// either step fails, whatever was created is removed again.
func (s *Accounts) RegisterPublisher(ctx context.Context, r PublisherRegistration) (*models.Publisher, *models.User, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return nil, nil, validationError("publisher name is required")
	}
	if len([]rune(r.Name)) > maxTitleLen {
		return nil, nil, validationError("publisher name must be at most %d characters", maxTitleLen)
	}

	p := &models.Publisher{
		ID:          uuid.NewString(),
		Name:        r.Name,
		Description: strings.TrimSpace(r.Description),
		Website:     strings.TrimSpace(r.Website),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreatePublisher(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, nil, conflictError("a publisher with this name already exists")
		}
		return nil, nil, fmt.Errorf("create publisher: %w", err)
	}

	u, err := s.createUser(ctx, r.Editor, models.RoleEditor)
	if err == nil {
		if err = s.repo.AddPublisherEditor(ctx, p.ID, u.ID); err != nil {
			err = fmt.Errorf("add publisher editor: %w", err)
			if derr := s.repo.DeleteUser(ctx, u.ID); derr != nil {
				s.logger.Error("roll back editor", "user", u.ID, "err", derr)
			}
		}
	}
	if err != nil {
		if derr := s.repo.DeletePublisher(ctx, p.ID); derr != nil {
			s.logger.Error("roll back publisher", "publisher", p.ID, "err", derr)
		}
		return nil, nil, err
	}
	p.EditorIDs = []string{u.ID}
	s.logger.Info("publisher registered", "publisher", p.ID, "editor", u.ID)
	return p, u, nil
}
