package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/utils"
)

type NewsletterInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublisherID string `json:"publisherId"`
}

type Newsletters struct {
	repo   Repository
	caps   *Capabilities
	vis    *Visibility
	now    func() time.Time
	logger *slog.Logger
}

func NewNewsletters(repo Repository, caps *Capabilities, vis *Visibility, now func() time.Time, logger *slog.Logger) *Newsletters {
	return &Newsletters{repo: repo, caps: caps, vis: vis, now: now, logger: logger.With("component", "newsletters")}
}

func (s *Newsletters) List(ctx context.Context, u *models.User, page utils.PaginationParams) (*Page[models.Newsletter], error) {
	if err := s.caps.Require(u, ResNewsletters, ActList); err != nil {
		return nil, err
	}
	scope, err := s.vis.NewsletterScope(ctx, u)
	if err != nil {
		return nil, err
	}
	if scope.IsEmpty() {
		return &Page[models.Newsletter]{Items: []models.Newsletter{}, Pagination: utils.GetPaginationResult(page, 0, 0)}, nil
	}
	items, total, err := s.repo.FindNewsletters(ctx, NewsletterQuery{Scope: scope, Limit: page.PageSize, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("find newsletters: %w", err)
	}
	if items == nil {
		items = []models.Newsletter{}
	}
	return &Page[models.Newsletter]{Items: items, Pagination: utils.GetPaginationResult(page, len(items), total)}, nil
}

func (s *Newsletters) Get(ctx context.Context, u *models.User, id string) (*models.Newsletter, error) {
	if err := s.caps.Require(u, ResNewsletters, ActRead); err != nil {
		return nil, err
	}
	scope, err := s.vis.NewsletterScope(ctx, u)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.NewsletterByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load newsletter: %w", err)
	}
	if n == nil || !scope.AllowsNewsletter(n) {
		return nil, notFoundError("newsletter")
	}
	return n, nil
}

func (s *Newsletters) Create(ctx context.Context, u *models.User, in NewsletterInput) (*models.Newsletter, error) {
	if err := s.caps.Require(u, ResNewsletters, ActCreate); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.Title == "":
		return nil, validationError("title is required")
	case len([]rune(in.Title)) > maxTitleLen:
		return nil, validationError("title must be at most %d characters", maxTitleLen)
	case strings.TrimSpace(in.Content) == "":
		return nil, validationError("content is required")
	}
	if in.PublisherID != "" {
		p, err := s.repo.PublisherByID(ctx, in.PublisherID)
		if err != nil {
			return nil, fmt.Errorf("load publisher: %w", err)
		}
		if p == nil {
			return nil, validationError("unknown publisher")
		}
	}

	now := s.now().UTC()
	n := &models.Newsletter{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Content:     in.Content,
		AuthorID:    u.ID,
		PublisherID: in.PublisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateNewsletter(ctx, n); err != nil {
		return nil, fmt.Errorf("create newsletter: %w", err)
	}
	s.logger.Info("newsletter created", "newsletter", n.ID, "author", u.ID)
	return n, nil
}

func (s *Newsletters) Delete(ctx context.Context, u *models.User, id string) error {
	if err := s.caps.Require(u, ResNewsletters, ActDelete); err != nil {
		return err
	}
	n, err := s.Get(ctx, u, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteNewsletter(ctx, n.ID); err != nil {
		return fmt.Errorf("delete newsletter: %w", err)
	}
	s.logger.Info("newsletter deleted", "newsletter", n.ID, "by", u.ID)
	return nil
}
