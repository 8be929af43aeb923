package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/newsroom/models"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PublisherStaff is a publisher together with its people.
type PublisherStaff struct {
	models.Publisher
	Editors     []JournalistSummary `json:"editors"`
	Journalists []JournalistSummary `json:"journalists"`
}

// Dashboard is the editor's overview of the publishers they run.
type Dashboard struct {
	Publishers     []PublisherStaff `json:"publishers"`
	RecentArticles []ArticleSummary `json:"recentArticles"`
	TotalArticles  int64            `json:"totalArticles"`
	PendingCount   int64            `json:"pendingCount"`
}

const dashboardRecent = 10

// Directory serves publishers, categories and journalists.
type Directory struct {
	repo   Repository
	caps   *Capabilities
	logger *slog.Logger
}

func NewDirectory(repo Repository, caps *Capabilities, logger *slog.Logger) *Directory {
	return &Directory{repo: repo, caps: caps, logger: logger.With("component", "directory")}
}

func (s *Directory) Publishers(ctx context.Context, u *models.User) ([]models.Publisher, error) {
	if err := s.caps.Require(u, ResPublishers, ActList); err != nil {
		return nil, err
	}
	ps, err := s.repo.ListPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	if ps == nil {
		ps = []models.Publisher{}
	}
	return ps, nil
}

func (s *Directory) Categories(ctx context.Context, u *models.User) ([]models.Category, error) {
	if err := s.caps.Require(u, ResCategories, ActList); err != nil {
		return nil, err
	}
	cs, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if cs == nil {
		cs = []models.Category{}
	}
	return cs, nil
}

func (s *Directory) CreateCategory(ctx context.Context, u *models.User, in CategoryInput) (*models.Category, error) {
	if err := s.caps.Require(u, ResCategories, ActCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("category name is required")
	}
	if len([]rune(name)) > 100 {
		return nil, validationError("category name must be at most 100 characters")
	}
	c := &models.Category{ID: uuid.NewString(), Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, conflictError("category %q already exists", name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info("category created", "category", c.ID, "by", u.ID)
	return c, nil
}

// Journalists lists journalist accounts so readers can pick subscription targets.
func (s *Directory) Journalists(ctx context.Context, u *models.User) ([]JournalistSummary, error) {
	if err := s.caps.Require(u, ResJournalists, ActList); err != nil {
		return nil, err
	}
	users, err := s.repo.UsersByRole(ctx, models.RoleJournalist)
	if err != nil {
		return nil, fmt.Errorf("list journalists: %w", err)
	}
	return summaries(users), nil
}

// AddStaff attaches an existing journalist or editor account to a publisher
// the caller edits.
func (s *Directory) AddStaff(ctx context.Context, u *models.User, publisherID, userID string, role models.Role) (*models.Publisher, error) {
	if err := s.caps.Require(u, ResPublishers, ActManage); err != nil {
		return nil, err
	}
	p, err := s.repo.PublisherByID(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("load publisher: %w", err)
	}
	if p == nil || !p.HasEditor(u.ID) {
		return nil, notFoundError("publisher")
	}
	member, err := s.repo.UserByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if member == nil || member.Role != role {
		return nil, validationError("no %s with that id", role)
	}

	switch role {
	case models.RoleJournalist:
		if p.HasJournalist(member.ID) {
			return p, nil
		}
		err = s.repo.AddPublisherJournalist(ctx, p.ID, member.ID)
		p.JournalistIDs = append(p.JournalistIDs, member.ID)
	case models.RoleEditor:
		if p.HasEditor(member.ID) {
			return p, nil
		}
		err = s.repo.AddPublisherEditor(ctx, p.ID, member.ID)
		p.EditorIDs = append(p.EditorIDs, member.ID)
	default:
		return nil, validationError("only journalists and editors can join a publisher")
	}
	if err != nil {
		return nil, fmt.Errorf("add %s: %w", role, err)
	}
	s.logger.Info("publisher staff added", "publisher", p.ID, "user", member.ID, "role", role, "by", u.ID)
	return p, nil
}

// Dashboard summarizes the publishers the editor runs.
func (s *Directory) Dashboard(ctx context.Context, u *models.User) (*Dashboard, error) {
	if err := s.caps.Require(u, ResPublishers, ActManage); err != nil {
		return nil, permissionError("only editors can access the publisher dashboard")
	}
	pubs, err := s.repo.PublishersByEditor(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load editor publishers: %w", err)
	}
	if len(pubs) == 0 {
		return nil, notFoundError("publisher")
	}

	d := &Dashboard{Publishers: make([]PublisherStaff, 0, len(pubs)), RecentArticles: []ArticleSummary{}}
	ids := make([]string, 0, len(pubs))
	names := make(map[string]string, len(pubs))
	for _, p := range pubs {
		ids = append(ids, p.ID)
		names[p.ID] = p.Name
		editors, err := s.repo.UsersByIDs(ctx, p.EditorIDs)
		if err != nil {
			return nil, fmt.Errorf("load editors: %w", err)
		}
		journalists, err := s.repo.UsersByIDs(ctx, p.JournalistIDs)
		if err != nil {
			return nil, fmt.Errorf("load journalists: %w", err)
		}
		d.Publishers = append(d.Publishers, PublisherStaff{Publisher: p, Editors: summaries(editors), Journalists: summaries(journalists)})
	}

	own := Scope{Clauses: []Clause{{PublisherIDs: ids}}}
	recent, total, err := s.repo.FindArticles(ctx, ArticleQuery{Scope: own, Limit: dashboardRecent})
	if err != nil {
		return nil, fmt.Errorf("recent articles: %w", err)
	}
	d.TotalArticles = total
	pending := Scope{Clauses: []Clause{{PublisherIDs: ids, Statuses: []models.ArticleStatus{models.StatusPending}}}}
	if _, d.PendingCount, err = s.repo.FindArticles(ctx, ArticleQuery{Scope: pending, Limit: 1}); err != nil {
		return nil, fmt.Errorf("pending articles: %w", err)
	}
	if d.RecentArticles, err = summarize(ctx, s.repo, recent, names); err != nil {
		return nil, err
	}
	return d, nil
}

func summaries(users []models.User) []JournalistSummary {
	out := make([]JournalistSummary, 0, len(users))
	for _, u := range users {
		out = append(out, JournalistSummary{ID: u.ID, Username: u.Username, Email: u.Email})
	}
	return out
}
