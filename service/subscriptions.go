package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/newsroom/models"
)

type SubscriptionInput struct {
	PublisherID  string `json:"publisherId"`
	JournalistID string `json:"journalistId"`
}

// SubscribeResult reports whether Create made a new row. When it did not,
// Subscription is the existing row and Warning says why.
type SubscribeResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Created      bool                 `json:"created"`
	Warning      string               `json:"warning,omitempty"`
}

// JournalistSummary is the public face of a journalist account.
type JournalistSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ArticleSummary is an article enriched with display names.
type ArticleSummary struct {
	models.Article
	AuthorName    string `json:"authorName"`
	PublisherName string `json:"publisherName,omitempty"`
	CategoryName  string `json:"categoryName,omitempty"`
}

// SubscriptionOverview is the composite "my subscriptions" read.
type SubscriptionOverview struct {
	Publishers  []models.Publisher  `json:"publishers"`
	Journalists []JournalistSummary `json:"journalists"`
	Articles    []ArticleSummary    `json:"articles"`
}

type Subscriptions struct {
	repo   Repository
	caps   *Capabilities
	vis    *Visibility
	now    func() time.Time
	logger *slog.Logger
}

func NewSubscriptions(repo Repository, caps *Capabilities, vis *Visibility, now func() time.Time, logger *slog.Logger) *Subscriptions {
	return &Subscriptions{repo: repo, caps: caps, vis: vis, now: now, logger: logger.With("component", "subscriptions")}
}

func (s *Subscriptions) List(ctx context.Context, u *models.User) ([]models.Subscription, error) {
	if err := s.caps.Require(u, ResSubscriptions, ActList); err != nil {
		return nil, err
	}
	subs, err := s.repo.SubscriptionsByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// Create subscribes the caller to exactly one publisher or journalist. An
// existing subscription to the same target is returned as is, with a warning.
func (s *Subscriptions) Create(ctx context.Context, u *models.User, in SubscriptionInput) (*SubscribeResult, error) {
	if err := s.caps.Require(u, ResSubscriptions, ActCreate); err != nil {
		return nil, permissionError("only readers can subscribe")
	}
	in.PublisherID = strings.TrimSpace(in.PublisherID)
	in.JournalistID = strings.TrimSpace(in.JournalistID)
	switch {
	case in.PublisherID != "" && in.JournalistID != "":
		return nil, validationError("subscribe to either a publisher or a journalist, not both")
	case in.PublisherID == "" && in.JournalistID == "":
		return nil, validationError("subscribe to a publisher or a journalist")
	}

	target, err := s.targetName(ctx, in)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindSubscription(ctx, u.ID, in.PublisherID, in.JournalistID)
	if err != nil {
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	if existing != nil {
		return &SubscribeResult{Subscription: existing, Warning: "You are already subscribed to " + target + "."}, nil
	}

	sub := &models.Subscription{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		PublisherID:  in.PublisherID,
		JournalistID: in.JournalistID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			return nil, fmt.Errorf("create subscription: %w", err)
		}
		// Lost a race with an identical request; report the winner's row.
		existing, ferr := s.repo.FindSubscription(ctx, u.ID, in.PublisherID, in.JournalistID)
		if ferr != nil || existing == nil {
			return nil, conflictError("already subscribed to %s", target)
		}
		return &SubscribeResult{Subscription: existing, Warning: "You are already subscribed to " + target + "."}, nil
	}
	s.logger.Info("subscribed", "user", u.ID, "publisher", sub.PublisherID, "journalist", sub.JournalistID)
	return &SubscribeResult{Subscription: sub, Created: true}, nil
}

func (s *Subscriptions) targetName(ctx context.Context, in SubscriptionInput) (string, error) {
	if in.PublisherID != "" {
		p, err := s.repo.PublisherByID(ctx, in.PublisherID)
		if err != nil {
			return "", fmt.Errorf("load publisher: %w", err)
		}
		if p == nil {
			return "", validationError("unknown publisher")
		}
		return p.Name, nil
	}
	j, err := s.repo.UserByID(ctx, in.JournalistID)
	if err != nil {
		return "", fmt.Errorf("load journalist: %w", err)
	}
	if j == nil || j.Role != models.RoleJournalist {
		return "", validationError("unknown journalist")
	}
	return j.Username, nil
}

// Get returns one of the caller's own subscriptions.
func (s *Subscriptions) Get(ctx context.Context, u *models.User, id string) (*models.Subscription, error) {
	if err := s.caps.Require(u, ResSubscriptions, ActRead); err != nil {
		return nil, err
	}
	sub, err := s.repo.SubscriptionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil || sub.UserID != u.ID {
		return nil, notFoundError("subscription")
	}
	return sub, nil
}

func (s *Subscriptions) Delete(ctx context.Context, u *models.User, id string) error {
	if err := s.caps.Require(u, ResSubscriptions, ActDelete); err != nil {
		return err
	}
	sub, err := s.Get(ctx, u, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteSubscription(ctx, sub.ID); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	s.logger.Info("unsubscribed", "user", u.ID, "publisher", sub.PublisherID, "journalist", sub.JournalistID)
	return nil
}

// Overview lists what the reader follows and the published articles that
// reach them through those subscriptions.
func (s *Subscriptions) Overview(ctx context.Context, u *models.User) (*SubscriptionOverview, error) {
	if err := s.caps.Require(u, ResSubscriptions, ActList); err != nil {
		return nil, permissionError("only readers have subscriptions")
	}
	pubIDs, journalistIDs, err := s.vis.SubscribedTargets(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	out := &SubscriptionOverview{
		Publishers:  []models.Publisher{},
		Journalists: []JournalistSummary{},
		Articles:    []ArticleSummary{},
	}

	publishers, err := s.repo.ListPublishers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publishers: %w", err)
	}
	pubNames := make(map[string]string, len(publishers))
	for _, p := range publishers {
		pubNames[p.ID] = p.Name
		if containsString(pubIDs, p.ID) {
			out.Publishers = append(out.Publishers, p)
		}
	}

	journalists, err := s.repo.UsersByIDs(ctx, journalistIDs)
	if err != nil {
		return nil, fmt.Errorf("load journalists: %w", err)
	}
	for _, j := range journalists {
		out.Journalists = append(out.Journalists, JournalistSummary{ID: j.ID, Username: j.Username, Email: j.Email})
	}

	scope := readerScope(pubIDs, journalistIDs)
	if scope.IsEmpty() {
		return out, nil
	}
	articles, _, err := s.repo.FindArticles(ctx, ArticleQuery{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	out.Articles, err = summarize(ctx, s.repo, articles, pubNames)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func summarize(ctx context.Context, repo Repository, articles []models.Article, pubNames map[string]string) ([]ArticleSummary, error) {
	authorIDs := make([]string, 0, len(articles))
	for _, a := range articles {
		authorIDs = append(authorIDs, a.AuthorID)
	}
	authors, err := repo.UsersByIDs(ctx, dedupe(authorIDs))
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	authorNames := make(map[string]string, len(authors))
	for _, a := range authors {
		authorNames[a.ID] = a.Username
	}
	categories, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	catNames := make(map[string]string, len(categories))
	for _, c := range categories {
		catNames[c.ID] = c.Name
	}

	out := make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		a.HasImage = a.ImageKey != ""
		out = append(out, ArticleSummary{
			Article:       a,
			AuthorName:    authorNames[a.AuthorID],
			PublisherName: pubNames[a.PublisherID],
			CategoryName:  catNames[a.CategoryID],
		})
	}
	return out, nil
}
