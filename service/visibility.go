package service

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/newsroom/models"
)

// Clause is a conjunction of constraints on an article. An empty field places
// no constraint on that attribute.
type Clause struct {
	Statuses     []models.ArticleStatus
	AuthorIDs    []string
	PublisherIDs []string
}

func (c Clause) matches(status models.ArticleStatus, authorID, publisherID string) bool {
	if len(c.Statuses) > 0 && !containsStatus(c.Statuses, status) {
		return false
	}
	if len(c.AuthorIDs) > 0 && !containsString(c.AuthorIDs, authorID) {
		return false
	}
	if len(c.PublisherIDs) > 0 && (publisherID == "" || !containsString(c.PublisherIDs, publisherID)) {
		return false
	}
	return true
}

// Scope is a disjunction of clauses. The zero Scope matches nothing, so a
// caller that fails to build a scope sees an empty result rather than everything.
type Scope struct {
	Clauses []Clause
}

func (s Scope) IsEmpty() bool { return len(s.Clauses) == 0 }

// AllowsArticle is the in-memory form of the scope; stores translate the same
// clauses into their query language.
func (s Scope) AllowsArticle(a *models.Article) bool {
	for _, c := range s.Clauses {
		if c.matches(a.Status, a.AuthorID, a.PublisherID) {
			return true
		}
	}
	return false
}

// ForNewsletters adapts an article scope to newsletters, which have no workflow
// and count as published. Clauses that exclude published rows are dropped.
func (s Scope) ForNewsletters() Scope {
	var out Scope
	for _, c := range s.Clauses {
		if len(c.Statuses) > 0 && !containsStatus(c.Statuses, models.StatusPublished) {
			continue
		}
		out.Clauses = append(out.Clauses, Clause{AuthorIDs: c.AuthorIDs, PublisherIDs: c.PublisherIDs})
	}
	return out
}

func (s Scope) AllowsNewsletter(n *models.Newsletter) bool {
	for _, c := range s.Clauses {
		if c.matches(models.StatusPublished, n.AuthorID, n.PublisherID) {
			return true
		}
	}
	return false
}

// PublicScope is every published article, regardless of subscriptions.
func PublicScope() Scope {
	return Scope{Clauses: []Clause{{Statuses: []models.ArticleStatus{models.StatusPublished}}}}
}

// Visibility builds per-user scopes. Every surface that lists or fetches
// articles and newsletters goes through it.
type Visibility struct {
	repo Repository
}

func NewVisibility(repo Repository) *Visibility {
	return &Visibility{repo: repo}
}

// FeedScope is what a user sees when listing articles:
//   - reader: published rows from subscribed publishers or journalists
//   - journalist: their own rows, any status
//   - editor: rows of publishers they edit, any status, plus everything pending
//
// Unknown roles get the empty scope.
func (v *Visibility) FeedScope(ctx context.Context, u *models.User) (Scope, error) {
	if u == nil {
		return Scope{}, nil
	}
	switch u.Role {
	case models.RoleReader:
		pubs, journalists, err := v.SubscribedTargets(ctx, u.ID)
		if err != nil {
			return Scope{}, err
		}
		return readerScope(pubs, journalists), nil
	case models.RoleJournalist:
		return Scope{Clauses: []Clause{{AuthorIDs: []string{u.ID}}}}, nil
	case models.RoleEditor:
		return v.editorScope(ctx, u.ID)
	default:
		return Scope{}, nil
	}
}

// DetailScope decides single-article retrieval. Readers may open any published
// article (the public listing links to them); other roles use their feed scope.
func (v *Visibility) DetailScope(ctx context.Context, u *models.User) (Scope, error) {
	if u != nil && u.Role == models.RoleReader {
		return PublicScope(), nil
	}
	return v.FeedScope(ctx, u)
}

// NewsletterScope is FeedScope adapted to newsletters.
func (v *Visibility) NewsletterScope(ctx context.Context, u *models.User) (Scope, error) {
	s, err := v.FeedScope(ctx, u)
	if err != nil {
		return Scope{}, err
	}
	return s.ForNewsletters(), nil
}

// SubscribedTargets returns the publishers and journalists a user follows.
func (v *Visibility) SubscribedTargets(ctx context.Context, userID string) (publishers, journalists []string, err error) {
	subs, err := v.repo.SubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load subscriptions: %w", err)
	}
	for _, s := range subs {
		if s.PublisherID != "" {
			publishers = append(publishers, s.PublisherID)
		}
		if s.JournalistID != "" {
			journalists = append(journalists, s.JournalistID)
		}
	}
	return publishers, journalists, nil
}

func (v *Visibility) editorScope(ctx context.Context, userID string) (Scope, error) {
	pubs, err := v.repo.PublishersByEditor(ctx, userID)
	if err != nil {
		return Scope{}, fmt.Errorf("load editor publishers: %w", err)
	}
	var s Scope
	if len(pubs) > 0 {
		ids := make([]string, 0, len(pubs))
		for _, p := range pubs {
			ids = append(ids, p.ID)
		}
		s.Clauses = append(s.Clauses, Clause{PublisherIDs: ids})
	}
	s.Clauses = append(s.Clauses, Clause{Statuses: []models.ArticleStatus{models.StatusPending}})
	return s, nil
}

func readerScope(publishers, journalists []string) Scope {
	published := []models.ArticleStatus{models.StatusPublished}
	var s Scope
	if len(publishers) > 0 {
		s.Clauses = append(s.Clauses, Clause{Statuses: published, PublisherIDs: publishers})
	}
	if len(journalists) > 0 {
		s.Clauses = append(s.Clauses, Clause{Statuses: published, AuthorIDs: journalists})
	}
	return s
}

func containsString(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.ArticleStatus, s models.ArticleStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
