// Package memstore is a process-local implementation of service.Repository.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

type Store struct {
	mu            sync.RWMutex
	users         map[string]models.User
	publishers    map[string]models.Publisher
	categories    map[string]models.Category
	articles      map[string]models.Article
	newsletters   map[string]models.Newsletter
	subscriptions map[string]models.Subscription
	resetTokens   map[string]models.PasswordResetToken // by token
}

var _ service.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		users:         map[string]models.User{},
		publishers:    map[string]models.Publisher{},
		categories:    map[string]models.Category{},
		articles:      map[string]models.Article{},
		newsletters:   map[string]models.Newsletter{},
		subscriptions: map[string]models.Subscription{},
		resetTokens:   map[string]models.PasswordResetToken{},
	}
}

// Users

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Username == u.Username || other.Email == u.Email {
			return service.ErrDuplicate
		}
	}
	if _, ok := s.users[u.ID]; ok {
		return service.ErrDuplicate
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

func (s *Store) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) UsersByIDs(_ context.Context, ids []string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	seen := map[string]bool{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UsersByRole(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	u.Password = hash
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// Publishers and categories

func (s *Store) CreatePublisher(_ context.Context, p *models.Publisher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.publishers {
		if other.Name == p.Name {
			return service.ErrDuplicate
		}
	}
	s.publishers[p.ID] = clonePublisher(*p)
	return nil
}

func (s *Store) DeletePublisher(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.publishers, id)
	return nil
}

func (s *Store) PublisherByID(_ context.Context, id string) (*models.Publisher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.publishers[id]
	if !ok {
		return nil, nil
	}
	p = clonePublisher(p)
	return &p, nil
}

func (s *Store) ListPublishers(_ context.Context) ([]models.Publisher, error) {
	return s.publishersWhere(func(models.Publisher) bool { return true }), nil
}

func (s *Store) PublishersByEditor(_ context.Context, userID string) ([]models.Publisher, error) {
	return s.publishersWhere(func(p models.Publisher) bool { return p.HasEditor(userID) }), nil
}

func (s *Store) publishersWhere(match func(models.Publisher) bool) []models.Publisher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Publisher{}
	for _, p := range s.publishers {
		if match(p) {
			out = append(out, clonePublisher(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Store) AddPublisherEditor(_ context.Context, publisherID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publishers[publisherID]
	if !ok || p.HasEditor(userID) {
		return nil
	}
	p = clonePublisher(p)
	p.EditorIDs = append(p.EditorIDs, userID)
	s.publishers[publisherID] = p
	return nil
}

func (s *Store) AddPublisherJournalist(_ context.Context, publisherID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.publishers[publisherID]
	if !ok || p.HasJournalist(userID) {
		return nil
	}
	p = clonePublisher(p)
	p.JournalistIDs = append(p.JournalistIDs, userID)
	s.publishers[publisherID] = p
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.categories {
		if other.Name == c.Name {
			return service.ErrDuplicate
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) CategoryByID(_ context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Category{}
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Articles

func (s *Store) CreateArticle(_ context.Context, a *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[a.ID]; ok {
		return service.ErrDuplicate
	}
	s.articles[a.ID] = *a
	return nil
}

func (s *Store) ArticleByID(_ context.Context, id string) (*models.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) UpdateArticle(_ context.Context, a *models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.articles[a.ID]
	if !ok {
		return nil
	}
	cur.Title = a.Title
	cur.Content = a.Content
	cur.Summary = a.Summary
	cur.PublisherID = a.PublisherID
	cur.CategoryID = a.CategoryID
	cur.UpdatedAt = a.UpdatedAt
	s.articles[a.ID] = cur
	return nil
}

func (s *Store) DeleteArticle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.articles, id)
	return nil
}

func (s *Store) FindArticles(_ context.Context, q service.ArticleQuery) ([]models.Article, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(q.Search)
	var matched []models.Article
	for _, a := range s.articles {
		if !q.Scope.AllowsArticle(&a) {
			continue
		}
		if q.CategoryID != "" && a.CategoryID != q.CategoryID {
			continue
		}
		if q.PublisherID != "" && a.PublisherID != q.PublisherID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(a.Title), needle) && !strings.Contains(strings.ToLower(a.Content), needle) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, q.Limit, q.Offset), int64(len(matched)), nil
}

func (s *Store) ApproveArticle(_ context.Context, a *models.Article) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.articles[a.ID]
	if !ok || cur.IsApproved {
		return false, nil
	}
	cur.IsApproved = a.IsApproved
	cur.Status = a.Status
	cur.ApprovedBy = a.ApprovedBy
	cur.ApprovedAt = a.ApprovedAt
	cur.PublishedAt = a.PublishedAt
	cur.UpdatedAt = a.UpdatedAt
	s.articles[a.ID] = cur
	return true, nil
}

func (s *Store) TransitionArticle(_ context.Context, a *models.Article, from ...models.ArticleStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.articles[a.ID]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, st := range from {
		if cur.Status == st {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	cur.Status = a.Status
	cur.UpdatedAt = a.UpdatedAt
	s.articles[a.ID] = cur
	return true, nil
}

func (s *Store) SetArticleImage(_ context.Context, id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.articles[id]; ok {
		a.ImageKey = key
		s.articles[id] = a
	}
	return nil
}

// Newsletters

func (s *Store) CreateNewsletter(_ context.Context, n *models.Newsletter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newsletters[n.ID] = *n
	return nil
}

func (s *Store) NewsletterByID(_ context.Context, id string) (*models.Newsletter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.newsletters[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *Store) DeleteNewsletter(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.newsletters, id)
	return nil
}

func (s *Store) FindNewsletters(_ context.Context, q service.NewsletterQuery) ([]models.Newsletter, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.Newsletter
	for _, n := range s.newsletters {
		if q.Scope.AllowsNewsletter(&n) {
			matched = append(matched, n)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, q.Limit, q.Offset), int64(len(matched)), nil
}

// Subscriptions

func (s *Store) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.subscriptions {
		if other.UserID != sub.UserID {
			continue
		}
		if (sub.PublisherID != "" && other.PublisherID == sub.PublisherID) ||
			(sub.JournalistID != "" && other.JournalistID == sub.JournalistID) {
			return service.ErrDuplicate
		}
	}
	s.subscriptions[sub.ID] = *sub
	return nil
}

func (s *Store) SubscriptionByID(_ context.Context, id string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *Store) FindSubscription(_ context.Context, userID, publisherID, journalistID string) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscriptions {
		if sub.UserID == userID && sub.PublisherID == publisherID && sub.JournalistID == journalistID {
			return &sub, nil
		}
	}
	return nil, nil
}

func (s *Store) SubscriptionsByUser(_ context.Context, userID string) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Subscription{}
	for _, sub := range s.subscriptions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscriptions, id)
	return nil
}

func (s *Store) SubscriberIDs(_ context.Context, publisherID, journalistID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, sub := range s.subscriptions {
		if (publisherID != "" && sub.PublisherID == publisherID) ||
			(journalistID != "" && sub.JournalistID == journalistID) {
			out = append(out, sub.UserID)
		}
	}
	return out, nil
}

// Password reset tokens

func (s *Store) CreateResetToken(_ context.Context, t *models.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resetTokens[t.Token]; ok {
		return service.ErrDuplicate
	}
	s.resetTokens[t.Token] = *t
	return nil
}

func (s *Store) ResetTokenByToken(_ context.Context, token string) (*models.PasswordResetToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.resetTokens[token]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) MarkResetTokenUsed(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.resetTokens[token]
	if !ok || t.IsUsed {
		return false, nil
	}
	t.IsUsed = true
	s.resetTokens[token] = t
	return true, nil
}

func clonePublisher(p models.Publisher) models.Publisher {
	p.EditorIDs = append([]string(nil), p.EditorIDs...)
	p.JournalistIDs = append([]string(nil), p.JournalistIDs...)
	return p
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
