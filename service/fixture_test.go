package service_test

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/newsroom/logging"
	"github.com/kevinaaaquil/newsroom/memstore"
	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
	"github.com/kevinaaaquil/newsroom/utils"
)

const siteURL = "https://news.example"

var allItems = utils.PaginationParams{PageNum: 1, PageSize: 100}

type sentMail struct {
	msg service.Message
	to  []string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg service.Message, to []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{msg: msg, to: append([]string(nil), to...)})
	return m.err
}

func (m *fakeMailer) calls() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type fakePoster struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (p *fakePoster) Post(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, text)
	return p.err
}

func (p *fakePoster) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (l fakeLimiter) Allow(context.Context, string) (bool, error) { return l.allow, l.err }

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func (m *fakeMedia) Upload(_ context.Context, prefix, name string, body io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = map[string]string{}
	}
	key := prefix + name
	m.objects[key] = string(b)
	return key, nil
}

func (m *fakeMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *fakeMedia) PresignedGetURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://media.example/" + key + "?signed", nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	repo   *memstore.Store
	engine *service.Engine
	mailer *fakeMailer
	poster *fakePoster
	clock  *clock
	seq    int
}

type fixtureOption func(*service.Options)

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		repo:   memstore.New(),
		mailer: &fakeMailer{},
		poster: &fakePoster{},
		clock:  newClock(),
	}
	o := service.Options{
		Mailer:        f.mailer,
		Poster:        f.poster,
		SiteURL:       siteURL,
		SocialEnabled: true,
		Now:           f.clock.Now,
		Logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	engine, err := service.New(f.repo, o)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	f.engine = engine
	return f
}

func (f *fixture) user(username string, role models.Role) *models.User {
	f.t.Helper()
	u := &models.User{
		ID:        "user-" + username,
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: f.clock.Now(),
	}
	if err := f.repo.CreateUser(f.ctx, u); err != nil {
		f.t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) publisher(name string, editors ...*models.User) *models.Publisher {
	f.t.Helper()
	p := &models.Publisher{ID: "pub-" + name, Name: name, CreatedAt: f.clock.Now()}
	if err := f.repo.CreatePublisher(f.ctx, p); err != nil {
		f.t.Fatalf("create publisher %s: %v", name, err)
	}
	for _, e := range editors {
		if err := f.repo.AddPublisherEditor(f.ctx, p.ID, e.ID); err != nil {
			f.t.Fatalf("add editor: %v", err)
		}
		p.EditorIDs = append(p.EditorIDs, e.ID)
	}
	return p
}

// article stores an article directly, bypassing the workflow.
func (f *fixture) article(title string, author *models.User, pub *models.Publisher, status models.ArticleStatus) *models.Article {
	f.t.Helper()
	f.seq++
	a := &models.Article{
		ID:        title,
		Title:     title,
		Content:   "Body of " + title,
		Summary:   "Summary of " + title,
		AuthorID:  author.ID,
		Status:    status,
		CreatedAt: f.clock.Now().Add(time.Duration(f.seq) * time.Minute),
	}
	a.UpdatedAt = a.CreatedAt
	if pub != nil {
		a.PublisherID = pub.ID
	}
	if status == models.StatusPublished {
		a.IsApproved = true
		a.ApprovedBy = "seed"
		a.PublishedAt = &a.CreatedAt
	}
	if err := f.repo.CreateArticle(f.ctx, a); err != nil {
		f.t.Fatalf("create article %s: %v", title, err)
	}
	return a
}

func (f *fixture) subscribe(reader *models.User, pub *models.Publisher, journalist *models.User) {
	f.t.Helper()
	f.seq++
	sub := &models.Subscription{
		ID:        "sub-" + strconv.Itoa(f.seq),
		UserID:    reader.ID,
		CreatedAt: f.clock.Now().Add(time.Duration(f.seq) * time.Second),
	}
	if pub != nil {
		sub.PublisherID = pub.ID
	}
	if journalist != nil {
		sub.JournalistID = journalist.ID
	}
	if err := f.repo.CreateSubscription(f.ctx, sub); err != nil {
		f.t.Fatalf("create subscription: %v", err)
	}
}

func titles(items []models.Article) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Title)
	}
	return out
}

func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]int, len(got))
	for _, g := range got {
		seen[g]++
	}
	for _, w := range want {
		if seen[w] == 0 {
			return false
		}
		seen[w]--
	}
	return true
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}
