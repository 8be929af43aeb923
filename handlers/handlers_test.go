package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kevinaaaquil/newsroom/logging"
	"github.com/kevinaaaquil/newsroom/memstore"
	"github.com/kevinaaaquil/newsroom/service"
)

const testSecret = "handler-test-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo := memstore.New()
	engine, err := service.New(repo, service.Options{Logger: logging.Discard(), SiteURL: "https://news.example"})
	if err != nil {
		t.Fatal(err)
	}
	return NewRouter(engine, repo, RouterConfig{
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
		Logger:    logging.Discard(),
	})
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status %d, want %d: %s", rec.Code, code, rec.Body.String())
	}
}

type authResult struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func register(t *testing.T, h http.Handler, username, role string) authResult {
	t.Helper()
	rec := call(t, h, http.MethodPost, "/api/auth/register", "", service.Registration{
		Username: username, Email: username + "@example.com", Role: role,
		Password1: "long-enough", Password2: "long-enough",
	})
	expect(t, rec, http.StatusCreated)
	return decode[authResult](t, rec)
}

type articleBody struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	IsApproved bool   `json:"isApproved"`
}

func TestPublishingFlow(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)

	rec := call(t, h, http.MethodPost, "/api/publishers/register", "", service.PublisherRegistration{
		Name:   "Daily",
		Editor: service.Registration{Username: "eve", Email: "eve@example.com", Password1: "long-enough", Password2: "long-enough"},
	})
	expect(t, rec, http.StatusCreated)
	pub := decode[struct {
		Publisher struct{ ID string } `json:"publisher"`
	}](t, rec)

	rec = call(t, h, http.MethodPost, "/api/auth/login", "", LoginRequest{Login: "eve@example.com", Password: "long-enough"})
	expect(t, rec, http.StatusOK)
	editor := decode[authResult](t, rec)
	if editor.User.Role != "editor" {
		t.Fatalf("editor role = %q", editor.User.Role)
	}

	journalist := register(t, h, "jane", "journalist")
	reader := register(t, h, "rita", "reader")

	rec = call(t, h, http.MethodPost, "/api/subscriptions", reader.Token, service.SubscriptionInput{PublisherID: pub.Publisher.ID})
	expect(t, rec, http.StatusCreated)
	rec = call(t, h, http.MethodPost, "/api/subscriptions", reader.Token, service.SubscriptionInput{PublisherID: pub.Publisher.ID})
	expect(t, rec, http.StatusOK)
	if res := decode[service.SubscribeResult](t, rec); res.Warning != "You are already subscribed to Daily." {
		t.Fatalf("warning = %q", res.Warning)
	}

	rec = call(t, h, http.MethodPost, "/api/articles", journalist.Token, service.ArticleInput{
		Title: "Harbour", Content: "Text", PublisherID: pub.Publisher.ID,
	})
	expect(t, rec, http.StatusCreated)
	article := decode[articleBody](t, rec)
	if article.Status != "draft" {
		t.Fatalf("status = %q", article.Status)
	}

	rec = call(t, h, http.MethodPost, "/api/articles/"+article.ID+"/submit", journalist.Token, nil)
	expect(t, rec, http.StatusOK)

	rec = call(t, h, http.MethodGet, "/api/articles", reader.Token, nil)
	expect(t, rec, http.StatusOK)
	if feed := decode[service.Page[articleBody]](t, rec); len(feed.Items) != 0 {
		t.Fatalf("reader sees unpublished work: %+v", feed.Items)
	}

	rec = call(t, h, http.MethodPost, "/api/articles/"+article.ID+"/approve", journalist.Token, nil)
	expect(t, rec, http.StatusForbidden)
	rec = call(t, h, http.MethodPost, "/api/articles/"+article.ID+"/approve", editor.Token, nil)
	expect(t, rec, http.StatusOK)
	if got := decode[articleBody](t, rec); got.Status != "published" || !got.IsApproved {
		t.Fatalf("approved = %+v", got)
	}
	rec = call(t, h, http.MethodPost, "/api/articles/"+article.ID+"/approve", editor.Token, nil)
	expect(t, rec, http.StatusConflict)

	rec = call(t, h, http.MethodGet, "/api/articles", reader.Token, nil)
	expect(t, rec, http.StatusOK)
	feed := decode[service.Page[articleBody]](t, rec)
	if len(feed.Items) != 1 || feed.Items[0].ID != article.ID {
		t.Fatalf("reader feed = %+v", feed.Items)
	}

	rec = call(t, h, http.MethodGet, "/api/home", "", nil)
	expect(t, rec, http.StatusOK)
	if home := decode[service.Page[articleBody]](t, rec); home.Pagination.TotalCount != 1 {
		t.Fatalf("home = %+v", home.Pagination)
	}
	rec = call(t, h, http.MethodGet, "/api/public/articles/"+article.ID, "", nil)
	expect(t, rec, http.StatusOK)
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)
	reader := register(t, h, "rita", "reader")
	journalist := register(t, h, "jane", "journalist")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"no token", http.MethodGet, "/api/articles", "", nil, http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/articles", "garbage", nil, http.StatusUnauthorized},
		{"reader creates article", http.MethodPost, "/api/articles", reader.Token, service.ArticleInput{Title: "t", Content: "c"}, http.StatusForbidden},
		{"invalid json", http.MethodPost, "/api/articles", journalist.Token, "{", http.StatusBadRequest},
		{"validation", http.MethodPost, "/api/articles", journalist.Token, service.ArticleInput{Title: "", Content: "c"}, http.StatusBadRequest},
		{"missing article", http.MethodGet, "/api/articles/nope", reader.Token, nil, http.StatusNotFound},
		{"duplicate username", http.MethodPost, "/api/auth/register", "", service.Registration{Username: "rita", Email: "x@example.com", Role: "reader", Password1: "long-enough", Password2: "long-enough"}, http.StatusConflict},
		{"wrong password", http.MethodPost, "/api/auth/login", "", LoginRequest{Login: "rita", Password: "nope-nope"}, http.StatusUnauthorized},
		{"bad reset token", http.MethodGet, "/api/auth/reset-password/unknown", "", nil, http.StatusBadRequest},
		{"images disabled", http.MethodGet, "/api/public/articles/nope/image", "", nil, http.StatusServiceUnavailable},
		{"subscribe to both", http.MethodPost, "/api/subscriptions", reader.Token, service.SubscriptionInput{PublisherID: "p", JournalistID: "j"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := call(t, h, tc.method, tc.path, tc.token, tc.body)
		if rec.Code != tc.want {
			t.Errorf("%s: status %d, want %d: %s", tc.name, rec.Code, tc.want, rec.Body.String())
			continue
		}
		if !strings.Contains(rec.Body.String(), `"error"`) {
			t.Errorf("%s: no error body: %s", tc.name, rec.Body.String())
		}
	}
}

func TestForgotPasswordHidesUnknownEmail(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)
	register(t, h, "rita", "reader")

	known := call(t, h, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "rita@example.com"})
	unknown := call(t, h, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "ghost@example.com"})
	expect(t, known, http.StatusOK)
	expect(t, unknown, http.StatusOK)
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ: %q vs %q", known.Body.String(), unknown.Body.String())
	}
}

func TestMe(t *testing.T) {
	t.Parallel()
	h := newTestServer(t)
	reader := register(t, h, "rita", "reader")

	rec := call(t, h, http.MethodGet, "/api/me", reader.Token, nil)
	expect(t, rec, http.StatusOK)
	if me := decode[struct{ Username string }](t, rec); me.Username != "rita" {
		t.Fatalf("me = %+v", me)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("password leaked: %s", rec.Body.String())
	}
}
