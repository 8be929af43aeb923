package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := New(db, SQLite)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mustUser(t *testing.T, s *Store, id string, role models.Role) models.User {
	t.Helper()
	u := models.User{ID: id, Username: id, Email: id + "@example.com", Password: "x", Role: role, CreatedAt: epoch}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
	return u
}

func mustArticle(t *testing.T, s *Store, id, author, publisher string, status models.ArticleStatus, offset time.Duration) models.Article {
	t.Helper()
	a := models.Article{
		ID: id, Title: "Title " + id, Content: "body of " + id, AuthorID: author, PublisherID: publisher,
		Status: status, CreatedAt: epoch.Add(offset), UpdatedAt: epoch.Add(offset),
	}
	if err := s.CreateArticle(context.Background(), &a); err != nil {
		t.Fatalf("create article %s: %v", id, err)
	}
	return a
}

func TestUsersUniqueAndLookup(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "alice", models.RoleReader)
	dup := models.User{ID: "other", Username: "alice", Email: "new@example.com", Password: "x", Role: models.RoleReader, CreatedAt: epoch}
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, service.ErrDuplicate) {
		t.Fatalf("duplicate username: got %v, want ErrDuplicate", err)
	}

	got, err := s.UserByEmail(ctx, u.Email)
	if err != nil || got == nil || got.ID != u.ID || got.Role != models.RoleReader {
		t.Fatalf("UserByEmail = %+v, %v", got, err)
	}
	if !got.CreatedAt.Equal(epoch) {
		t.Fatalf("created_at round trip: %v", got.CreatedAt)
	}
	missing, err := s.UserByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing user = %+v, %v", missing, err)
	}
}

func TestDeleteUserFreesUsername(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "gina", models.RoleEditor)
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if got, err := s.UserByID(ctx, u.ID); err != nil || got != nil {
		t.Fatalf("UserByID after delete = %+v, %v", got, err)
	}
	mustUser(t, s, "gina", models.RoleEditor)
}

func TestPublisherStaff(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	ed := mustUser(t, s, "ed", models.RoleEditor)
	jo := mustUser(t, s, "jo", models.RoleJournalist)
	p := models.Publisher{ID: "p1", Name: "Daily", CreatedAt: epoch}
	if err := s.CreatePublisher(ctx, &p); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPublisherEditor(ctx, p.ID, ed.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPublisherEditor(ctx, p.ID, ed.ID); err != nil {
		t.Fatalf("adding an editor twice should be a no-op: %v", err)
	}
	if err := s.AddPublisherJournalist(ctx, p.ID, jo.ID); err != nil {
		t.Fatal(err)
	}

	got, err := s.PublisherByID(ctx, p.ID)
	if err != nil || got == nil {
		t.Fatalf("PublisherByID: %+v, %v", got, err)
	}
	if !got.HasEditor(ed.ID) || !got.HasJournalist(jo.ID) || len(got.EditorIDs) != 1 {
		t.Fatalf("staff not loaded: %+v", got)
	}
	mine, err := s.PublishersByEditor(ctx, ed.ID)
	if err != nil || len(mine) != 1 || mine[0].ID != p.ID {
		t.Fatalf("PublishersByEditor = %+v, %v", mine, err)
	}
	none, err := s.PublishersByEditor(ctx, jo.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("journalist edits nothing, got %+v, %v", none, err)
	}

	if err := s.DeletePublisher(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if gone, _ := s.PublisherByID(ctx, p.ID); gone != nil {
		t.Fatalf("publisher still present: %+v", gone)
	}
}

func TestFindArticlesScope(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "j1", models.RoleJournalist)
	mustUser(t, s, "j2", models.RoleJournalist)
	for _, p := range []models.Publisher{{ID: "p1", Name: "One", CreatedAt: epoch}, {ID: "p2", Name: "Two", CreatedAt: epoch}} {
		if err := s.CreatePublisher(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	mustArticle(t, s, "a1", "j1", "p1", models.StatusPublished, time.Minute)
	mustArticle(t, s, "a2", "j1", "", models.StatusDraft, 2*time.Minute)
	mustArticle(t, s, "a3", "j2", "p2", models.StatusPublished, 3*time.Minute)
	mustArticle(t, s, "a4", "j2", "p2", models.StatusPending, 4*time.Minute)

	published := []models.ArticleStatus{models.StatusPublished}
	cases := []struct {
		name  string
		scope service.Scope
		want  []string
	}{
		{"empty scope", service.Scope{}, nil},
		{"public", service.PublicScope(), []string{"a3", "a1"}},
		{"reader of p1", service.Scope{Clauses: []service.Clause{{Statuses: published, PublisherIDs: []string{"p1"}}}}, []string{"a1"}},
		{"reader of j2", service.Scope{Clauses: []service.Clause{{Statuses: published, AuthorIDs: []string{"j2"}}}}, []string{"a3"}},
		{"journalist j1", service.Scope{Clauses: []service.Clause{{AuthorIDs: []string{"j1"}}}}, []string{"a2", "a1"}},
		{"editor of p1", service.Scope{Clauses: []service.Clause{
			{PublisherIDs: []string{"p1"}},
			{Statuses: []models.ArticleStatus{models.StatusPending}},
		}}, []string{"a4", "a1"}},
	}
	for _, tc := range cases {
		items, total, err := s.FindArticles(ctx, service.ArticleQuery{Scope: tc.scope})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if int(total) != len(tc.want) || len(items) != len(tc.want) {
			t.Fatalf("%s: got %d items (total %d), want %v", tc.name, len(items), total, tc.want)
		}
		for i, id := range tc.want {
			if items[i].ID != id {
				t.Fatalf("%s: item %d = %s, want %s", tc.name, i, items[i].ID, id)
			}
		}
	}

	items, total, err := s.FindArticles(ctx, service.ArticleQuery{Scope: service.PublicScope(), Search: "BODY OF A3"})
	if err != nil || total != 1 || items[0].ID != "a3" {
		t.Fatalf("search: %+v, %d, %v", items, total, err)
	}
	items, total, err = s.FindArticles(ctx, service.ArticleQuery{Scope: service.PublicScope(), Limit: 1, Offset: 1})
	if err != nil || total != 2 || len(items) != 1 || items[0].ID != "a1" {
		t.Fatalf("paging: %+v, %d, %v", items, total, err)
	}
}

func TestApproveArticleOnlyOnce(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "j1", models.RoleJournalist)
	mustUser(t, s, "ed", models.RoleEditor)
	a := mustArticle(t, s, "a1", "j1", "", models.StatusPending, 0)

	now := epoch.Add(time.Hour)
	a.IsApproved, a.Status, a.ApprovedBy, a.ApprovedAt, a.UpdatedAt = true, models.StatusApproved, "ed", &now, now
	a.Normalize(now)

	won, err := s.ApproveArticle(ctx, &a)
	if err != nil || !won {
		t.Fatalf("first approve: %v, %v", won, err)
	}
	won, err = s.ApproveArticle(ctx, &a)
	if err != nil || won {
		t.Fatalf("second approve should lose: %v, %v", won, err)
	}

	got, err := s.ArticleByID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsApproved || got.Status != models.StatusPublished || got.ApprovedBy != "ed" {
		t.Fatalf("stored article = %+v", got)
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(now) || got.PublishedAt == nil {
		t.Fatalf("timestamps not stored: %+v", got)
	}
}

func TestUpdateArticleLeavesWorkflowFields(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "j1", models.RoleJournalist)
	mustUser(t, s, "ed", models.RoleEditor)
	stale := mustArticle(t, s, "a1", "j1", "", models.StatusPending, 0)

	now := epoch.Add(time.Hour)
	approved := stale
	approved.IsApproved, approved.Status, approved.ApprovedBy, approved.ApprovedAt, approved.PublishedAt = true, models.StatusPublished, "ed", &now, &now
	if won, err := s.ApproveArticle(ctx, &approved); err != nil || !won {
		t.Fatalf("approve: %v, %v", won, err)
	}
	if err := s.SetArticleImage(ctx, "a1", "articles/a1/x.png"); err != nil {
		t.Fatal(err)
	}

	stale.Title, stale.UpdatedAt = "Edited", now.Add(time.Minute)
	if err := s.UpdateArticle(ctx, &stale); err != nil {
		t.Fatal(err)
	}
	got, err := s.ArticleByID(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Edited" || !got.IsApproved || got.Status != models.StatusPublished || got.ApprovedBy != "ed" {
		t.Fatalf("stored article = %+v", got)
	}
	if got.PublishedAt == nil || got.ImageKey != "articles/a1/x.png" {
		t.Fatalf("publish time or image lost: %+v", got)
	}
}

func TestTransitionArticle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "j1", models.RoleJournalist)
	a := mustArticle(t, s, "a1", "j1", "", models.StatusDraft, 0)

	a.Status = models.StatusPending
	ok, err := s.TransitionArticle(ctx, &a, models.StatusDraft, models.StatusRejected)
	if err != nil || !ok {
		t.Fatalf("draft -> pending: %v, %v", ok, err)
	}
	a.Status = models.StatusRejected
	ok, err = s.TransitionArticle(ctx, &a, models.StatusDraft)
	if err != nil || ok {
		t.Fatalf("pending is not draft, transition should not apply: %v, %v", ok, err)
	}
}

func TestSubscriptions(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "r1", models.RoleReader)
	mustUser(t, s, "r2", models.RoleReader)
	mustUser(t, s, "j1", models.RoleJournalist)
	p := models.Publisher{ID: "p1", Name: "One", CreatedAt: epoch}
	if err := s.CreatePublisher(ctx, &p); err != nil {
		t.Fatal(err)
	}

	subs := []models.Subscription{
		{ID: "s1", UserID: "r1", PublisherID: "p1", CreatedAt: epoch},
		{ID: "s2", UserID: "r1", JournalistID: "j1", CreatedAt: epoch.Add(time.Second)},
		{ID: "s3", UserID: "r2", JournalistID: "j1", CreatedAt: epoch},
	}
	for i := range subs {
		if err := s.CreateSubscription(ctx, &subs[i]); err != nil {
			t.Fatalf("create %s: %v", subs[i].ID, err)
		}
	}

	dup := models.Subscription{ID: "s4", UserID: "r1", PublisherID: "p1", CreatedAt: epoch}
	if err := s.CreateSubscription(ctx, &dup); !errors.Is(err, service.ErrDuplicate) {
		t.Fatalf("duplicate subscription: got %v", err)
	}
	both := models.Subscription{ID: "s5", UserID: "r2", PublisherID: "p1", JournalistID: "j1", CreatedAt: epoch}
	if err := s.CreateSubscription(ctx, &both); err == nil {
		t.Fatal("a subscription to both a publisher and a journalist must be rejected")
	}

	found, err := s.FindSubscription(ctx, "r1", "", "j1")
	if err != nil || found == nil || found.ID != "s2" {
		t.Fatalf("FindSubscription = %+v, %v", found, err)
	}
	mine, err := s.SubscriptionsByUser(ctx, "r1")
	if err != nil || len(mine) != 2 || mine[0].ID != "s1" {
		t.Fatalf("SubscriptionsByUser = %+v, %v", mine, err)
	}

	ids, err := s.SubscriberIDs(ctx, "p1", "j1")
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for _, id := range ids {
		counts[id]++
	}
	if counts["r1"] != 2 || counts["r2"] != 1 {
		t.Fatalf("SubscriberIDs = %v", ids)
	}
}

func TestResetTokenSingleUse(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	mustUser(t, s, "alice", models.RoleReader)
	tok := models.PasswordResetToken{ID: "t1", UserID: "alice", Token: "abc", CreatedAt: epoch}
	if err := s.CreateResetToken(ctx, &tok); err != nil {
		t.Fatal(err)
	}
	got, err := s.ResetTokenByToken(ctx, "abc")
	if err != nil || got == nil || got.IsUsed || !got.CreatedAt.Equal(epoch) {
		t.Fatalf("ResetTokenByToken = %+v, %v", got, err)
	}

	ok, err := s.MarkResetTokenUsed(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("first use: %v, %v", ok, err)
	}
	ok, err = s.MarkResetTokenUsed(ctx, "abc")
	if err != nil || ok {
		t.Fatalf("second use must fail: %v, %v", ok, err)
	}
}
