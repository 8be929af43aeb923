package service_test

import (
	"testing"

	"github.com/kevinaaaquil/newsroom/service"
)

func TestNewsletterVisibility(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)

	letter, err := n.engine.Newsletters.Create(n.ctx, n.otherJournalist, service.NewsletterInput{
		Title:       "Friday digest",
		Content:     "This week...",
		PublisherID: n.weekly.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	visible := map[string]bool{
		n.authorReader.ID:    true, // follows the author
		n.pubReader.ID:       false,
		n.otherJournalist.ID: true,
		n.journalist.ID:      false,
		n.otherEditor.ID:     true,
		n.editor.ID:          false,
	}
	for _, u := range []string{n.authorReader.ID, n.pubReader.ID, n.otherJournalist.ID, n.journalist.ID, n.otherEditor.ID, n.editor.ID} {
		user, _ := n.repo.UserByID(n.ctx, u)
		page, err := n.engine.Newsletters.List(n.ctx, user, allItems)
		if err != nil {
			t.Fatalf("%s: %v", user.Username, err)
		}
		if got := len(page.Items) == 1; got != visible[u] {
			t.Errorf("%s sees newsletter = %v, want %v", user.Username, got, visible[u])
		}
		_, err = n.engine.Newsletters.Get(n.ctx, user, letter.ID)
		if visible[u] && err != nil {
			t.Errorf("%s get: %v", user.Username, err)
		}
		if !visible[u] {
			wantKind(t, err, service.ErrNotFound)
		}
	}
}

func TestNewsletterRules(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)

	_, err := n.engine.Newsletters.Create(n.ctx, n.pubReader, service.NewsletterInput{Title: "t", Content: "c"})
	wantKind(t, err, service.ErrPermission)
	_, err = n.engine.Newsletters.Create(n.ctx, n.journalist, service.NewsletterInput{Title: "", Content: "c"})
	wantKind(t, err, service.ErrValidation)
	_, err = n.engine.Newsletters.Create(n.ctx, n.journalist, service.NewsletterInput{Title: "t", Content: "c", PublisherID: "nope"})
	wantKind(t, err, service.ErrValidation)

	letter, err := n.engine.Newsletters.Create(n.ctx, n.journalist, service.NewsletterInput{Title: "t", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	err = n.engine.Newsletters.Delete(n.ctx, n.otherJournalist, letter.ID)
	wantKind(t, err, service.ErrNotFound)
	if err := n.engine.Newsletters.Delete(n.ctx, n.journalist, letter.ID); err != nil {
		t.Fatal(err)
	}
}
