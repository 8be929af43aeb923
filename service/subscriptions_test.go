package service_test

import (
	"testing"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func TestSubscribeOnceWithWarning(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)

	first, err := n.engine.Subscriptions.Create(n.ctx, n.lurker, service.SubscriptionInput{PublisherID: n.weekly.ID})
	if err != nil {
		t.Fatal(err)
	}
	if !first.Created || first.Warning != "" {
		t.Fatalf("first = %+v", first)
	}
	again, err := n.engine.Subscriptions.Create(n.ctx, n.lurker, service.SubscriptionInput{PublisherID: n.weekly.ID})
	if err != nil {
		t.Fatal(err)
	}
	if again.Created || again.Subscription.ID != first.Subscription.ID {
		t.Fatalf("again = %+v", again)
	}
	if again.Warning != "You are already subscribed to Weekly." {
		t.Fatalf("warning = %q", again.Warning)
	}

	subs, err := n.engine.Subscriptions.List(n.ctx, n.lurker)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 {
		t.Fatalf("subscriptions = %+v", subs)
	}
}

func TestSubscriptionTargetRules(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)

	cases := []struct {
		name string
		in   service.SubscriptionInput
	}{
		{"both targets", service.SubscriptionInput{PublisherID: n.daily.ID, JournalistID: n.journalist.ID}},
		{"no target", service.SubscriptionInput{}},
		{"unknown publisher", service.SubscriptionInput{PublisherID: "pub-missing"}},
		{"reader as journalist", service.SubscriptionInput{JournalistID: n.pubReader.ID}},
	}
	for _, tc := range cases {
		_, err := n.engine.Subscriptions.Create(n.ctx, n.lurker, tc.in)
		if err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
		wantKind(t, err, service.ErrValidation)
	}

	_, err := n.engine.Subscriptions.Create(n.ctx, n.journalist, service.SubscriptionInput{PublisherID: n.daily.ID})
	wantKind(t, err, service.ErrPermission)
}

func TestSubscriptionsArePrivate(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)
	res, err := n.engine.Subscriptions.Create(n.ctx, n.lurker, service.SubscriptionInput{JournalistID: n.journalist.ID})
	if err != nil {
		t.Fatal(err)
	}
	id := res.Subscription.ID

	_, err = n.engine.Subscriptions.Get(n.ctx, n.pubReader, id)
	wantKind(t, err, service.ErrNotFound)
	err = n.engine.Subscriptions.Delete(n.ctx, n.pubReader, id)
	wantKind(t, err, service.ErrNotFound)

	if err := n.engine.Subscriptions.Delete(n.ctx, n.lurker, id); err != nil {
		t.Fatal(err)
	}
	subs, _ := n.engine.Subscriptions.List(n.ctx, n.lurker)
	if len(subs) != 0 {
		t.Fatalf("left over: %+v", subs)
	}
}

func TestSubscribingChangesTheFeed(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)

	if _, err := n.engine.Subscriptions.Create(n.ctx, n.lurker, service.SubscriptionInput{JournalistID: n.journalist.ID}); err != nil {
		t.Fatal(err)
	}
	page, err := n.engine.Articles.List(n.ctx, n.lurker, allItems)
	if err != nil {
		t.Fatal(err)
	}
	if got := titles(page.Items); !sameSet(got, []string{"daily-published", "independent-published"}) {
		t.Fatalf("feed = %v", got)
	}
}

func TestSubscriptionOverview(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)
	n.subscribe(n.pubReader, nil, n.otherJournalist)

	o, err := n.engine.Subscriptions.Overview(n.ctx, n.pubReader)
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Publishers) != 1 || o.Publishers[0].Name != "Daily" {
		t.Fatalf("publishers = %+v", o.Publishers)
	}
	if len(o.Journalists) != 1 || o.Journalists[0].Username != "jack" {
		t.Fatalf("journalists = %+v", o.Journalists)
	}
	var got []string
	for _, a := range o.Articles {
		got = append(got, a.Title)
		if a.Status != models.StatusPublished {
			t.Fatalf("unpublished article in overview: %+v", a)
		}
	}
	if !sameSet(got, []string{"daily-published", "weekly-published"}) {
		t.Fatalf("articles = %v", got)
	}
	for _, a := range o.Articles {
		if a.Title == "daily-published" && (a.AuthorName != "jane" || a.PublisherName != "Daily") {
			t.Fatalf("summary names = %+v", a)
		}
	}

	_, err = n.engine.Subscriptions.Overview(n.ctx, n.editor)
	wantKind(t, err, service.ErrPermission)
}
