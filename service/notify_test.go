package service_test

import (
	"strings"
	"testing"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func TestRecipientsAreDeduplicated(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)
	alice := n.user("alice", models.RoleReader)
	n.subscribe(alice, n.daily, nil)
	n.subscribe(alice, nil, n.journalist)
	a := n.article("dedupe", n.journalist, n.daily, models.StatusPending)

	got, err := n.engine.Dispatcher.Recipients(n.ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	want := "alice@example.com,rita@example.com"
	if strings.Join(got, ",") != want {
		t.Fatalf("recipients = %v, want %s", got, want)
	}
}

func TestRecipientsWithoutPublisher(t *testing.T) {
	t.Parallel()
	n := newNewsroom(t)
	a := n.article("solo", n.otherJournalist, nil, models.StatusPending)

	got, err := n.engine.Dispatcher.Recipients(n.ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "ron@example.com" {
		t.Fatalf("recipients = %v", got)
	}
}

func TestAnnouncementText(t *testing.T) {
	t.Parallel()
	a := &models.Article{ID: "a1", Title: "Storm", Summary: strings.Repeat("x", 250)}

	got := service.AnnouncementText(a, siteURL)
	want := "New Article: Storm\n\n" + strings.Repeat("x", 200) + "...\n\nRead more: " + siteURL + "/articles/a1/"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	a.Summary = "short"
	if got := service.AnnouncementText(a, ""); got != "New Article: Storm\n\nshort" {
		t.Fatalf("without site url: %q", got)
	}
}

func TestNotificationMessage(t *testing.T) {
	t.Parallel()
	a := &models.Article{ID: "a1", Title: "Tom & <Jerry>", Summary: "A **bold** claim"}

	msg, err := service.NotificationMessage(a, siteURL)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "New Article: Tom & <Jerry>" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Tom &amp; &lt;Jerry&gt;") {
		t.Fatalf("title not escaped in html: %q", msg.HTML)
	}
	if !strings.Contains(msg.HTML, "<strong>bold</strong>") {
		t.Fatalf("summary markdown not rendered: %q", msg.HTML)
	}
	if !strings.Contains(msg.Text, siteURL+"/articles/a1/") {
		t.Fatalf("text missing link: %q", msg.Text)
	}
}
