package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"sort"
	"text/template"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/utils"
)

// Notifier is told about every article that has just been approved.
type Notifier interface {
	ArticlePublished(ctx context.Context, a *models.Article)
}

const announcementSummaryRunes = 200

var notificationText = template.Must(template.New("text").Parse(`A new article has been published: {{.Title}}
{{if .Summary}}
{{.Summary}}
{{end}}
Read it here: {{.Link}}
`))

var notificationHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<h2>{{.Title}}</h2>
{{.SummaryHTML}}
<p><a href="{{.Link}}">Read the full article</a></p>
`))

type notificationData struct {
	Title       string
	Summary     string
	SummaryHTML htmltemplate.HTML
	Link        string
}

// Dispatcher fans a published article out to subscribers by email and to the
// social account. Both are best effort: failures are logged, never returned.
type Dispatcher struct {
	repo          Repository
	mailer        Mailer
	poster        SocialPoster
	siteURL       string
	socialEnabled bool
	logger        *slog.Logger
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(repo Repository, mailer Mailer, poster SocialPoster, siteURL string, socialEnabled bool, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:          repo,
		mailer:        mailer,
		poster:        poster,
		siteURL:       siteURL,
		socialEnabled: socialEnabled,
		logger:        logger.With("component", "dispatcher"),
	}
}

func (d *Dispatcher) ArticlePublished(ctx context.Context, a *models.Article) {
	d.notifySubscribers(ctx, a)
	d.announce(ctx, a)
}

// Recipients returns the sorted, de-duplicated emails of everyone subscribed
// to the article's publisher or to its author.
func (d *Dispatcher) Recipients(ctx context.Context, a *models.Article) ([]string, error) {
	ids, err := d.repo.SubscriberIDs(ctx, a.PublisherID, a.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	users, err := d.repo.UsersByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, fmt.Errorf("load subscriber users: %w", err)
	}
	seen := make(map[string]bool, len(users))
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email == "" || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		emails = append(emails, u.Email)
	}
	sort.Strings(emails)
	return emails, nil
}

func (d *Dispatcher) notifySubscribers(ctx context.Context, a *models.Article) {
	if d.mailer == nil {
		return
	}
	to, err := d.Recipients(ctx, a)
	if err != nil {
		d.logger.Error("notification recipients", "article", a.ID, "err", err)
		return
	}
	if len(to) == 0 {
		return
	}
	msg, err := NotificationMessage(a, d.siteURL)
	if err != nil {
		d.logger.Error("render notification", "article", a.ID, "err", err)
		return
	}
	if err := d.mailer.Send(ctx, msg, to); err != nil {
		d.logger.Error("send notification", "article", a.ID, "recipients", len(to), "err", err)
		return
	}
	d.logger.Info("notification sent", "article", a.ID, "recipients", len(to))
}

func (d *Dispatcher) announce(ctx context.Context, a *models.Article) {
	if !d.socialEnabled {
		d.logger.Debug("social posting disabled", "article", a.ID)
		return
	}
	if d.poster == nil {
		d.logger.Warn("social posting enabled without a poster", "article", a.ID)
		return
	}
	if err := d.poster.Post(ctx, AnnouncementText(a, d.siteURL)); err != nil {
		d.logger.Error("social post", "article", a.ID, "err", err)
		return
	}
	d.logger.Info("social post sent", "article", a.ID)
}

// ArticleURL is the public link of an article.
func ArticleURL(siteURL, id string) string {
	return siteURL + "/articles/" + id + "/"
}

// NotificationMessage renders the subscriber email for a.
func NotificationMessage(a *models.Article, siteURL string) (Message, error) {
	data := notificationData{
		Title:       a.Title,
		Summary:     a.Summary,
		SummaryHTML: htmltemplate.HTML(utils.RenderMarkdown(a.Summary)),
		Link:        ArticleURL(siteURL, a.ID),
	}
	var text, html bytes.Buffer
	if err := notificationText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := notificationHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{
		Subject: "New Article: " + a.Title,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// AnnouncementText is the social post for a. The summary is cut to 200
// characters and the link is appended when a site URL is known.
func AnnouncementText(a *models.Article, siteURL string) string {
	text := "New Article: " + a.Title + "\n\n" + utils.Truncate(a.Summary, announcementSummaryRunes, "...")
	if siteURL != "" {
		text += "\n\nRead more: " + ArticleURL(siteURL, a.ID)
	}
	return text
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
