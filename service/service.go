package service

import (
	"fmt"
	"log/slog"
	"time"
)

// Options carries the collaborators of the engine. Nil Media, Poster and
// Limiter disable the features that need them.
type Options struct {
	Mailer             Mailer
	Poster             SocialPoster
	Media              MediaStore
	Limiter            Limiter
	SiteURL            string
	SocialEnabled      bool
	RevealUnknownEmail bool
	Now                func() time.Time
	Logger             *slog.Logger
}

// Engine bundles every service over one repository.
type Engine struct {
	Capabilities  *Capabilities
	Visibility    *Visibility
	Accounts      *Accounts
	Directory     *Directory
	Articles      *Articles
	Approvals     *Approvals
	Newsletters   *Newsletters
	Subscriptions *Subscriptions
	PasswordReset *PasswordReset
	Dispatcher    *Dispatcher
}

func New(repo Repository, opts Options) (*Engine, error) {
	caps, err := NewCapabilities()
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}

	vis := NewVisibility(repo)
	dispatcher := NewDispatcher(repo, mailer, opts.Poster, opts.SiteURL, opts.SocialEnabled, logger)
	return &Engine{
		Capabilities:  caps,
		Visibility:    vis,
		Accounts:      NewAccounts(repo, now, logger),
		Directory:     NewDirectory(repo, caps, logger),
		Articles:      NewArticles(repo, caps, vis, opts.Media, now, logger),
		Approvals:     NewApprovals(repo, caps, vis, dispatcher, now, logger),
		Newsletters:   NewNewsletters(repo, caps, vis, now, logger),
		Subscriptions: NewSubscriptions(repo, caps, vis, now, logger),
		PasswordReset: NewPasswordReset(repo, mailer, PasswordResetOptions{
			SiteURL:       opts.SiteURL,
			RevealUnknown: opts.RevealUnknownEmail,
			Limiter:       opts.Limiter,
		}, now, logger),
		Dispatcher: dispatcher,
	}, nil
}
