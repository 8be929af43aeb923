package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kevinaaaquil/newsroom/models"
)

// Approvals runs the editor approval transition and its fan-out.
type Approvals struct {
	repo     Repository
	caps     *Capabilities
	vis      *Visibility
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

func NewApprovals(repo Repository, caps *Capabilities, vis *Visibility, notifier Notifier, now func() time.Time, logger *slog.Logger) *Approvals {
	return &Approvals{
		repo:     repo,
		caps:     caps,
		vis:      vis,
		notifier: notifier,
		now:      now,
		logger:   logger.With("component", "approvals"),
	}
}

// Approve marks the article approved by editor and publishes it in the same
// write. The write only succeeds against a row that is not approved yet, so
// of several concurrent calls exactly one wins and only that one notifies.
func (s *Approvals) Approve(ctx context.Context, editor *models.User, articleID string) (*models.Article, error) {
	if err := s.caps.Require(editor, ResArticles, ActApprove); err != nil {
		return nil, permissionError("only editors can approve articles")
	}
	scope, err := s.vis.FeedScope(ctx, editor)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.ArticleByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if a == nil || !scope.AllowsArticle(a) {
		return nil, notFoundError("article")
	}
	if a.IsApproved {
		return nil, ErrAlreadyApproved
	}

	now := s.now().UTC()
	a.IsApproved = true
	a.Status = models.StatusApproved
	a.ApprovedBy = editor.ID
	a.ApprovedAt = &now
	a.UpdatedAt = now
	a.Normalize(now)

	won, err := s.repo.ApproveArticle(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("approve article: %w", err)
	}
	if !won {
		return nil, ErrAlreadyApproved
	}
	s.logger.Info("article approved", "article", a.ID, "editor", editor.ID)

	if s.notifier != nil {
		s.notifier.ArticlePublished(ctx, a)
	}
	a.HasImage = a.ImageKey != ""
	return a, nil
}
