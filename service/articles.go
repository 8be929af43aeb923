package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/utils"
)

const (
	maxTitleLen   = 200
	maxSummaryLen = 500
	imageURLTTL   = 15 * time.Minute
)

// ArticleQuery selects articles inside Scope. Search matches title or
// content case-insensitively. Empty filters are ignored and a zero Limit
// returns every match.
type ArticleQuery struct {
	Scope       Scope
	Search      string
	CategoryID  string
	PublisherID string
	Limit       int
	Offset      int
}

type NewsletterQuery struct {
	Scope  Scope
	Limit  int
	Offset int
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T                    `json:"items"`
	Pagination utils.PaginationResult `json:"pagination"`
}

type ArticleInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	PublisherID string `json:"publisherId"`
	CategoryID  string `json:"categoryId"`
}

// ArticlePatch holds the fields a partial update sets. Status is deliberately absent.
type ArticlePatch struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Summary     *string `json:"summary"`
	PublisherID *string `json:"publisherId"`
	CategoryID  *string `json:"categoryId"`
}

type SearchParams struct {
	Query       string
	CategoryID  string
	PublisherID string
	Page        utils.PaginationParams
}

// Articles is the article workflow: authoring, review transitions and listing.
type Articles struct {
	repo   Repository
	caps   *Capabilities
	vis    *Visibility
	media  MediaStore
	now    func() time.Time
	logger *slog.Logger
}

func NewArticles(repo Repository, caps *Capabilities, vis *Visibility, media MediaStore, now func() time.Time, logger *slog.Logger) *Articles {
	return &Articles{
		repo:   repo,
		caps:   caps,
		vis:    vis,
		media:  media,
		now:    now,
		logger: logger.With("component", "articles"),
	}
}

// List returns the caller's feed.
func (s *Articles) List(ctx context.Context, u *models.User, page utils.PaginationParams) (*Page[models.Article], error) {
	if err := s.caps.Require(u, ResArticles, ActList); err != nil {
		return nil, err
	}
	scope, err := s.vis.FeedScope(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, ArticleQuery{Scope: scope}, page)
}

// Home lists every published article. No login is needed.
func (s *Articles) Home(ctx context.Context, page utils.PaginationParams) (*Page[models.Article], error) {
	return s.find(ctx, ArticleQuery{Scope: PublicScope()}, page)
}

// Search filters the published articles by text, category and publisher.
func (s *Articles) Search(ctx context.Context, p SearchParams) (*Page[models.Article], error) {
	return s.find(ctx, ArticleQuery{
		Scope:       PublicScope(),
		Search:      strings.TrimSpace(p.Query),
		CategoryID:  p.CategoryID,
		PublisherID: p.PublisherID,
	}, p.Page)
}

func (s *Articles) find(ctx context.Context, q ArticleQuery, page utils.PaginationParams) (*Page[models.Article], error) {
	q.Limit, q.Offset = page.PageSize, page.Offset
	if q.Scope.IsEmpty() {
		return &Page[models.Article]{Items: []models.Article{}, Pagination: utils.GetPaginationResult(page, 0, 0)}, nil
	}
	items, total, err := s.repo.FindArticles(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	if items == nil {
		items = []models.Article{}
	}
	for i := range items {
		items[i].HasImage = items[i].ImageKey != ""
	}
	return &Page[models.Article]{Items: items, Pagination: utils.GetPaginationResult(page, len(items), total)}, nil
}

// Get returns the article if the caller may see it. Missing and invisible
// articles produce the same not-found error.
func (s *Articles) Get(ctx context.Context, u *models.User, id string) (*models.Article, error) {
	if err := s.caps.Require(u, ResArticles, ActRead); err != nil {
		return nil, err
	}
	scope, err := s.vis.DetailScope(ctx, u)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, scope, id)
}

// GetPublic returns a published article to anonymous callers.
func (s *Articles) GetPublic(ctx context.Context, id string) (*models.Article, error) {
	return s.load(ctx, PublicScope(), id)
}

func (s *Articles) load(ctx context.Context, scope Scope, id string) (*models.Article, error) {
	a, err := s.repo.ArticleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if a == nil || !scope.AllowsArticle(a) {
		return nil, notFoundError("article")
	}
	a.HasImage = a.ImageKey != ""
	return a, nil
}

func (s *Articles) Create(ctx context.Context, u *models.User, in ArticleInput) (*models.Article, error) {
	if err := s.caps.Require(u, ResArticles, ActCreate); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Summary = strings.TrimSpace(in.Summary)
	if err := validateArticleText(in.Title, in.Content, in.Summary); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, in.PublisherID, in.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &models.Article{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Content:     in.Content,
		Summary:     in.Summary,
		AuthorID:    u.ID,
		PublisherID: in.PublisherID,
		CategoryID:  in.CategoryID,
		Status:      models.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateArticle(ctx, a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	s.logger.Info("article created", "article", a.ID, "author", u.ID)
	return a, nil
}

// Update applies patch to an article inside the caller's scope. Only the
// editable fields are written; status and approval change through Approve,
// Submit and Reject.
func (s *Articles) Update(ctx context.Context, u *models.User, id string, patch ArticlePatch) (*models.Article, error) {
	if err := s.caps.Require(u, ResArticles, ActUpdate); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		a.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	if patch.Summary != nil {
		a.Summary = strings.TrimSpace(*patch.Summary)
	}
	if err := validateArticleText(a.Title, a.Content, a.Summary); err != nil {
		return nil, err
	}
	pub, cat := a.PublisherID, a.CategoryID
	if patch.PublisherID != nil {
		pub = *patch.PublisherID
	}
	if patch.CategoryID != nil {
		cat = *patch.CategoryID
	}
	if err := s.checkRefs(ctx, pub, cat); err != nil {
		return nil, err
	}
	a.PublisherID, a.CategoryID = pub, cat

	a.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateArticle(ctx, a); err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	// Workflow fields may have moved since the read.
	fresh, err := s.repo.ArticleByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("reload article: %w", err)
	}
	if fresh == nil {
		return nil, notFoundError("article")
	}
	fresh.HasImage = fresh.ImageKey != ""
	return fresh, nil
}

func (s *Articles) Delete(ctx context.Context, u *models.User, id string) error {
	if err := s.caps.Require(u, ResArticles, ActDelete); err != nil {
		return err
	}
	a, err := s.Get(ctx, u, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteArticle(ctx, a.ID); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if a.ImageKey != "" && s.media != nil {
		if err := s.media.Delete(ctx, a.ImageKey); err != nil {
			s.logger.Warn("delete article image", "article", a.ID, "key", a.ImageKey, "err", err)
		}
	}
	s.logger.Info("article deleted", "article", a.ID, "by", u.ID)
	return nil
}

// Submit sends the caller's draft or rejected article to review.
func (s *Articles) Submit(ctx context.Context, u *models.User, id string) (*models.Article, error) {
	if err := s.caps.Require(u, ResArticles, ActSubmit); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if a.AuthorID != u.ID {
		return nil, notFoundError("article")
	}
	return s.transition(ctx, u, a, models.StatusPending, models.StatusDraft, models.StatusRejected)
}

// Reject returns a pending article to its author.
func (s *Articles) Reject(ctx context.Context, u *models.User, id string) (*models.Article, error) {
	if err := s.caps.Require(u, ResArticles, ActReject); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, u, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, u, a, models.StatusRejected, models.StatusPending)
}

func (s *Articles) transition(ctx context.Context, u *models.User, a *models.Article, to models.ArticleStatus, from ...models.ArticleStatus) (*models.Article, error) {
	if !containsStatus(from, a.Status) {
		return nil, conflictError("article is %s and cannot become %s", a.Status, to)
	}
	prev := a.Status
	a.Status = to
	a.UpdatedAt = s.now().UTC()
	ok, err := s.repo.TransitionArticle(ctx, a, from...)
	if err != nil {
		return nil, fmt.Errorf("transition article: %w", err)
	}
	if !ok {
		return nil, conflictError("article changed state, reload and try again")
	}
	s.logger.Info("article transition", "article", a.ID, "from", prev, "to", to, "by", u.ID)
	return a, nil
}

// UploadImage stores a header image for an article the caller can edit.
func (s *Articles) UploadImage(ctx context.Context, u *models.User, id, filename, contentType string, body io.Reader) (*models.Article, error) {
	if s.media == nil {
		return nil, ErrMediaDisabled
	}
	if err := s.caps.Require(u, ResArticles, ActUpdate); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, u, id)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, validationError("only image uploads are accepted")
	}
	key, err := s.media.Upload(ctx, "articles/"+a.ID+"/", filename, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if err := s.repo.SetArticleImage(ctx, a.ID, key); err != nil {
		return nil, fmt.Errorf("save image key: %w", err)
	}
	if a.ImageKey != "" {
		if err := s.media.Delete(ctx, a.ImageKey); err != nil {
			s.logger.Warn("delete replaced image", "article", a.ID, "key", a.ImageKey, "err", err)
		}
	}
	a.ImageKey, a.HasImage = key, true
	return a, nil
}

// ImageURL returns a short-lived download link for the article's image.
func (s *Articles) ImageURL(ctx context.Context, u *models.User, id string) (string, error) {
	if s.media == nil {
		return "", ErrMediaDisabled
	}
	var (
		a   *models.Article
		err error
	)
	if u == nil {
		a, err = s.GetPublic(ctx, id)
	} else {
		a, err = s.Get(ctx, u, id)
	}
	if err != nil {
		return "", err
	}
	if a.ImageKey == "" {
		return "", notFoundError("image")
	}
	url, err := s.media.PresignedGetURL(ctx, a.ImageKey, imageURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign image: %w", err)
	}
	return url, nil
}

func (s *Articles) checkRefs(ctx context.Context, publisherID, categoryID string) error {
	if publisherID != "" {
		p, err := s.repo.PublisherByID(ctx, publisherID)
		if err != nil {
			return fmt.Errorf("load publisher: %w", err)
		}
		if p == nil {
			return validationError("unknown publisher")
		}
	}
	if categoryID != "" {
		c, err := s.repo.CategoryByID(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("load category: %w", err)
		}
		if c == nil {
			return validationError("unknown category")
		}
	}
	return nil
}

func validateArticleText(title, content, summary string) error {
	switch {
	case title == "":
		return validationError("title is required")
	case len([]rune(title)) > maxTitleLen:
		return validationError("title must be at most %d characters", maxTitleLen)
	case strings.TrimSpace(content) == "":
		return validationError("content is required")
	case len([]rune(summary)) > maxSummaryLen:
		return validationError("summary must be at most %d characters", maxSummaryLen)
	}
	return nil
}
