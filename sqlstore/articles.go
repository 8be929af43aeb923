package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

var articleColumns = []string{
	"id", "title", "content", "summary", "author_id", "publisher_id", "category_id",
	"status", "is_approved", "approved_by", "approved_at", "image_key",
	"created_at", "updated_at", "published_at",
}

func scanArticle(row scanner) (models.Article, error) {
	var (
		a                       models.Article
		status                  string
		pub, cat, approvedBy    sql.NullString
		approvedAt, publishedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Summary, &a.AuthorID, &pub, &cat,
		&status, &a.IsApproved, &approvedBy, &approvedAt, &a.ImageKey,
		&a.CreatedAt, &a.UpdatedAt, &publishedAt)
	if err != nil {
		return a, err
	}
	a.Status = models.ArticleStatus(status)
	a.PublisherID, a.CategoryID, a.ApprovedBy = pub.String, cat.String, approvedBy.String
	a.ApprovedAt, a.PublishedAt = timePtr(approvedAt), timePtr(publishedAt)
	a.CreatedAt, a.UpdatedAt = a.CreatedAt.UTC(), a.UpdatedAt.UTC()
	return a, nil
}

func (s *Store) CreateArticle(ctx context.Context, a *models.Article) error {
	_, err := s.exec(ctx, s.sb.Insert("articles").Columns(articleColumns...).Values(
		a.ID, a.Title, a.Content, a.Summary, a.AuthorID, nullable(a.PublisherID), nullable(a.CategoryID),
		string(a.Status), a.IsApproved, nullable(a.ApprovedBy), nullableTime(a.ApprovedAt), a.ImageKey,
		a.CreatedAt.UTC(), a.UpdatedAt.UTC(), nullableTime(a.PublishedAt),
	))
	return err
}

func (s *Store) ArticleByID(ctx context.Context, id string) (*models.Article, error) {
	row, err := s.queryRow(ctx, s.sb.Select(articleColumns...).From("articles").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) UpdateArticle(ctx context.Context, a *models.Article) error {
	_, err := s.exec(ctx, s.sb.Update("articles").SetMap(map[string]any{
		"title":        a.Title,
		"content":      a.Content,
		"summary":      a.Summary,
		"publisher_id": nullable(a.PublisherID),
		"category_id":  nullable(a.CategoryID),
		"updated_at":   a.UpdatedAt.UTC(),
	}).Where(sq.Eq{"id": a.ID}))
	return err
}

func (s *Store) DeleteArticle(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.sb.Delete("articles").Where(sq.Eq{"id": id}))
	return err
}

func (s *Store) FindArticles(ctx context.Context, q service.ArticleQuery) ([]models.Article, int64, error) {
	where := sq.And{scopeWhere(q.Scope, true)}
	if q.CategoryID != "" {
		where = append(where, sq.Eq{"category_id": q.CategoryID})
	}
	if q.PublisherID != "" {
		where = append(where, sq.Eq{"publisher_id": q.PublisherID})
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		where = append(where, sq.Or{
			sq.Like{"LOWER(title)": pattern},
			sq.Like{"LOWER(content)": pattern},
		})
	}

	total, err := s.count(ctx, s.sb.Select("COUNT(*)").From("articles").Where(where))
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.query(ctx, page(s.sb.Select(articleColumns...).From("articles").Where(where), q.Limit, q.Offset))
	if err != nil {
		return nil, 0, err
	}
	items, err := scanAll(rows, scanArticle)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ApproveArticle is guarded by is_approved = false so only one of several
// concurrent approvals affects the row.
func (s *Store) ApproveArticle(ctx context.Context, a *models.Article) (bool, error) {
	res, err := s.exec(ctx, s.sb.Update("articles").SetMap(map[string]any{
		"is_approved":  true,
		"status":       string(a.Status),
		"approved_by":  nullable(a.ApprovedBy),
		"approved_at":  nullableTime(a.ApprovedAt),
		"updated_at":   a.UpdatedAt.UTC(),
		"published_at": nullableTime(a.PublishedAt),
	}).Where(sq.Eq{"id": a.ID, "is_approved": false}))
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *Store) TransitionArticle(ctx context.Context, a *models.Article, from ...models.ArticleStatus) (bool, error) {
	res, err := s.exec(ctx, s.sb.Update("articles").
		Set("status", string(a.Status)).
		Set("updated_at", a.UpdatedAt.UTC()).
		Where(sq.Eq{"id": a.ID, "status": statusStrings(from)}))
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (s *Store) SetArticleImage(ctx context.Context, id, key string) error {
	_, err := s.exec(ctx, s.sb.Update("articles").Set("image_key", key).Where(sq.Eq{"id": id}))
	return err
}
