package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

var newsletterColumns = []string{"id", "title", "content", "author_id", "publisher_id", "created_at", "updated_at"}

func scanNewsletter(row scanner) (models.Newsletter, error) {
	var (
		n   models.Newsletter
		pub sql.NullString
	)
	if err := row.Scan(&n.ID, &n.Title, &n.Content, &n.AuthorID, &pub, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return n, err
	}
	n.PublisherID = pub.String
	n.CreatedAt, n.UpdatedAt = n.CreatedAt.UTC(), n.UpdatedAt.UTC()
	return n, nil
}

func (s *Store) CreateNewsletter(ctx context.Context, n *models.Newsletter) error {
	_, err := s.exec(ctx, s.sb.Insert("newsletters").Columns(newsletterColumns...).
		Values(n.ID, n.Title, n.Content, n.AuthorID, nullable(n.PublisherID), n.CreatedAt.UTC(), n.UpdatedAt.UTC()))
	return err
}

func (s *Store) NewsletterByID(ctx context.Context, id string) (*models.Newsletter, error) {
	row, err := s.queryRow(ctx, s.sb.Select(newsletterColumns...).From("newsletters").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	n, err := scanNewsletter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) DeleteNewsletter(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.sb.Delete("newsletters").Where(sq.Eq{"id": id}))
	return err
}

// FindNewsletters ignores status constraints in the scope; the table has no
// status column.
func (s *Store) FindNewsletters(ctx context.Context, q service.NewsletterQuery) ([]models.Newsletter, int64, error) {
	where := scopeWhere(q.Scope.ForNewsletters(), false)
	total, err := s.count(ctx, s.sb.Select("COUNT(*)").From("newsletters").Where(where))
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.query(ctx, page(s.sb.Select(newsletterColumns...).From("newsletters").Where(where), q.Limit, q.Offset))
	if err != nil {
		return nil, 0, err
	}
	items, err := scanAll(rows, scanNewsletter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
