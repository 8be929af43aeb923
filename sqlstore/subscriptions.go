package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
)

var subscriptionColumns = []string{"id", "user_id", "publisher_id", "journalist_id", "created_at"}

func scanSubscription(row scanner) (models.Subscription, error) {
	var (
		sub             models.Subscription
		pub, journalist sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &pub, &journalist, &sub.CreatedAt); err != nil {
		return sub, err
	}
	sub.PublisherID, sub.JournalistID = pub.String, journalist.String
	sub.CreatedAt = sub.CreatedAt.UTC()
	return sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	_, err := s.exec(ctx, s.sb.Insert("subscriptions").Columns(subscriptionColumns...).
		Values(sub.ID, sub.UserID, nullable(sub.PublisherID), nullable(sub.JournalistID), sub.CreatedAt.UTC()))
	return err
}

func (s *Store) SubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	return s.subscriptionWhere(ctx, sq.Eq{"id": id})
}

func (s *Store) FindSubscription(ctx context.Context, userID, publisherID, journalistID string) (*models.Subscription, error) {
	where := sq.Eq{"user_id": userID}
	if publisherID != "" {
		where["publisher_id"] = publisherID
	} else {
		where["journalist_id"] = journalistID
	}
	return s.subscriptionWhere(ctx, where)
}

func (s *Store) subscriptionWhere(ctx context.Context, where sq.Sqlizer) (*models.Subscription, error) {
	row, err := s.queryRow(ctx, s.sb.Select(subscriptionColumns...).From("subscriptions").Where(where))
	if err != nil {
		return nil, err
	}
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) SubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	rows, err := s.query(ctx, s.sb.Select(subscriptionColumns...).From("subscriptions").
		Where(sq.Eq{"user_id": userID}).OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanSubscription)
}

func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.sb.Delete("subscriptions").Where(sq.Eq{"id": id}))
	return err
}

func (s *Store) SubscriberIDs(ctx context.Context, publisherID, journalistID string) ([]string, error) {
	or := sq.Or{}
	if publisherID != "" {
		or = append(or, sq.Eq{"publisher_id": publisherID})
	}
	if journalistID != "" {
		or = append(or, sq.Eq{"journalist_id": journalistID})
	}
	if len(or) == 0 {
		return nil, nil
	}
	rows, err := s.query(ctx, s.sb.Select("user_id").From("subscriptions").Where(or))
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(r scanner) (string, error) {
		var id string
		err := r.Scan(&id)
		return id, err
	})
}
