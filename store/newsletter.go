package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func (db *DB) CreateNewsletter(ctx context.Context, n *models.Newsletter) error {
	return insert(ctx, db.Newsletters(), n)
}

func (db *DB) NewsletterByID(ctx context.Context, id string) (*models.Newsletter, error) {
	var n models.Newsletter
	ok, err := findOne(ctx, db.Newsletters(), bson.M{"_id": id}, &n)
	if err != nil || !ok {
		return nil, err
	}
	return &n, nil
}

func (db *DB) DeleteNewsletter(ctx context.Context, id string) error {
	_, err := db.Newsletters().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindNewsletters applies the scope without status constraints; newsletters
// carry no status field.
func (db *DB) FindNewsletters(ctx context.Context, q service.NewsletterQuery) ([]models.Newsletter, int64, error) {
	filter := scopeFilter(q.Scope.ForNewsletters())
	total, err := db.Newsletters().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := findAll[models.Newsletter](ctx, db.Newsletters(), filter, newestFirst(q.Limit, q.Offset))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
