package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/newsroom/models"
)

func (db *DB) CreatePublisher(ctx context.Context, p *models.Publisher) error {
	if p.EditorIDs == nil {
		p.EditorIDs = []string{}
	}
	if p.JournalistIDs == nil {
		p.JournalistIDs = []string{}
	}
	return insert(ctx, db.Publishers(), p)
}

func (db *DB) DeletePublisher(ctx context.Context, id string) error {
	_, err := db.Publishers().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) PublisherByID(ctx context.Context, id string) (*models.Publisher, error) {
	var p models.Publisher
	ok, err := findOne(ctx, db.Publishers(), bson.M{"_id": id}, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	return findAll[models.Publisher](ctx, db.Publishers(), bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
}

// PublishersByEditor matches userID inside the editorIds array.
func (db *DB) PublishersByEditor(ctx context.Context, userID string) ([]models.Publisher, error) {
	return findAll[models.Publisher](ctx, db.Publishers(), bson.M{"editorIds": userID}, options.Find().SetSort(bson.M{"name": 1}))
}

func (db *DB) AddPublisherEditor(ctx context.Context, publisherID, userID string) error {
	_, err := db.Publishers().UpdateOne(ctx, bson.M{"_id": publisherID}, bson.M{"$addToSet": bson.M{"editorIds": userID}})
	return err
}

func (db *DB) AddPublisherJournalist(ctx context.Context, publisherID, userID string) error {
	_, err := db.Publishers().UpdateOne(ctx, bson.M{"_id": publisherID}, bson.M{"$addToSet": bson.M{"journalistIds": userID}})
	return err
}

func (db *DB) CreateCategory(ctx context.Context, c *models.Category) error {
	return insert(ctx, db.Categories(), c)
}

func (db *DB) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	ok, err := findOne(ctx, db.Categories(), bson.M{"_id": id}, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, db.Categories(), bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
}
