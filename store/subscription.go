package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/newsroom/models"
)

func (db *DB) CreateSubscription(ctx context.Context, s *models.Subscription) error {
	return insert(ctx, db.Subscriptions(), s)
}

func (db *DB) SubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	return db.subscriptionWhere(ctx, bson.M{"_id": id})
}

func (db *DB) FindSubscription(ctx context.Context, userID, publisherID, journalistID string) (*models.Subscription, error) {
	filter := bson.M{"userId": userID}
	if publisherID != "" {
		filter["publisherId"] = publisherID
	} else {
		filter["journalistId"] = journalistID
	}
	return db.subscriptionWhere(ctx, filter)
}

func (db *DB) subscriptionWhere(ctx context.Context, filter bson.M) (*models.Subscription, error) {
	var s models.Subscription
	ok, err := findOne(ctx, db.Subscriptions(), filter, &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (db *DB) SubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	return findAll[models.Subscription](ctx, db.Subscriptions(), bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": 1}))
}

func (db *DB) DeleteSubscription(ctx context.Context, id string) error {
	_, err := db.Subscriptions().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) SubscriberIDs(ctx context.Context, publisherID, journalistID string) ([]string, error) {
	or := bson.A{}
	if publisherID != "" {
		or = append(or, bson.M{"publisherId": publisherID})
	}
	if journalistID != "" {
		or = append(or, bson.M{"journalistId": journalistID})
	}
	if len(or) == 0 {
		return nil, nil
	}
	subs, err := findAll[models.Subscription](ctx, db.Subscriptions(), bson.M{"$or": or},
		options.Find().SetProjection(bson.M{"userId": 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(subs))
	for _, s := range subs {
		ids = append(ids, s.UserID)
	}
	return ids, nil
}
