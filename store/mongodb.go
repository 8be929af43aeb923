package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/newsroom/service"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var _ service.Repository = (*DB)(nil)

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	log.Println("Connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Publishers() *mongo.Collection {
	return db.Database.Collection("publishers")
}

func (db *DB) Categories() *mongo.Collection {
	return db.Database.Collection("categories")
}

func (db *DB) Articles() *mongo.Collection {
	return db.Database.Collection("articles")
}

func (db *DB) Newsletters() *mongo.Collection {
	return db.Database.Collection("newsletters")
}

func (db *DB) Subscriptions() *mongo.Collection {
	return db.Database.Collection("subscriptions")
}

func (db *DB) ResetTokens() *mongo.Collection {
	return db.Database.Collection("password_reset_tokens")
}

// EnsureIndexes creates the unique indexes the repository relies on. A
// subscription is unique per (user, publisher) and per (user, journalist);
// the partial filters keep the other kind of subscription out of each index.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	partial := func(keys bson.D, field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: keys,
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{field: bson.M{"$exists": true}}),
		}
	}
	plan := []struct {
		coll    *mongo.Collection
		indexes []mongo.IndexModel
	}{
		{db.Users(), []mongo.IndexModel{
			unique(bson.D{{Key: "username", Value: 1}}),
			unique(bson.D{{Key: "email", Value: 1}}),
			{Keys: bson.D{{Key: "role", Value: 1}}},
		}},
		{db.Publishers(), []mongo.IndexModel{
			unique(bson.D{{Key: "name", Value: 1}}),
			{Keys: bson.D{{Key: "editorIds", Value: 1}}},
		}},
		{db.Categories(), []mongo.IndexModel{
			unique(bson.D{{Key: "name", Value: 1}}),
		}},
		{db.Articles(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "publisherId", Value: 1}}},
		}},
		{db.Newsletters(), []mongo.IndexModel{
			{Keys: bson.D{{Key: "authorId", Value: 1}}},
			{Keys: bson.D{{Key: "publisherId", Value: 1}}},
		}},
		{db.Subscriptions(), []mongo.IndexModel{
			partial(bson.D{{Key: "userId", Value: 1}, {Key: "publisherId", Value: 1}}, "publisherId"),
			partial(bson.D{{Key: "userId", Value: 1}, {Key: "journalistId", Value: 1}}, "journalistId"),
			{Keys: bson.D{{Key: "publisherId", Value: 1}}},
			{Keys: bson.D{{Key: "journalistId", Value: 1}}},
		}},
		{db.ResetTokens(), []mongo.IndexModel{
			unique(bson.D{{Key: "token", Value: 1}}),
		}},
	}
	for _, p := range plan {
		if _, err := p.coll.Indexes().CreateMany(ctx, p.indexes); err != nil {
			return fmt.Errorf("indexes on %s: %w", p.coll.Name(), err)
		}
	}
	return nil
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

// insert maps duplicate key errors to service.ErrDuplicate.
func insert(ctx context.Context, coll *mongo.Collection, doc any) error {
	_, err := coll.InsertOne(ctx, doc, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return service.ErrDuplicate
	}
	return err
}

// findOne decodes the first match into out and reports whether there was one.
func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any) (bool, error) {
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// scopeFilter is service.Scope as a Mongo query: one $or branch per clause.
func scopeFilter(s service.Scope) bson.M {
	or := bson.A{}
	for _, c := range s.Clauses {
		branch := bson.M{}
		if len(c.Statuses) > 0 {
			statuses := make([]string, 0, len(c.Statuses))
			for _, st := range c.Statuses {
				statuses = append(statuses, string(st))
			}
			branch["status"] = bson.M{"$in": statuses}
		}
		if len(c.AuthorIDs) > 0 {
			branch["authorId"] = bson.M{"$in": c.AuthorIDs}
		}
		if len(c.PublisherIDs) > 0 {
			branch["publisherId"] = bson.M{"$in": c.PublisherIDs}
		}
		or = append(or, branch)
	}
	return bson.M{"$or": or}
}

// newestFirst sorts by creation time and pages with limit (0 = all) and offset.
func newestFirst(limit, offset int) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// setOrUnset puts non-empty values in $set and empty ones in $unset so
// omitempty fields stay absent.
func setOrUnset(fields bson.M) bson.M {
	set, unset := bson.M{}, bson.M{}
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}
