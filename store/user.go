package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevinaaaquil/newsroom/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	return insert(ctx, db.Users(), user)
}

func (db *DB) UserByID(ctx context.Context, id string) (*models.User, error) {
	return db.userWhere(ctx, bson.M{"_id": id})
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.userWhere(ctx, bson.M{"email": email})
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.userWhere(ctx, bson.M{"username": username})
}

func (db *DB) userWhere(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	ok, err := findOne(ctx, db.Users(), filter, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return findAll[models.User](ctx, db.Users(), bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.M{"username": 1}))
}

func (db *DB) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return findAll[models.User](ctx, db.Users(), bson.M{"role": role},
		options.Find().SetSort(bson.M{"username": 1}))
}

func (db *DB) UpdateUserPassword(ctx context.Context, id, hash string) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	return err
}

func (db *DB) DeleteUser(ctx context.Context, id string) error {
	_, err := db.Users().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
