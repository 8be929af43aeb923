package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kevinaaaquil/newsroom/models"
)

func (db *DB) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	return insert(ctx, db.ResetTokens(), t)
}

func (db *DB) ResetTokenByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	ok, err := findOne(ctx, db.ResetTokens(), bson.M{"token": token}, &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// MarkResetTokenUsed flips isUsed with a conditional update; a second caller
// matches nothing and gets false.
func (db *DB) MarkResetTokenUsed(ctx context.Context, token string) (bool, error) {
	res, err := db.ResetTokens().UpdateOne(ctx,
		bson.M{"token": token, "isUsed": false},
		bson.M{"$set": bson.M{"isUsed": true}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
