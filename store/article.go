package store

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/newsroom/models"
	"github.com/kevinaaaquil/newsroom/service"
)

func (db *DB) CreateArticle(ctx context.Context, a *models.Article) error {
	return insert(ctx, db.Articles(), a)
}

func (db *DB) ArticleByID(ctx context.Context, id string) (*models.Article, error) {
	var a models.Article
	ok, err := findOne(ctx, db.Articles(), bson.M{"_id": id}, &a)
	if err != nil || !ok {
		return nil, err
	}
	return &a, nil
}

func (db *DB) UpdateArticle(ctx context.Context, a *models.Article) error {
	_, err := db.Articles().UpdateOne(ctx, bson.M{"_id": a.ID}, editUpdate(a))
	return err
}

// editUpdate touches only the editable fields; status and approval move
// through ApproveArticle and TransitionArticle.
func editUpdate(a *models.Article) bson.M {
	return setOrUnset(bson.M{
		"title":       a.Title,
		"content":     a.Content,
		"summary":     a.Summary,
		"publisherId": a.PublisherID,
		"categoryId":  a.CategoryID,
		"updatedAt":   a.UpdatedAt,
	})
}

func (db *DB) DeleteArticle(ctx context.Context, id string) error {
	_, err := db.Articles().DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (db *DB) FindArticles(ctx context.Context, q service.ArticleQuery) ([]models.Article, int64, error) {
	filter := articleFilter(q)
	total, err := db.Articles().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := findAll[models.Article](ctx, db.Articles(), filter, newestFirst(q.Limit, q.Offset))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func articleFilter(q service.ArticleQuery) bson.M {
	and := bson.A{scopeFilter(q.Scope)}
	if q.CategoryID != "" {
		and = append(and, bson.M{"categoryId": q.CategoryID})
	}
	if q.PublisherID != "" {
		and = append(and, bson.M{"publisherId": q.PublisherID})
	}
	if q.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		and = append(and, bson.M{"$or": bson.A{bson.M{"title": re}, bson.M{"content": re}}})
	}
	return bson.M{"$and": and}
}

// ApproveArticle only matches a row whose isApproved is still false, so two
// concurrent approvals cannot both report success.
func (db *DB) ApproveArticle(ctx context.Context, a *models.Article) (bool, error) {
	set := bson.M{
		"isApproved": true,
		"status":     a.Status,
		"approvedBy": a.ApprovedBy,
		"approvedAt": a.ApprovedAt,
		"updatedAt":  a.UpdatedAt,
	}
	if a.PublishedAt != nil {
		set["publishedAt"] = a.PublishedAt
	}
	res, err := db.Articles().UpdateOne(ctx,
		bson.M{"_id": a.ID, "isApproved": false},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (db *DB) TransitionArticle(ctx context.Context, a *models.Article, from ...models.ArticleStatus) (bool, error) {
	res, err := db.Articles().UpdateOne(ctx,
		bson.M{"_id": a.ID, "status": bson.M{"$in": from}},
		bson.M{"$set": bson.M{"status": a.Status, "updatedAt": a.UpdatedAt}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (db *DB) SetArticleImage(ctx context.Context, id, key string) error {
	_, err := db.Articles().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"imageKey": key}})
	return err
}
