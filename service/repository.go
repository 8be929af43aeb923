package service

import (
	"context"

	"github.com/kevinaaaquil/newsroom/models"
)

// Repository is the entity store the engine runs against. Lookups by key return
// (nil, nil) when the entity does not exist. Writes rejected by a uniqueness
// constraint return ErrDuplicate.
type Repository interface {
	UserRepository
	PublisherRepository
	ArticleRepository
	NewsletterRepository
	SubscriptionRepository
	ResetTokenRepository
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]models.User, error)
	UsersByRole(ctx context.Context, role models.Role) ([]models.User, error)
	UpdateUserPassword(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

type PublisherRepository interface {
	CreatePublisher(ctx context.Context, p *models.Publisher) error
	DeletePublisher(ctx context.Context, id string) error
	PublisherByID(ctx context.Context, id string) (*models.Publisher, error)
	ListPublishers(ctx context.Context) ([]models.Publisher, error)
	PublishersByEditor(ctx context.Context, userID string) ([]models.Publisher, error)
	AddPublisherEditor(ctx context.Context, publisherID, userID string) error
	AddPublisherJournalist(ctx context.Context, publisherID, userID string) error

	CreateCategory(ctx context.Context, c *models.Category) error
	CategoryByID(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type ArticleRepository interface {
	CreateArticle(ctx context.Context, a *models.Article) error
	ArticleByID(ctx context.Context, id string) (*models.Article, error)
	// UpdateArticle writes the editable fields of a (title, content, summary,
	// publisher, category, updatedAt). Status, approval and image are left as stored.
	UpdateArticle(ctx context.Context, a *models.Article) error
	DeleteArticle(ctx context.Context, id string) error
	// FindArticles returns one page of matches, newest first, and the total match count.
	FindArticles(ctx context.Context, q ArticleQuery) ([]models.Article, int64, error)
	// ApproveArticle persists the approval fields of a only if the stored row is
	// not approved yet. It reports whether this call performed the transition.
	ApproveArticle(ctx context.Context, a *models.Article) (bool, error)
	// TransitionArticle moves the article to a.Status only if its stored status
	// is one of from. It reports whether the row changed.
	TransitionArticle(ctx context.Context, a *models.Article, from ...models.ArticleStatus) (bool, error)
	SetArticleImage(ctx context.Context, id, key string) error
}

type NewsletterRepository interface {
	CreateNewsletter(ctx context.Context, n *models.Newsletter) error
	NewsletterByID(ctx context.Context, id string) (*models.Newsletter, error)
	DeleteNewsletter(ctx context.Context, id string) error
	FindNewsletters(ctx context.Context, q NewsletterQuery) ([]models.Newsletter, int64, error)
}

type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, s *models.Subscription) error
	SubscriptionByID(ctx context.Context, id string) (*models.Subscription, error)
	// FindSubscription looks up the user's subscription to exactly one of publisherID or journalistID.
	FindSubscription(ctx context.Context, userID, publisherID, journalistID string) (*models.Subscription, error)
	SubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error
	// SubscriberIDs returns the ids of users subscribed to publisherID or to
	// journalistID. Empty arguments are ignored. The result may hold duplicates.
	SubscriberIDs(ctx context.Context, publisherID, journalistID string) ([]string, error)
}

type ResetTokenRepository interface {
	CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error
	ResetTokenByToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// MarkResetTokenUsed flips isUsed only if it is still false and reports whether it did.
	MarkResetTokenUsed(ctx context.Context, token string) (bool, error)
}
