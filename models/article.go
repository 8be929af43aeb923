package models

import "time"

type ArticleStatus string

const (
	StatusDraft     ArticleStatus = "draft"
	StatusPending   ArticleStatus = "pending"
	StatusApproved  ArticleStatus = "approved"
	StatusPublished ArticleStatus = "published"
	StatusRejected  ArticleStatus = "rejected"
)

func (s ArticleStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusPublished, StatusRejected:
		return true
	}
	return false
}

// Article is authored by exactly one journalist. IsApproved implies Status is
// approved or published and ApprovedBy is set.
type Article struct {
	ID          string        `bson:"_id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Content     string        `bson:"content" json:"content"`
	Summary     string        `bson:"summary,omitempty" json:"summary"`
	AuthorID    string        `bson:"authorId" json:"authorId"`
	PublisherID string        `bson:"publisherId,omitempty" json:"publisherId,omitempty"`
	CategoryID  string        `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	Status      ArticleStatus `bson:"status" json:"status"`
	IsApproved  bool          `bson:"isApproved" json:"isApproved"`
	ApprovedBy  string        `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt  *time.Time    `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	ImageKey    string        `bson:"imageKey,omitempty" json:"-"` // object key in S3
	HasImage    bool          `bson:"-" json:"hasImage"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
	PublishedAt *time.Time    `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
}

// Normalize forces an approved article into the published state. It reports
// whether anything changed, so saving an already published article is a no-op.
func (a *Article) Normalize(now time.Time) bool {
	if !a.IsApproved || a.Status == StatusPublished {
		return false
	}
	a.Status = StatusPublished
	if a.PublishedAt == nil {
		t := now
		a.PublishedAt = &t
	}
	return true
}

// Newsletter has the authorship shape of an Article but no approval workflow;
// it is visible as soon as it exists.
type Newsletter struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	AuthorID    string    `bson:"authorId" json:"authorId"`
	PublisherID string    `bson:"publisherId,omitempty" json:"publisherId,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
