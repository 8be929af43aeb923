package models

import "time"

// ResetTokenTTL is how long a password reset token stays usable after creation.
const ResetTokenTTL = 24 * time.Hour

// Subscription links a reader to exactly one publisher or one journalist.
type Subscription struct {
	ID           string    `bson:"_id" json:"id"`
	UserID       string    `bson:"userId" json:"userId"`
	PublisherID  string    `bson:"publisherId,omitempty" json:"publisherId,omitempty"`
	JournalistID string    `bson:"journalistId,omitempty" json:"journalistId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// PasswordResetToken is a one-time credential. Once IsUsed flips it never flips back.
type PasswordResetToken struct {
	ID        string    `bson:"_id" json:"-"`
	UserID    string    `bson:"userId" json:"-"`
	Token     string    `bson:"token" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"-"`
	IsUsed    bool      `bson:"isUsed" json:"-"`
}

// IsValid reports whether the token can still be consumed at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	if t.IsUsed {
		return false
	}
	return now.Before(t.CreatedAt.Add(ResetTokenTTL))
}
