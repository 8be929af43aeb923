package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
)

func (s *Store) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	_, err := s.exec(ctx, s.sb.Insert("password_reset_tokens").
		Columns("id", "user_id", "token", "created_at", "is_used").
		Values(t.ID, t.UserID, t.Token, t.CreatedAt.UTC(), t.IsUsed))
	return err
}

func (s *Store) ResetTokenByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	row, err := s.queryRow(ctx, s.sb.Select("id", "user_id", "token", "created_at", "is_used").
		From("password_reset_tokens").Where(sq.Eq{"token": token}))
	if err != nil {
		return nil, err
	}
	var t models.PasswordResetToken
	err = row.Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.IsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

// MarkResetTokenUsed only updates a token that is still unused.
func (s *Store) MarkResetTokenUsed(ctx context.Context, token string) (bool, error) {
	res, err := s.exec(ctx, s.sb.Update("password_reset_tokens").Set("is_used", true).
		Where(sq.Eq{"token": token, "is_used": false}))
	if err != nil {
		return false, err
	}
	return affected(res)
}
