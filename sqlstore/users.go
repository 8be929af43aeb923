package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
)

var userColumns = []string{"id", "username", "email", "first_name", "last_name", "password", "role", "created_at"}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Password, &role, &u.CreatedAt)
	u.Role = models.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.exec(ctx, s.sb.Insert("users").Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Password, string(u.Role), u.CreatedAt.UTC()))
	return err
}

func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userWhere(ctx, sq.Eq{"id": id})
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userWhere(ctx, sq.Eq{"email": email})
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userWhere(ctx, sq.Eq{"username": username})
}

func (s *Store) userWhere(ctx context.Context, where sq.Sqlizer) (*models.User, error) {
	row, err := s.queryRow(ctx, s.sb.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return s.usersWhere(ctx, sq.Eq{"id": ids})
}

func (s *Store) UsersByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return s.usersWhere(ctx, sq.Eq{"role": string(role)})
}

func (s *Store) usersWhere(ctx context.Context, where sq.Sqlizer) ([]models.User, error) {
	rows, err := s.query(ctx, s.sb.Select(userColumns...).From("users").Where(where).OrderBy("username"))
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanUser)
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, hash string) error {
	_, err := s.exec(ctx, s.sb.Update("users").Set("password", hash).Where(sq.Eq{"id": id}))
	return err
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.sb.Delete("users").Where(sq.Eq{"id": id}))
	return err
}
