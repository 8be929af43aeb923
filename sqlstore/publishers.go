package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/kevinaaaquil/newsroom/models"
)

var publisherColumns = []string{"p.id", "p.name", "p.description", "p.website", "p.created_at"}

func scanPublisher(row scanner) (models.Publisher, error) {
	var p models.Publisher
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Website, &p.CreatedAt)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, err
}

func (s *Store) CreatePublisher(ctx context.Context, p *models.Publisher) error {
	_, err := s.exec(ctx, s.sb.Insert("publishers").
		Columns("id", "name", "description", "website", "created_at").
		Values(p.ID, p.Name, p.Description, p.Website, p.CreatedAt.UTC()))
	if err != nil {
		return err
	}
	for _, id := range p.EditorIDs {
		if err := s.AddPublisherEditor(ctx, p.ID, id); err != nil {
			return err
		}
	}
	for _, id := range p.JournalistIDs {
		if err := s.AddPublisherJournalist(ctx, p.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) DeletePublisher(ctx context.Context, id string) error {
	for _, table := range []string{"publisher_editors", "publisher_journalists"} {
		if _, err := s.exec(ctx, s.sb.Delete(table).Where(sq.Eq{"publisher_id": id})); err != nil {
			return err
		}
	}
	_, err := s.exec(ctx, s.sb.Delete("publishers").Where(sq.Eq{"id": id}))
	return err
}

func (s *Store) PublisherByID(ctx context.Context, id string) (*models.Publisher, error) {
	row, err := s.queryRow(ctx, s.sb.Select(publisherColumns...).From("publishers p").Where(sq.Eq{"p.id": id}))
	if err != nil {
		return nil, err
	}
	p, err := scanPublisher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	pubs := []models.Publisher{p}
	if err := s.loadStaff(ctx, pubs); err != nil {
		return nil, err
	}
	return &pubs[0], nil
}

func (s *Store) ListPublishers(ctx context.Context) ([]models.Publisher, error) {
	return s.publishers(ctx, s.sb.Select(publisherColumns...).From("publishers p").OrderBy("p.name"))
}

func (s *Store) PublishersByEditor(ctx context.Context, userID string) ([]models.Publisher, error) {
	return s.publishers(ctx, s.sb.Select(publisherColumns...).From("publishers p").
		Join("publisher_editors e ON e.publisher_id = p.id").
		Where(sq.Eq{"e.user_id": userID}).
		OrderBy("p.name"))
}

func (s *Store) publishers(ctx context.Context, b sq.SelectBuilder) ([]models.Publisher, error) {
	rows, err := s.query(ctx, b)
	if err != nil {
		return nil, err
	}
	pubs, err := scanAll(rows, scanPublisher)
	if err != nil {
		return nil, err
	}
	if err := s.loadStaff(ctx, pubs); err != nil {
		return nil, err
	}
	return pubs, nil
}

// loadStaff fills EditorIDs and JournalistIDs from the membership tables.
func (s *Store) loadStaff(ctx context.Context, pubs []models.Publisher) error {
	if len(pubs) == 0 {
		return nil
	}
	index := make(map[string]int, len(pubs))
	ids := make([]string, 0, len(pubs))
	for i := range pubs {
		index[pubs[i].ID] = i
		ids = append(ids, pubs[i].ID)
		pubs[i].EditorIDs = []string{}
		pubs[i].JournalistIDs = []string{}
	}
	for _, table := range []string{"publisher_editors", "publisher_journalists"} {
		rows, err := s.query(ctx, s.sb.Select("publisher_id", "user_id").From(table).
			Where(sq.Eq{"publisher_id": ids}).OrderBy("user_id"))
		if err != nil {
			return err
		}
		type member struct{ pub, user string }
		members, err := scanAll(rows, func(r scanner) (member, error) {
			var m member
			err := r.Scan(&m.pub, &m.user)
			return m, err
		})
		if err != nil {
			return err
		}
		for _, m := range members {
			p := &pubs[index[m.pub]]
			if table == "publisher_editors" {
				p.EditorIDs = append(p.EditorIDs, m.user)
			} else {
				p.JournalistIDs = append(p.JournalistIDs, m.user)
			}
		}
	}
	return nil
}

func (s *Store) AddPublisherEditor(ctx context.Context, publisherID, userID string) error {
	return s.addMember(ctx, "publisher_editors", publisherID, userID)
}

func (s *Store) AddPublisherJournalist(ctx context.Context, publisherID, userID string) error {
	return s.addMember(ctx, "publisher_journalists", publisherID, userID)
}

func (s *Store) addMember(ctx context.Context, table, publisherID, userID string) error {
	_, err := s.exec(ctx, s.sb.Insert(table).Columns("publisher_id", "user_id").
		Values(publisherID, userID).Suffix("ON CONFLICT DO NOTHING"))
	return err
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.exec(ctx, s.sb.Insert("categories").Columns("id", "name", "description").
		Values(c.ID, c.Name, c.Description))
	return err
}

func scanCategory(row scanner) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description)
	return c, err
}

func (s *Store) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	row, err := s.queryRow(ctx, s.sb.Select("id", "name", "description").From("categories").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.query(ctx, s.sb.Select("id", "name", "description").From("categories").OrderBy("name"))
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanCategory)
}
