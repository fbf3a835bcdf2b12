package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"folio/domain"
)

// Taxonomy holds the category and tag reference data.
type Taxonomy struct {
	db *sql.DB
}

func NewTaxonomy(db *sql.DB) *Taxonomy {
	return &Taxonomy{db: db}
}

func (s *Taxonomy) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &desc); err != nil {
			return nil, err
		}
		c.Description = desc.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Taxonomy) Tags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error querying tags: %w", err)
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Taxonomy) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	c := domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: description,
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories (id, name, slug, description) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Slug, nullString(c.Description))
	if err != nil {
		return domain.Category{}, fmt.Errorf("error inserting category %q: %w", name, err)
	}
	return c, nil
}

func (s *Taxonomy) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	t := domain.Tag{
		ID:   uuid.NewString(),
		Name: name,
		Slug: domain.Slugify(name),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO tags (id, name, slug) VALUES ($1, $2, $3)`, t.ID, t.Name, t.Slug)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("error inserting tag %q: %w", name, err)
	}
	return t, nil
}
