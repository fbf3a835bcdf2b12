package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"folio/domain"
)

const selectPost = `SELECT p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image, p.category_id,
	p.author_id, p.published, p.published_at, p.created_at, p.updated_at,
	c.id, c.name, c.slug, c.description
	FROM posts p LEFT JOIN categories c ON c.id = p.category_id`

type Posts struct {
	db       *sql.DB
	now      func() time.Time
	slugFree func(ctx context.Context, tx *sql.Tx, slug, exceptID string) error
}

func NewPosts(db *sql.DB) *Posts {
	return &Posts{
		db:       db,
		now:      func() time.Time { return time.Now().UTC() },
		slugFree: slugFree,
	}
}

// ListPublished returns published posts, most recently published first.
func (s *Posts) ListPublished(ctx context.Context) ([]domain.Post, error) {
	return s.list(ctx, selectPost+` WHERE p.published = $1 ORDER BY p.published_at DESC, p.created_at DESC`, true)
}

// ListAll returns every post including drafts, newest first.
func (s *Posts) ListAll(ctx context.Context) ([]domain.Post, error) {
	return s.list(ctx, selectPost+` ORDER BY p.created_at DESC`)
}

func (s *Posts) BySlug(ctx context.Context, slug string) (domain.Post, error) {
	return s.one(ctx, s.db, selectPost+` WHERE p.slug = $1`, slug)
}

func (s *Posts) ByID(ctx context.Context, id string) (domain.Post, error) {
	return s.one(ctx, s.db, selectPost+` WHERE p.id = $1`, id)
}

// Create inserts the post and its tag associations in one transaction, so a
// failed tag insert leaves no post behind.
func (s *Posts) Create(ctx context.Context, in domain.PostInput, authorID string) (domain.Post, error) {
	now := s.now()
	p := domain.Post{
		ID:            uuid.NewString(),
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Excerpt:       in.Excerpt,
		FeaturedImage: in.FeaturedImage,
		CategoryID:    in.CategoryID,
		AuthorID:      authorID,
		Published:     in.Published,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.Published {
		p.PublishedAt = &now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Post{}, fmt.Errorf("error in begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.slugFree(ctx, tx, p.Slug, ""); err != nil {
		return domain.Post{}, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO posts (id, title, slug, content, excerpt, featured_image, category_id,
		author_id, published, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.Title, p.Slug, p.Content, nullString(p.Excerpt), nullString(p.FeaturedImage), nullString(p.CategoryID),
		p.AuthorID, p.Published, nullTime(p.PublishedAt), p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		// a concurrent writer took the slug after the check
		return domain.Post{}, domain.ErrSlugTaken
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("error inserting into table posts: %w", err)
	}

	if err := insertTags(ctx, tx, p.ID, in.TagIDs); err != nil {
		return domain.Post{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Post{}, fmt.Errorf("error in commit transaction: %w", err)
	}
	return s.ByID(ctx, p.ID)
}

// Update applies a partial change. published_at is stamped when the post goes
// from draft to published and cleared when it is unpublished.
func (s *Posts) Update(ctx context.Context, id string, patch domain.PostPatch) (domain.Post, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Post{}, fmt.Errorf("error in begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := s.one(ctx, tx, selectPost+` WHERE p.id = $1`, id)
	if err != nil {
		return domain.Post{}, err
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Slug != nil && *patch.Slug != p.Slug {
		if err := s.slugFree(ctx, tx, *patch.Slug, p.ID); err != nil {
			return domain.Post{}, err
		}
		p.Slug = *patch.Slug
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		p.Excerpt = *patch.Excerpt
	}
	if patch.FeaturedImage != nil {
		p.FeaturedImage = *patch.FeaturedImage
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}

	now := s.now()
	if patch.Published != nil {
		switch {
		case *patch.Published && !p.Published:
			p.PublishedAt = &now
		case !*patch.Published:
			p.PublishedAt = nil
		}
		p.Published = *patch.Published
	}

	_, err = tx.ExecContext(ctx, `UPDATE posts SET title = $1, slug = $2, content = $3, excerpt = $4,
		featured_image = $5, category_id = $6, published = $7, published_at = $8, updated_at = $9
		WHERE id = $10`,
		p.Title, p.Slug, p.Content, nullString(p.Excerpt), nullString(p.FeaturedImage), nullString(p.CategoryID),
		p.Published, nullTime(p.PublishedAt), now, p.ID)
	if isUniqueViolation(err) {
		return domain.Post{}, domain.ErrSlugTaken
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("error updating table posts: %w", err)
	}

	if patch.ReplaceTags {
		if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, p.ID); err != nil {
			return domain.Post{}, fmt.Errorf("error clearing post tags: %w", err)
		}
		if err := insertTags(ctx, tx, p.ID, patch.TagIDs); err != nil {
			return domain.Post{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Post{}, fmt.Errorf("error in commit transaction: %w", err)
	}
	return s.ByID(ctx, p.ID)
}

// Delete removes the post for good, along with its tag associations.
func (s *Posts) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error in begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_tags WHERE post_id = $1`, id); err != nil {
		return fmt.Errorf("error deleting post tags: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}

func (s *Posts) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := attachTags(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Posts) one(ctx context.Context, q querier, query string, args ...any) (domain.Post, error) {
	p, err := scanPost(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Post{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, err
	}

	posts := []domain.Post{p}
	if err := attachTags(ctx, q, posts); err != nil {
		return domain.Post{}, err
	}
	return posts[0], nil
}

func scanPost(row scanner) (domain.Post, error) {
	var (
		p                                domain.Post
		excerpt, image, categoryID       sql.NullString
		publishedAt                      sql.NullTime
		catID, catName, catSlug, catDesc sql.NullString
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &excerpt, &image, &categoryID,
		&p.AuthorID, &p.Published, &publishedAt, &p.CreatedAt, &p.UpdatedAt,
		&catID, &catName, &catSlug, &catDesc)
	if err != nil {
		return domain.Post{}, err
	}

	p.Excerpt = excerpt.String
	p.FeaturedImage = image.String
	p.CategoryID = categoryID.String
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	if catID.Valid {
		p.Category = &domain.Category{
			ID:          catID.String,
			Name:        catName.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
		}
	}
	p.Tags = []domain.Tag{}
	return p, nil
}

// attachTags loads the tags of all given posts with a single query.
func attachTags(ctx context.Context, q querier, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	index := make(map[string]int, len(posts))
	args := make([]any, len(posts))
	for i, p := range posts {
		index[p.ID] = i
		args[i] = p.ID
	}

	rows, err := q.QueryContext(ctx, `SELECT pt.post_id, t.id, t.name, t.slug
		FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (`+placeholders(1, len(args))+`)
		ORDER BY t.name`, args...)
	if err != nil {
		return fmt.Errorf("error querying post tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var t domain.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		i := index[postID]
		posts[i].Tags = append(posts[i].Tags, t)
	}
	return rows.Err()
}

func insertTags(ctx context.Context, tx *sql.Tx, postID string, tagIDs []string) error {
	for _, tagID := range domain.UniqueIDs(tagIDs) {
		_, err := tx.ExecContext(ctx, `INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)`, postID, tagID)
		if err != nil {
			return fmt.Errorf("error inserting tag %s for post %s: %w", tagID, postID, err)
		}
	}
	return nil
}

func slugFree(ctx context.Context, tx *sql.Tx, slug, exceptID string) error {
	var count int
	err := tx.QueryRowContext(ctx, `SELECT COUNT(id) FROM posts WHERE slug = $1 AND id <> $2`, slug, exceptID).Scan(&count)
	if err != nil {
		return fmt.Errorf("error checking slug: %w", err)
	}
	if count != 0 {
		return domain.ErrSlugTaken
	}
	return nil
}
