// Package blog is the data-access layer for posts: named read operations served
// through the cache, and mutations that invalidate what they make stale.
package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"folio/cache"
	"folio/domain"
	"folio/editor"
	"folio/media"
)

type PostStore interface {
	ListPublished(ctx context.Context) ([]domain.Post, error)
	ListAll(ctx context.Context) ([]domain.Post, error)
	BySlug(ctx context.Context, slug string) (domain.Post, error)
	ByID(ctx context.Context, id string) (domain.Post, error)
	Create(ctx context.Context, in domain.PostInput, authorID string) (domain.Post, error)
	Update(ctx context.Context, id string, patch domain.PostPatch) (domain.Post, error)
	Delete(ctx context.Context, id string) error
}

type TaxonomyStore interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Tags(ctx context.Context) ([]domain.Tag, error)
	CreateCategory(ctx context.Context, name, description string) (domain.Category, error)
	CreateTag(ctx context.Context, name string) (domain.Tag, error)
}

type ImageUploader interface {
	Upload(ctx context.Context, f media.File) (string, error)
}

type Service struct {
	posts    PostStore
	taxonomy TaxonomyStore
	runner   *cache.Runner
	images   ImageUploader
	logger   echo.Logger
}

func NewService(posts PostStore, taxonomy TaxonomyStore, runner *cache.Runner, images ImageUploader, logger echo.Logger) *Service {
	return &Service{
		posts:    posts,
		taxonomy: taxonomy,
		runner:   runner,
		images:   images,
		logger:   logger,
	}
}

// PublishedPosts lists what the public may read, most recently published first.
func (s *Service) PublishedPosts(ctx context.Context) ([]domain.Post, error) {
	return cache.Fetch(ctx, s.runner, cache.Key("posts.published"), cache.Tags[[]domain.Post](cache.TagPublished),
		s.posts.ListPublished)
}

// AllPosts lists drafts and published posts, newest first.
func (s *Service) AllPosts(ctx context.Context, sess domain.Session) ([]domain.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.runner, cache.Key("posts.all"), cache.Tags[[]domain.Post](cache.TagAll),
		s.posts.ListAll)
}

// PostBySlug returns nil without error when no post has the slug. Drafts are
// returned too; callers decide who may see them.
func (s *Service) PostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return s.one(ctx, cache.Key("post.slug", slug), func(ctx context.Context) (domain.Post, error) {
		return s.posts.BySlug(ctx, slug)
	})
}

// PostByID returns nil without error when the id is unknown.
func (s *Service) PostByID(ctx context.Context, sess domain.Session, id string) (*domain.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.one(ctx, cache.Key("post.id", id), func(ctx context.Context) (domain.Post, error) {
		return s.posts.ByID(ctx, id)
	})
}

func (s *Service) one(ctx context.Context, key string, fn func(context.Context) (domain.Post, error)) (*domain.Post, error) {
	post, err := cache.Fetch(ctx, s.runner, key, postTags, fn)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func postTags(p domain.Post) []string {
	return []string{cache.PostTag(p.ID)}
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return cache.Fetch(ctx, s.runner, cache.Key("categories"), cache.Tags[[]domain.Category](cache.TagTaxonomy),
		s.taxonomy.Categories)
}

func (s *Service) Tags(ctx context.Context) ([]domain.Tag, error) {
	return cache.Fetch(ctx, s.runner, cache.Key("tags"), cache.Tags[[]domain.Tag](cache.TagTaxonomy),
		s.taxonomy.Tags)
}

// CreateCategory adds a category and drops the cached taxonomy. It serves
// operator tooling and carries no session.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (domain.Category, error) {
	c, err := s.taxonomy.CreateCategory(ctx, name, description)
	if err != nil {
		return domain.Category{}, err
	}
	s.invalidate(ctx, cache.TagTaxonomy)
	return c, nil
}

func (s *Service) CreateTag(ctx context.Context, name string) (domain.Tag, error) {
	t, err := s.taxonomy.CreateTag(ctx, name)
	if err != nil {
		return domain.Tag{}, err
	}
	s.invalidate(ctx, cache.TagTaxonomy)
	return t, nil
}

// CreatePost stores a new post authored by the caller.
func (s *Service) CreatePost(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Post{}, err
	}
	in.Content = editor.Sanitize(in.Content)
	in.TagIDs = domain.UniqueIDs(in.TagIDs)
	if err := validateInput(in); err != nil {
		return domain.Post{}, err
	}

	post, err := s.posts.Create(ctx, in, sess.UserID)
	if err != nil {
		return domain.Post{}, err
	}
	s.logger.Infoj(log.JSON{"msg": "post created", "post_id": post.ID, "slug": post.Slug, "published": post.Published})
	s.invalidate(ctx, cache.TagPublished, cache.TagAll)
	return post, nil
}

// UpdatePost applies a partial change to an existing post.
func (s *Service) UpdatePost(ctx context.Context, sess domain.Session, id string, patch domain.PostPatch) (domain.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return domain.Post{}, err
	}
	if patch.Content != nil {
		content := editor.Sanitize(*patch.Content)
		patch.Content = &content
	}
	if patch.ReplaceTags {
		patch.TagIDs = domain.UniqueIDs(patch.TagIDs)
	}
	if err := validatePatch(patch); err != nil {
		return domain.Post{}, err
	}

	post, err := s.posts.Update(ctx, id, patch)
	if err != nil {
		return domain.Post{}, err
	}
	s.logger.Infoj(log.JSON{"msg": "post updated", "post_id": post.ID, "slug": post.Slug, "published": post.Published})
	s.invalidate(ctx, cache.TagPublished, cache.TagAll, cache.PostTag(id))
	return post, nil
}

// SetPublished flips only the visibility of a post.
func (s *Service) SetPublished(ctx context.Context, sess domain.Session, id string, published bool) (domain.Post, error) {
	return s.UpdatePost(ctx, sess, id, domain.PostPatch{Published: &published})
}

// DeletePost removes a post permanently.
func (s *Service) DeletePost(ctx context.Context, sess domain.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infoj(log.JSON{"msg": "post deleted", "post_id": id})
	s.invalidate(ctx, cache.TagPublished, cache.TagAll, cache.PostTag(id))
	return nil
}

// UploadImage stores an image for use in a post and returns its URL.
func (s *Service) UploadImage(ctx context.Context, sess domain.Session, f media.File) (string, error) {
	if err := requireAdmin(sess); err != nil {
		return "", err
	}
	return s.images.Upload(ctx, f)
}

// Uploader binds image uploads to the caller, for the editor.
func (s *Service) Uploader(sess domain.Session) editor.Uploader {
	return editor.UploadFunc(func(ctx context.Context, f media.File) (string, error) {
		return s.UploadImage(ctx, sess, f)
	})
}

// invalidate never fails the mutation that already succeeded.
func (s *Service) invalidate(ctx context.Context, tags ...string) {
	if err := s.runner.Invalidate(ctx, tags...); err != nil {
		s.logger.Errorj(log.JSON{"msg": "cache invalidation failed", "tags": tags, "error": err.Error()})
	}
}

func requireAdmin(sess domain.Session) error {
	if sess.UserID == "" {
		return domain.ErrUnauthorized
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func validateInput(in domain.PostInput) error {
	err := in.Validate()
	if editor.IsBlank(in.Content) {
		return withField(err, "content", "Content is required")
	}
	return err
}

func validatePatch(p domain.PostPatch) error {
	err := p.Validate()
	if p.Content != nil && editor.IsBlank(*p.Content) {
		return withField(err, "content", "Content is required")
	}
	return err
}

func withField(err error, field, msg string) error {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			return fmt.Errorf("validate post: %w", err)
		}
		verrs = domain.ValidationErrors{}
	}
	verrs[field] = msg
	return verrs
}
