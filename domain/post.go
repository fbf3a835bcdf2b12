package domain

import (
	"strings"
	"time"
)

const (
	MaxTitleLen   = 200
	MaxSlugLen    = 200
	MaxExcerptLen = 500
)

type Post struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	CategoryID    string     `json:"category_id,omitempty"`
	AuthorID      string     `json:"author_id"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Category      *Category  `json:"category,omitempty"`
	Tags          []Tag      `json:"tags"`
}

// TagIDs returns the ids of the tags attached to the post.
func (p Post) TagIDs() []string {
	ids := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostInput carries everything needed to create a post.
type PostInput struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	CategoryID    string
	Published     bool
	TagIDs        []string
}

func (in PostInput) Validate() error {
	errs := ValidationErrors{}
	errs.check("title", validateTitle(in.Title))
	errs.check("slug", ValidateSlug(in.Slug))
	errs.check("content", validateContent(in.Content))
	errs.check("excerpt", validateExcerpt(in.Excerpt))
	return errs.orNil()
}

// PostPatch is a partial update. Nil fields are left untouched. Tags are
// replaced as a whole when ReplaceTags is set, even with an empty TagIDs.
type PostPatch struct {
	Title         *string
	Slug          *string
	Content       *string
	Excerpt       *string
	FeaturedImage *string
	CategoryID    *string
	Published     *bool
	ReplaceTags   bool
	TagIDs        []string
}

func (p PostPatch) Validate() error {
	errs := ValidationErrors{}
	if p.Title != nil {
		errs.check("title", validateTitle(*p.Title))
	}
	if p.Slug != nil {
		errs.check("slug", ValidateSlug(*p.Slug))
	}
	if p.Content != nil {
		errs.check("content", validateContent(*p.Content))
	}
	if p.Excerpt != nil {
		errs.check("excerpt", validateExcerpt(*p.Excerpt))
	}
	return errs.orNil()
}

func validateTitle(title string) string {
	switch {
	case strings.TrimSpace(title) == "":
		return "Title is required"
	case len([]rune(title)) > MaxTitleLen:
		return "Title must be at most 200 characters"
	}
	return ""
}

func validateContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Content is required"
	}
	return ""
}

func validateExcerpt(excerpt string) string {
	if len([]rune(excerpt)) > MaxExcerptLen {
		return "Excerpt must be at most 500 characters"
	}
	return ""
}

// UniqueIDs drops empty and repeated ids, keeping first-seen order.
func UniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
