package admin

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/domain"
)

func TestNewFormSlugFollowsTitle(t *testing.T) {
	f := NewForm()

	f.SetTitle("My First Post!!")
	assert.Equal(t, "my-first-post", f.Slug)

	f.SetSlug("custom-slug")
	f.SetTitle("My First Post, Revised")
	assert.Equal(t, "custom-slug", f.Slug)
	assert.False(t, f.SlugLinked())

	// typing the derived slug back links it again
	f.SetSlug("my-first-post-revised")
	assert.True(t, f.SlugLinked())
	f.SetTitle("Another Title")
	assert.Equal(t, "another-title", f.Slug)
}

func TestExistingPostSlugIsIndependent(t *testing.T) {
	f := FormFromPost(domain.Post{Title: "Old", Slug: "old", Content: "<p>x</p>"})

	f.SetTitle("New Title")
	assert.Equal(t, "old", f.Slug)
	f.SetSlug("new-title")
	f.SetTitle("Newer")
	assert.Equal(t, "new-title", f.Slug)
}

func TestToggleTag(t *testing.T) {
	f := NewForm()
	f.ToggleTag("a")
	f.ToggleTag("b")
	f.ToggleTag("b")
	assert.Equal(t, []string{"a"}, f.Input().TagIDs)
	assert.True(t, f.HasTag("a"))
	assert.False(t, f.HasTag("b"))

	f.ToggleTag("c")
	f.ToggleTag("a")
	assert.Equal(t, []string{"c"}, f.TagIDs())
}

func TestFormValidate(t *testing.T) {
	f := NewForm()
	err := f.Validate()
	require.Error(t, err)
	assert.Equal(t, domain.ValidationErrors{
		"title":   "Title is required",
		"slug":    "Slug is required",
		"content": "Content is required",
	}, f.Errors)

	f.SetTitle("Fine")
	f.Content = "<p>body</p>"
	f.Excerpt = strings.Repeat("x", 501)
	require.Error(t, f.Validate())
	assert.Equal(t, domain.ValidationErrors{"excerpt": "Excerpt must be at most 500 characters"}, f.Errors)

	f.Excerpt = ""
	require.NoError(t, f.Validate())
	assert.Nil(t, f.Errors)
}

func TestPublishedNeedsNoStricterValidation(t *testing.T) {
	f := NewForm()
	f.SetTitle("T")
	f.Content = "<p>x</p>"
	f.Published = true
	assert.NoError(t, f.Validate())
}

func TestFeaturedImage(t *testing.T) {
	f := NewForm()
	f.SetFeaturedImage("/uploads/a.png")
	f.SetFeaturedImage("/uploads/b.png")
	assert.Equal(t, "/uploads/b.png", f.Input().FeaturedImage)
	f.ClearFeaturedImage()
	assert.Empty(t, f.Input().FeaturedImage)
}

func TestPatchReplacesEveryField(t *testing.T) {
	f := FormFromPost(domain.Post{
		Title: "T", Slug: "t", Content: "<p>x</p>", CategoryID: "c1",
		Tags: []domain.Tag{{ID: "a"}, {ID: "b"}},
	})
	f.ToggleTag("a")
	f.ToggleTag("b")

	p := f.Patch()
	require.NotNil(t, p.Title)
	assert.Equal(t, "T", *p.Title)
	assert.Equal(t, "c1", *p.CategoryID)
	assert.False(t, *p.Published)
	assert.True(t, p.ReplaceTags)
	assert.Empty(t, p.TagIDs)
}
