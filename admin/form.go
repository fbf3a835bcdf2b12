package admin

import (
	"errors"
	"slices"

	"folio/domain"
	"folio/editor"
)

// Form is the in-progress state of a post being written.
type Form struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	CategoryID    string
	Published     bool
	Errors        domain.ValidationErrors

	tagIDs     []string
	isNew      bool
	slugLinked bool
}

// NewForm starts a post whose slug follows the title until edited by hand.
func NewForm() *Form {
	return &Form{Content: "<p></p>", isNew: true, slugLinked: true}
}

// FormFromPost edits an existing post; its slug never follows the title.
func FormFromPost(p domain.Post) *Form {
	return &Form{
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		FeaturedImage: p.FeaturedImage,
		CategoryID:    p.CategoryID,
		Published:     p.Published,
		tagIDs:        p.TagIDs(),
	}
}

func (f *Form) SetTitle(title string) {
	f.Title = title
	if f.slugLinked {
		f.Slug = domain.Slugify(title)
	}
}

// SetSlug stores a hand-written slug. On a new post, typing exactly the
// derived slug links it to the title again.
func (f *Form) SetSlug(slug string) {
	f.Slug = slug
	f.slugLinked = f.isNew && slug == domain.Slugify(f.Title)
}

func (f *Form) SlugLinked() bool {
	return f.slugLinked
}

func (f *Form) ToggleTag(id string) {
	if i := slices.Index(f.tagIDs, id); i >= 0 {
		f.tagIDs = slices.Delete(f.tagIDs, i, i+1)
		return
	}
	f.tagIDs = append(f.tagIDs, id)
}

// SetTags replaces the selection, as a submitted set of checkboxes does.
func (f *Form) SetTags(ids []string) {
	f.tagIDs = domain.UniqueIDs(ids)
}

func (f *Form) HasTag(id string) bool {
	return slices.Contains(f.tagIDs, id)
}

func (f *Form) TagIDs() []string {
	return slices.Clone(f.tagIDs)
}

func (f *Form) SetFeaturedImage(url string) {
	f.FeaturedImage = url
}

// ClearFeaturedImage forgets the image. The stored object is left in place.
func (f *Form) ClearFeaturedImage() {
	f.FeaturedImage = ""
}

// Validate fills Errors and returns them, or nil when the form can be sent.
func (f *Form) Validate() error {
	f.Errors = nil
	err := f.Input().Validate()
	var verrs domain.ValidationErrors
	if err != nil && !errors.As(err, &verrs) {
		return err
	}
	if editor.IsBlank(f.Content) {
		if verrs == nil {
			verrs = domain.ValidationErrors{}
		}
		verrs["content"] = "Content is required"
	}
	if len(verrs) == 0 {
		return nil
	}
	f.Errors = verrs
	return verrs
}

func (f *Form) Input() domain.PostInput {
	return domain.PostInput{
		Title:         f.Title,
		Slug:          f.Slug,
		Content:       f.Content,
		Excerpt:       f.Excerpt,
		FeaturedImage: f.FeaturedImage,
		CategoryID:    f.CategoryID,
		Published:     f.Published,
		TagIDs:        f.TagIDs(),
	}
}

// Patch sends every field, tags as a full replacement.
func (f *Form) Patch() domain.PostPatch {
	in := f.Input()
	return domain.PostPatch{
		Title:         &in.Title,
		Slug:          &in.Slug,
		Content:       &in.Content,
		Excerpt:       &in.Excerpt,
		FeaturedImage: &in.FeaturedImage,
		CategoryID:    &in.CategoryID,
		Published:     &in.Published,
		ReplaceTags:   true,
		TagIDs:        in.TagIDs,
	}
}
