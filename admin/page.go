package admin

import (
	"context"
	"errors"
	"fmt"

	"folio/domain"
	"folio/editor"
	"folio/media"
)

// NewPostID in place of a post id opens the editor on a blank post.
const NewPostID = "new"

type State int

const (
	Loading State = iota
	Editing
	Saving
	Saved
	NotFound
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case NotFound:
		return "not found"
	}
	return "unknown"
}

var ErrNotEditing = errors.New("post is not open for editing")

// Backend is what the editor page needs from the blog service.
type Backend interface {
	PostByID(ctx context.Context, sess domain.Session, id string) (*domain.Post, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Tags(ctx context.Context) ([]domain.Tag, error)
	CreatePost(ctx context.Context, sess domain.Session, in domain.PostInput) (domain.Post, error)
	UpdatePost(ctx context.Context, sess domain.Session, id string, patch domain.PostPatch) (domain.Post, error)
	UploadImage(ctx context.Context, sess domain.Session, f media.File) (string, error)
}

// Submission is the form as posted by the browser.
type Submission struct {
	Title         string
	Slug          string
	Content       string
	Excerpt       string
	FeaturedImage string
	CategoryID    string
	Published     bool
	TagIDs        []string
}

// EditorPage drives writing one post: Loading, then Editing, then Saving,
// ending in Saved or back in Editing with Err set. An unknown id ends in
// NotFound.
type EditorPage struct {
	Form       *Form
	Editor     *editor.Editor
	Categories []domain.Category
	Tags       []domain.Tag
	// Err is the last failed save, kept until dismissed.
	Err error
	// UploadErr is the last failed image upload.
	UploadErr error
	// CommandErr is the last toolbar action that could not be applied.
	CommandErr error
	Post       *domain.Post

	id      string
	state   State
	backend Backend
	sess    domain.Session
}

// OpenEditor prepares the page for id. A new post is not fetched.
func OpenEditor(ctx context.Context, backend Backend, sess domain.Session, id string) (*EditorPage, error) {
	p := &EditorPage{id: id, state: Loading, backend: backend, sess: sess}

	categories, err := backend.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	tags, err := backend.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	p.Categories, p.Tags = categories, tags

	if p.IsNew() {
		p.Form = NewForm()
	} else {
		post, err := backend.PostByID(ctx, sess, id)
		if err != nil {
			return nil, err
		}
		if post == nil {
			p.state = NotFound
			return p, nil
		}
		p.Post = post
		p.Form = FormFromPost(*post)
	}

	p.Editor = editor.New(p.Form.Content,
		editor.WithUploader(editor.UploadFunc(func(ctx context.Context, f media.File) (string, error) {
			return backend.UploadImage(ctx, sess, f)
		})),
		editor.OnChange(func(html string) { p.Form.Content = html }),
	)
	p.Form.Content = p.Editor.HTML()
	p.state = Editing
	return p, nil
}

func (p *EditorPage) IsNew() bool {
	return p.id == NewPostID
}

func (p *EditorPage) ID() string {
	return p.id
}

func (p *EditorPage) State() State {
	return p.state
}

// Fill copies a submitted form into the page, deriving the slug from the
// title the same way typing would.
func (p *EditorPage) Fill(s Submission) error {
	if p.state != Editing {
		return ErrNotEditing
	}
	f := p.Form
	f.SetTitle(s.Title)
	if s.Slug != "" || !f.SlugLinked() {
		f.SetSlug(s.Slug)
	}
	f.Excerpt = s.Excerpt
	f.FeaturedImage = s.FeaturedImage
	f.CategoryID = s.CategoryID
	f.Published = s.Published
	f.SetTags(s.TagIDs)
	if err := p.Editor.SetContent(s.Content); err != nil {
		return err
	}
	f.Content = p.Editor.HTML()
	return nil
}

// Submit validates the form and saves it. Invalid forms never reach the
// backend. A failed save keeps every value so the author can retry.
func (p *EditorPage) Submit(ctx context.Context) error {
	if p.state != Editing {
		return ErrNotEditing
	}
	p.Form.Content = p.Editor.HTML()
	if err := p.Form.Validate(); err != nil {
		return err
	}

	p.state = Saving
	p.Editor.SetDisabled(true)
	defer p.Editor.SetDisabled(false)

	var (
		post domain.Post
		err  error
	)
	if p.IsNew() {
		post, err = p.backend.CreatePost(ctx, p.sess, p.Form.Input())
	} else {
		post, err = p.backend.UpdatePost(ctx, p.sess, p.id, p.Form.Patch())
	}
	if err != nil {
		var verrs domain.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			p.Form.Errors = verrs
		case errors.Is(err, domain.ErrSlugTaken):
			p.Form.Errors = domain.ValidationErrors{"slug": "Slug is already in use"}
		}
		p.Err = err
		p.state = Editing
		return err
	}

	p.Err = nil
	p.Post = &post
	p.state = Saved
	return nil
}

func (p *EditorPage) DismissError() {
	p.Err = nil
	p.UploadErr = nil
	p.CommandErr = nil
}

// Redirect is where the browser goes after a successful save.
func (p *EditorPage) Redirect() string {
	if p.state == Saved {
		return "/admin"
	}
	return ""
}

// UploadFeaturedImage replaces the featured image. A failed upload leaves the
// previous one in place.
func (p *EditorPage) UploadFeaturedImage(ctx context.Context, f media.File) error {
	if p.state != Editing {
		return ErrNotEditing
	}
	url, err := p.backend.UploadImage(ctx, p.sess, f)
	if err != nil {
		p.UploadErr = err
		return err
	}
	p.UploadErr = nil
	p.Form.SetFeaturedImage(url)
	return nil
}

// InsertImage uploads f into the content before block at.
func (p *EditorPage) InsertImage(ctx context.Context, at int, f media.File) error {
	if p.state != Editing {
		return ErrNotEditing
	}
	if err := p.Editor.InsertImage(ctx, at, f); err != nil {
		p.UploadErr = err
		return err
	}
	p.UploadErr = nil
	return nil
}
