package admin

import (
	"context"
	"errors"
	"sync"
	"time"

	"folio/domain"
)

var (
	ErrUnknownPost = errors.New("post is not in the list")
	ErrRowBusy     = errors.New("an action on this post is still running")
	ErrNoPending   = errors.New("no delete awaiting confirmation")
)

type ListingBackend interface {
	AllPosts(ctx context.Context, sess domain.Session) ([]domain.Post, error)
	DeletePost(ctx context.Context, sess domain.Session, id string) error
	SetPublished(ctx context.Context, sess domain.Session, id string, published bool) (domain.Post, error)
}

type Row struct {
	ID        string
	Title     string
	Slug      string
	Published bool
	Category  string
	CreatedAt time.Time
	// Busy rows have an action in flight; their controls are disabled.
	Busy bool
	// Confirming marks the row whose delete awaits confirmation.
	Confirming bool
}

func (r Row) Status() string {
	if r.Published {
		return "Published"
	}
	return "Draft"
}

// Listing is the admin table of all posts. Actions lock only their own row.
type Listing struct {
	// Err is the last failed action.
	Err error

	mu         sync.Mutex
	posts      []domain.Post
	busy       map[string]bool
	confirming string
	backend    ListingBackend
	sess       domain.Session
}

func LoadListing(ctx context.Context, backend ListingBackend, sess domain.Session) (*Listing, error) {
	posts, err := backend.AllPosts(ctx, sess)
	if err != nil {
		return nil, err
	}
	return &Listing{posts: posts, busy: make(map[string]bool), backend: backend, sess: sess}, nil
}

// Empty lists show a call to write the first post instead of a table.
func (l *Listing) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.posts) == 0
}

func (l *Listing) Rows() []Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows := make([]Row, 0, len(l.posts))
	for _, p := range l.posts {
		r := Row{
			ID:         p.ID,
			Title:      p.Title,
			Slug:       p.Slug,
			Published:  p.Published,
			CreatedAt:  p.CreatedAt,
			Busy:       l.busy[p.ID],
			Confirming: l.confirming == p.ID,
		}
		if p.Category != nil {
			r.Category = p.Category.Name
		}
		rows = append(rows, r)
	}
	return rows
}

func (l *Listing) RowDisabled(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy[id]
}

// Confirming returns the post awaiting delete confirmation, if any.
func (l *Listing) Confirming() (domain.Post, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(l.confirming)
	if i < 0 {
		return domain.Post{}, false
	}
	return l.posts[i], true
}

// RequestDelete opens the confirmation step for id. Nothing is deleted yet.
func (l *Listing) RequestDelete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.index(id) < 0 {
		return ErrUnknownPost
	}
	if l.busy[id] {
		return ErrRowBusy
	}
	l.confirming = id
	return nil
}

func (l *Listing) CancelDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.confirming = ""
}

// ConfirmDelete deletes the post awaiting confirmation. Its row stays
// disabled until the backend answers; other rows stay usable meanwhile.
func (l *Listing) ConfirmDelete(ctx context.Context) error {
	l.mu.Lock()
	id := l.confirming
	if id == "" {
		l.mu.Unlock()
		return ErrNoPending
	}
	l.confirming = ""
	l.busy[id] = true
	l.mu.Unlock()

	err := l.backend.DeletePost(ctx, l.sess, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, id)
	if err != nil {
		l.Err = err
		return err
	}
	if i := l.index(id); i >= 0 {
		l.posts = append(l.posts[:i:i], l.posts[i+1:]...)
	}
	return nil
}

// TogglePublish flips the visibility of one post.
func (l *Listing) TogglePublish(ctx context.Context, id string) error {
	l.mu.Lock()
	i := l.index(id)
	if i < 0 {
		l.mu.Unlock()
		return ErrUnknownPost
	}
	if l.busy[id] {
		l.mu.Unlock()
		return ErrRowBusy
	}
	publish := !l.posts[i].Published
	l.busy[id] = true
	l.mu.Unlock()

	post, err := l.backend.SetPublished(ctx, l.sess, id, publish)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.busy, id)
	if err != nil {
		l.Err = err
		return err
	}
	if i := l.index(id); i >= 0 {
		l.posts[i] = post
	}
	return nil
}

// index finds id among the posts. Callers hold mu.
func (l *Listing) index(id string) int {
	if id == "" {
		return -1
	}
	for i, p := range l.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
