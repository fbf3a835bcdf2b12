package admin

import (
	"sync"
	"time"

	"folio/domain"
)

// Drafts keeps open editor pages between requests, one per author and post,
// so edit history survives a round trip through the browser. Pages left
// alone for longer than the ttl are dropped.
type Drafts struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	pages map[string]*draft
}

type draft struct {
	mu      sync.Mutex
	page    *EditorPage
	touched time.Time
}

func NewDrafts(ttl time.Duration) *Drafts {
	return &Drafts{ttl: ttl, now: time.Now, pages: map[string]*draft{}}
}

func draftKey(sess domain.Session, id string) string {
	return sess.UserID + "/" + id
}

// Put keeps page for its author, replacing any page kept for the same post.
func (d *Drafts) Put(page *EditorPage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()
	d.pages[draftKey(page.sess, page.id)] = &draft{page: page, touched: d.now()}
}

// Checkout returns the page kept for sess and id, held for the caller until
// release is called. ok is false when nothing is kept.
func (d *Drafts) Checkout(sess domain.Session, id string) (page *EditorPage, release func(), ok bool) {
	d.mu.Lock()
	d.sweep()
	dr, ok := d.pages[draftKey(sess, id)]
	if ok {
		dr.touched = d.now()
	}
	d.mu.Unlock()
	if !ok {
		return nil, nil, false
	}
	dr.mu.Lock()
	return dr.page, dr.mu.Unlock, true
}

func (d *Drafts) Drop(sess domain.Session, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pages, draftKey(sess, id))
}

func (d *Drafts) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sweep()
	return len(d.pages)
}

func (d *Drafts) sweep() {
	now := d.now()
	for k, dr := range d.pages {
		if now.Sub(dr.touched) > d.ttl {
			delete(d.pages, k)
		}
	}
}
