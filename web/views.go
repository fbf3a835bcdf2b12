package web

import (
	"folio/admin"
	"folio/domain"
)

type BlogListView struct {
	Layout
	Posts []domain.Post
}

type BlogPostView struct {
	Layout
	Post domain.Post
}

type AdminListView struct {
	Layout
	Rows  []admin.Row
	Empty bool
	Err   error
}

type EditorView struct {
	Layout
	Page *admin.EditorPage
}

type DeleteView struct {
	Layout
	Post domain.Post
}

type UserFormView struct {
	Layout
	Email string
	Next  string
	Error string
}

// AccessDeniedView names the signed in caller the guard turned away.
type AccessDeniedView struct {
	Layout
	Caller domain.Session
}

type ErrorView struct {
	Layout
	Code    int
	Message string
}
