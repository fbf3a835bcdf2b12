package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"folio/domain"
)

type mockListingBackend struct {
	mock.Mock
}

func (m *mockListingBackend) AllPosts(ctx context.Context, sess domain.Session) ([]domain.Post, error) {
	args := m.Called(ctx, sess)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *mockListingBackend) DeletePost(ctx context.Context, sess domain.Session, id string) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *mockListingBackend) SetPublished(ctx context.Context, sess domain.Session, id string, published bool) (domain.Post, error) {
	args := m.Called(ctx, sess, id, published)
	return args.Get(0).(domain.Post), args.Error(1)
}

func listingFixture(t *testing.T) (*Listing, *mockListingBackend) {
	t.Helper()
	b := new(mockListingBackend)
	b.On("AllPosts", mock.Anything, adminSession).Return([]domain.Post{
		{ID: "p1", Title: "First", Slug: "first", Published: true, Category: &domain.Category{ID: "c1", Name: "Engineering"}},
		{ID: "p2", Title: "Second", Slug: "second"},
		{ID: "p3", Title: "Third", Slug: "third"},
	}, nil)
	l, err := LoadListing(context.Background(), b, adminSession)
	require.NoError(t, err)
	return l, b
}

func TestListingRows(t *testing.T) {
	l, _ := listingFixture(t)

	rows := l.Rows()
	require.Len(t, rows, 3)
	assert.False(t, l.Empty())
	assert.Equal(t, "Published", rows[0].Status())
	assert.Equal(t, "Engineering", rows[0].Category)
	assert.Equal(t, "Draft", rows[1].Status())
	assert.Empty(t, rows[1].Category)
}

func TestListingEmpty(t *testing.T) {
	b := new(mockListingBackend)
	b.On("AllPosts", mock.Anything, adminSession).Return([]domain.Post{}, nil)

	l, err := LoadListing(context.Background(), b, adminSession)
	require.NoError(t, err)
	assert.True(t, l.Empty())
	assert.Empty(t, l.Rows())
}

func TestListingLoadError(t *testing.T) {
	b := new(mockListingBackend)
	b.On("AllPosts", mock.Anything, domain.Session{}).Return(nil, domain.ErrUnauthorized)

	_, err := LoadListing(context.Background(), b, domain.Session{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	l, b := listingFixture(t)

	assert.ErrorIs(t, l.ConfirmDelete(ctx), ErrNoPending)
	assert.ErrorIs(t, l.RequestDelete("nope"), ErrUnknownPost)

	require.NoError(t, l.RequestDelete("p2"))
	post, ok := l.Confirming()
	require.True(t, ok)
	assert.Equal(t, "Second", post.Title)
	assert.True(t, l.Rows()[1].Confirming)

	l.CancelDelete()
	_, ok = l.Confirming()
	assert.False(t, ok)
	assert.ErrorIs(t, l.ConfirmDelete(ctx), ErrNoPending)
	b.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything, mock.Anything)

	b.On("DeletePost", mock.Anything, adminSession, "p2").Return(nil).Once()
	require.NoError(t, l.RequestDelete("p2"))
	require.NoError(t, l.ConfirmDelete(ctx))

	rows := l.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].ID)
	assert.Equal(t, "p3", rows[1].ID)
	b.AssertExpectations(t)
}

func TestDeleteLocksOnlyItsRow(t *testing.T) {
	ctx := context.Background()
	l, b := listingFixture(t)

	started := make(chan struct{})
	release := make(chan struct{})
	b.On("DeletePost", mock.Anything, adminSession, "p1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(nil).Once()
	b.On("SetPublished", mock.Anything, adminSession, "p2", true).
		Return(domain.Post{ID: "p2", Title: "Second", Slug: "second", Published: true}, nil).Once()

	require.NoError(t, l.RequestDelete("p1"))
	done := make(chan error, 1)
	go func() { done <- l.ConfirmDelete(ctx) }()
	<-started

	assert.True(t, l.RowDisabled("p1"))
	assert.False(t, l.RowDisabled("p2"))
	assert.ErrorIs(t, l.TogglePublish(ctx, "p1"), ErrRowBusy)
	assert.ErrorIs(t, l.RequestDelete("p1"), ErrRowBusy)
	require.NoError(t, l.TogglePublish(ctx, "p2"))

	close(release)
	require.NoError(t, <-done)

	rows := l.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "p2", rows[0].ID)
	assert.True(t, rows[0].Published)
	assert.False(t, l.RowDisabled("p1"))
}

func TestDeleteFailureKeepsRow(t *testing.T) {
	ctx := context.Background()
	l, b := listingFixture(t)
	failure := errors.New("database is locked")
	b.On("DeletePost", mock.Anything, adminSession, "p3").Return(failure).Once()

	require.NoError(t, l.RequestDelete("p3"))
	assert.ErrorIs(t, l.ConfirmDelete(ctx), failure)
	assert.ErrorIs(t, l.Err, failure)
	assert.Len(t, l.Rows(), 3)
	assert.False(t, l.RowDisabled("p3"))
}

func TestTogglePublish(t *testing.T) {
	ctx := context.Background()
	l, b := listingFixture(t)
	b.On("SetPublished", mock.Anything, adminSession, "p1", false).
		Return(domain.Post{ID: "p1", Title: "First", Slug: "first"}, nil).Once()
	b.On("SetPublished", mock.Anything, adminSession, "p3", true).
		Return(domain.Post{}, domain.ErrNotFound).Once()

	require.NoError(t, l.TogglePublish(ctx, "p1"))
	assert.Equal(t, "Draft", l.Rows()[0].Status())

	assert.ErrorIs(t, l.TogglePublish(ctx, "p3"), domain.ErrNotFound)
	assert.ErrorIs(t, l.Err, domain.ErrNotFound)
	assert.Equal(t, "Draft", l.Rows()[2].Status())

	assert.ErrorIs(t, l.TogglePublish(ctx, "nope"), ErrUnknownPost)
	b.AssertExpectations(t)
}
