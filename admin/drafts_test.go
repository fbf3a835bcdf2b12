package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/domain"
)

func TestDraftsKeepOnePagePerAuthorAndPost(t *testing.T) {
	d := NewDrafts(time.Hour)
	page, err := OpenEditor(context.Background(), newBackend(), adminSession, NewPostID)
	require.NoError(t, err)

	_, _, ok := d.Checkout(adminSession, NewPostID)
	assert.False(t, ok)

	d.Put(page)
	got, release, ok := d.Checkout(adminSession, NewPostID)
	require.True(t, ok)
	assert.Same(t, page, got)
	release()

	other := domain.Session{UserID: "u2", Role: domain.RoleAdmin}
	_, _, ok = d.Checkout(other, NewPostID)
	assert.False(t, ok, "pages are not shared between authors")

	d.Drop(adminSession, NewPostID)
	assert.Equal(t, 0, d.Len())
}

func TestDraftsExpire(t *testing.T) {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	d := NewDrafts(time.Hour)
	d.now = func() time.Time { return clock }

	page, err := OpenEditor(context.Background(), newBackend(), adminSession, NewPostID)
	require.NoError(t, err)
	d.Put(page)

	clock = clock.Add(30 * time.Minute)
	_, release, ok := d.Checkout(adminSession, NewPostID)
	require.True(t, ok)
	release()

	// the checkout above counts as use
	clock = clock.Add(45 * time.Minute)
	assert.Equal(t, 1, d.Len())

	clock = clock.Add(2 * time.Hour)
	assert.Equal(t, 0, d.Len())
}

func TestDraftsCheckoutIsExclusive(t *testing.T) {
	d := NewDrafts(time.Hour)
	page, err := OpenEditor(context.Background(), newBackend(), adminSession, NewPostID)
	require.NoError(t, err)
	d.Put(page)

	_, release, ok := d.Checkout(adminSession, NewPostID)
	require.True(t, ok)

	acquired := make(chan struct{})
	go func() {
		_, release2, ok := d.Checkout(adminSession, NewPostID)
		assert.True(t, ok)
		close(acquired)
		release2()
	}()

	select {
	case <-acquired:
		t.Fatal("second checkout must wait for release")
	case <-time.After(50 * time.Millisecond):
	}
	release()
	<-acquired
}
