package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"

	"folio/domain"
)

// TestPostgres runs the store against a real Postgres container. It is skipped
// with -short or when no container runtime is available.
func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpg.Run(ctx, "postgres:16-alpine",
		tcpg.WithDatabase("folio"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("password"),
		tcpg.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { testcontainers.TerminateContainer(container) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db, DriverPostgres))
	require.NoError(t, Migrate(db, DriverPostgres))

	author, err := NewUsers(db).Create(ctx, "pg@example.com", "hash", domain.RoleAdmin)
	require.NoError(t, err)

	tax := NewTaxonomy(db)
	tag, err := tax.CreateTag(ctx, "Postgres")
	require.NoError(t, err)

	posts := NewPosts(db)
	p, err := posts.Create(ctx, domain.PostInput{
		Title: "On Postgres", Slug: "on-postgres", Content: "x", Published: true, TagIDs: []string{tag.ID},
	}, author.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, p.TagIDs())

	_, err = posts.Create(ctx, domain.PostInput{Title: "Dup", Slug: "on-postgres", Content: "x"}, author.ID)
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	unchecked := NewPosts(db)
	unchecked.slugFree = func(context.Context, *sql.Tx, string, string) error { return nil }
	_, err = unchecked.Create(ctx, domain.PostInput{Title: "Dup", Slug: "on-postgres", Content: "x"}, author.ID)
	assert.ErrorIs(t, err, domain.ErrSlugTaken)

	published, err := posts.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)

	no := false
	p, err = posts.Update(ctx, p.ID, domain.PostPatch{Published: &no})
	require.NoError(t, err)
	assert.Nil(t, p.PublishedAt)

	require.NoError(t, posts.Delete(ctx, p.ID))
	_, err = posts.BySlug(ctx, "on-postgres")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
