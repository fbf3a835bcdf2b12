package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/domain"
	"folio/store"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV", "dev")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "file:"+filepath.Join(dir, "folio.db")+"?_pragma=foreign_keys(1)&_time_format=sqlite")
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("S3_BUCKET", "")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCMD()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSplitTitle(t *testing.T) {
	title, body := splitTitle([]byte("intro\n# Hello World\n\nText\n"), "x.md")
	assert.Equal(t, "Hello World", title)
	assert.Equal(t, "intro\n\nText\n", body)

	title, body = splitTitle([]byte("Just text\n"), "/tmp/my-first_post.md")
	assert.Equal(t, "my first post", title)
	assert.Equal(t, "Just text\n", body)
}

func TestCommands(t *testing.T) {
	dir := setupEnv(t)
	ctx := context.Background()

	_, err := execute(t, "migrate")
	require.NoError(t, err)

	_, err = execute(t, "user", "create", "admin@example.com", "--password", "short")
	assert.Error(t, err)

	_, err = execute(t, "user", "create", "admin@example.com", "--password", "password123", "--admin")
	require.NoError(t, err)
	_, err = execute(t, "user", "create", "admin@example.com", "--password", "password123")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = execute(t, "add", "category", "Engineering", "--description", "Build notes")
	require.NoError(t, err)
	_, err = execute(t, "add", "tag", "Go")
	require.NoError(t, err)

	md := filepath.Join(dir, "post.md")
	require.NoError(t, os.WriteFile(md, []byte("# Imported Post\n\nSome **bold** text.\n"), 0o644))
	out, err := execute(t, "post", "import", md, "--author", "admin@example.com", "--publish")
	require.NoError(t, err)
	assert.Contains(t, out, "/blog/imported-post")

	db, err := store.Open(ctx, store.DriverSQLite, os.Getenv("DB_URL"))
	require.NoError(t, err)
	defer db.Close()

	p, err := store.NewPosts(db).BySlug(ctx, "imported-post")
	require.NoError(t, err)
	assert.Equal(t, "Imported Post", p.Title)
	assert.True(t, p.Published)
	assert.Equal(t, "<p>Some <strong>bold</strong> text.</p>", p.Content)

	categories, err := store.NewTaxonomy(db).Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "engineering", categories[0].Slug)

	_, err = execute(t, "user", "promote", "admin@example.com", "--revoke")
	require.NoError(t, err)
	_, err = execute(t, "post", "import", md, "--author", "admin@example.com", "--slug", "again")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = execute(t, "post", "import", md)
	assert.Error(t, err)
}

func TestServeNeedsSecretInProduction(t *testing.T) {
	setupEnv(t)
	t.Setenv("ENV", "pro")
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "serve")
	assert.EqualError(t, err, "no secret defined")
}
