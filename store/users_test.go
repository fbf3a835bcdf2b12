package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/domain"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	u, err := users.Create(ctx, " Ana@Example.com ", "secret-hash", domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	_, err = users.Create(ctx, "ana@example.com", "other", domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	_, err = users.Create(ctx, "not-an-email", "x", domain.RoleUser)
	assert.Error(t, err)

	got, hash, err := users.ByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "secret-hash", hash)
	assert.Equal(t, domain.RoleUser, got.Role)

	require.NoError(t, users.SetRole(ctx, u.ID, domain.RoleAdmin))
	got, _, err = users.ByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	assert.ErrorIs(t, users.SetRole(ctx, "missing", domain.RoleAdmin), domain.ErrNotFound)

	_, _, err = users.ByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
