package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"folio/domain"
)

type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// Create stores a new account with an already hashed password.
func (s *Users) Create(ctx context.Context, email, passwordHash string, role domain.Role) (domain.User, error) {
	now := time.Now().UTC()
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.ValidateEmail(); err != nil {
		return domain.User{}, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM users WHERE email = $1`, u.Email).Scan(&count); err != nil {
		return domain.User{}, fmt.Errorf("error checking email: %w", err)
	}
	if count != 0 {
		return domain.User{}, domain.ErrEmailTaken
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, u.ID, u.Email, passwordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("error inserting into table users: %w", err)
	}
	return u, nil
}

// ByEmail returns the account and its password hash.
func (s *Users) ByEmail(ctx context.Context, email string) (domain.User, string, error) {
	var u domain.User
	var hash, role string
	err := s.db.QueryRowContext(ctx, `SELECT id, email, password, role, created_at, updated_at FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email))).
		Scan(&u.ID, &u.Email, &hash, &role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, "", domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, "", err
	}
	u.Role = domain.Role(role)
	return u, hash, nil
}

// SetRole changes the role of an existing account.
func (s *Users) SetRole(ctx context.Context, id string, role domain.Role) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = $1, updated_at = $2 WHERE id = $3`,
		string(role), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("error updating role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
