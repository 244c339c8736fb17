package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mpetrov/screencast/internal/models"
)

// UserRepository reads the identity projection. The identity service owns
// these rows; Upsert exists for the projection sync and for tests.
type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := r.db.rebind(`SELECT id, name, image, email, created_at FROM users WHERE id = ?`)

	var user models.User
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Image, &user.Email, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := r.db.rebind(`
		INSERT INTO users (id, name, image, email, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, image = excluded.image, email = excluded.email`)

	_, err := r.db.conn.ExecContext(ctx, query, user.ID, user.Name, user.Image, user.Email, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
