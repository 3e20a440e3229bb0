package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/model"
)

// UserRepo reads and writes the Users table.
type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

// Authenticate reports whether a user with exactly this name and id exists.
func (r *UserRepo) Authenticate(ctx context.Context, name, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT 1 FROM Users WHERE user_name = ? AND user_id = ? LIMIT 1"),
		name, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create registers a user.  It fails with ErrUserExists when either the
// name or the id is already present.  The existence check and the insert
// share a transaction, and a unique violation on insert maps to the same
// error.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			r.db.Dialect.Rebind("SELECT 1 FROM Users WHERE user_name = ? OR user_id = ? LIMIT 1"),
			u.Name, u.ID).Scan(&one)
		switch {
		case err == nil:
			return ErrUserExists
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check user: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			r.db.Dialect.Rebind("INSERT INTO Users (user_name, user_id) VALUES (?, ?)"),
			u.Name, u.ID); err != nil {
			if database.IsDuplicateKey(err) {
				return ErrUserExists
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
}

// GetByName fetches a user by name, returning ErrUserNotFound when absent.
func (r *UserRepo) GetByName(ctx context.Context, name string) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT user_id, user_name FROM Users WHERE user_name = ? LIMIT 1"),
		name).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// Rename changes oldName to newName.  Renaming a name that no longer exists
// is not an error; the caller clears the session either way.
func (r *UserRepo) Rename(ctx context.Context, oldName, newName string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			r.db.Dialect.Rebind("UPDATE Users SET user_name = ? WHERE user_name = ?"),
			newName, oldName)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return ErrUsernameTaken
			}
			return fmt.Errorf("rename user: %w", err)
		}
		return nil
	})
}

// DeleteWithReviews removes the named user and every review they wrote in
// one transaction.  It returns the deleted user's id, or ErrUserNotFound
// when the name does not resolve (nothing is deleted then).
func (r *UserRepo) DeleteWithReviews(ctx context.Context, name string) (string, error) {
	var userID string
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			r.db.Dialect.Rebind("SELECT user_id FROM Users WHERE user_name = ?"),
			name).Scan(&userID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			r.db.Dialect.Rebind("DELETE FROM Reviews WHERE user_id = ?"), userID); err != nil {
			return fmt.Errorf("delete reviews: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			r.db.Dialect.Rebind("DELETE FROM Users WHERE user_id = ?"), userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
