package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/model"
)

// ReviewRepo handles the Reviews table.
type ReviewRepo struct{ db *database.DB }

func NewReviewRepo(db *database.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// ProfileReview is a review as listed on the profile page, joined with the
// name of the product it is about.
type ProfileReview struct {
	ReviewID    string `json:"review_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Title       string `json:"review_title"`
	Content     string `json:"review_content"`
}

// UserReview is a review on the dedicated listing page.  It carries the
// author's id; ProductName is looked up per review.
type UserReview struct {
	ReviewID    string `json:"review_id"`
	ProductID   string `json:"product_id"`
	UserID      string `json:"user_id"`
	Title       string `json:"review_title"`
	Content     string `json:"review_content"`
	ProductName string `json:"product_name"`
}

// Create stores rv on behalf of authorName.  The author's user_id is
// resolved inside the INSERT.  ErrReviewExists is returned when rv.ID is
// already taken, whether the pre-check or the primary key catches it.
func (r *ReviewRepo) Create(ctx context.Context, rv model.Review, authorName string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			r.db.Dialect.Rebind("SELECT 1 FROM Reviews WHERE review_id = ?"), rv.ID).Scan(&one)
		switch {
		case err == nil:
			return ErrReviewExists
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check review id: %w", err)
		}
		_, err = tx.ExecContext(ctx, r.db.Dialect.Rebind(`INSERT INTO Reviews
				(review_id, product_id, user_id, review_title, review_content)
			VALUES (?, ?, (SELECT user_id FROM Users WHERE user_name = ?), ?, ?)`),
			rv.ID, rv.ProductID, authorName, rv.Title, rv.Content)
		if err != nil {
			if database.IsDuplicateKey(err) {
				return ErrReviewExists
			}
			return fmt.Errorf("insert review: %w", err)
		}
		return nil
	})
}

// ListForProfile returns the reviews written by userName joined with their
// product names.  Reviews of products that no longer exist are omitted by
// the join.
func (r *ReviewRepo) ListForProfile(ctx context.Context, userName string) ([]ProfileReview, error) {
	q := r.db.Dialect.Rebind(`SELECT r.review_id, r.product_id, p.product_name,
			COALESCE(r.review_title, ''), COALESCE(r.review_content, '')
		FROM Reviews r
		JOIN Products p ON r.product_id = p.product_id
		WHERE r.user_id = (SELECT user_id FROM Users WHERE user_name = ?)
		ORDER BY r.review_id`)
	rows, err := r.db.QueryContext(ctx, q, userName)
	if err != nil {
		return nil, fmt.Errorf("profile reviews: %w", err)
	}
	defer rows.Close()

	out := []ProfileReview{}
	for rows.Next() {
		var pr ProfileReview
		if err := rows.Scan(&pr.ReviewID, &pr.ProductID, &pr.ProductName, &pr.Title, &pr.Content); err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

// ListByUserID returns every review whose user_id is userID, without
// product names.
func (r *ReviewRepo) ListByUserID(ctx context.Context, userID string) ([]model.Review, error) {
	q := r.db.Dialect.Rebind(`SELECT review_id, product_id, user_id,
			COALESCE(review_title, ''), COALESCE(review_content, ''), sentiment
		FROM Reviews
		WHERE user_id = ?
		ORDER BY review_id`)
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("user reviews: %w", err)
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var (
			rv        model.Review
			sentiment sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Title, &rv.Content, &sentiment); err != nil {
			return nil, err
		}
		if sentiment.Valid {
			s := sentiment.String
			rv.Sentiment = &s
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// ListByUserDetailed resolves userName to an id (ErrUserNotFound when it
// does not exist), loads that user's reviews and then looks up each
// review's product name.  Reviews whose product is missing are dropped.
func (r *ReviewRepo) ListByUserDetailed(ctx context.Context, userName string) ([]UserReview, error) {
	u, err := NewUserRepo(r.db).GetByName(ctx, userName)
	if err != nil {
		return nil, err
	}
	// The reviews are read in full before the per-product lookups so the
	// cursor is closed before further queries run.
	reviews, err := r.ListByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	products := NewProductRepo(r.db)
	out := make([]UserReview, 0, len(reviews))
	for _, rv := range reviews {
		name, ok, err := products.NameByID(ctx, rv.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product name for review %s: %w", rv.ID, err)
		}
		if !ok {
			continue
		}
		out = append(out, UserReview{
			ReviewID:    rv.ID,
			ProductID:   rv.ProductID,
			UserID:      rv.UserID,
			Title:       rv.Title,
			Content:     rv.Content,
			ProductName: name,
		})
	}
	return out, nil
}

// Delete removes the review with reviewID.  With ownerOnly set the delete
// only matches a review written by ownerName.  It reports whether a row was
// removed; a missing review is not an error.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID, ownerName string, ownerOnly bool) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			res sql.Result
			err error
		)
		if ownerOnly {
			res, err = tx.ExecContext(ctx, r.db.Dialect.Rebind(`DELETE FROM Reviews
				WHERE review_id = ? AND user_id = (SELECT user_id FROM Users WHERE user_name = ?)`),
				reviewID, ownerName)
		} else {
			res, err = tx.ExecContext(ctx,
				r.db.Dialect.Rebind("DELETE FROM Reviews WHERE review_id = ?"), reviewID)
		}
		if err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}
