package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/model"
)

// CategoryTopLimit is how many products the category listing shows.
const CategoryTopLimit = 5

// CategoryRepo reads Categories and their product assignments.
type CategoryRepo struct{ db *database.DB }

func NewCategoryRepo(db *database.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// CategoryProduct is one row of a category listing.
type CategoryProduct struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Price        int64   `json:"price"`
	Rating       float64 `json:"rating"`
	RatingCount  int64   `json:"rating_count"`
	IsBestSeller bool    `json:"is_best_seller"`
}

// List returns every category ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT category_id, category_name FROM Categories ORDER BY category_name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TopProducts returns at most limit products assigned to the named category,
// best rated first with rating_count breaking ties.  An unknown category
// yields an empty list.
func (r *CategoryRepo) TopProducts(ctx context.Context, categoryName string, limit int) ([]CategoryProduct, error) {
	if limit <= 0 {
		limit = CategoryTopLimit
	}
	q := r.db.Dialect.Rebind(`SELECT p.product_id, p.product_name, p.actual_price,
			COALESCE(p.rating, 0), p.rating_count
		FROM Products p
		JOIN CategoryAssignments ca ON p.product_id = ca.product_id
		JOIN Categories c ON ca.category_id = c.category_id
		WHERE c.category_name = ?
		ORDER BY COALESCE(p.rating, 0) DESC, p.rating_count DESC
		LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, q, categoryName, limit)
	if err != nil {
		return nil, fmt.Errorf("category %q products: %w", categoryName, err)
	}
	defer rows.Close()

	out := []CategoryProduct{}
	for rows.Next() {
		var (
			p     CategoryProduct
			price decimal.NullDecimal
		)
		if err := rows.Scan(&p.ProductID, &p.ProductName, &price, &p.Rating, &p.RatingCount); err != nil {
			return nil, err
		}
		p.Price = roundInt(price)
		p.IsBestSeller = model.IsBestSeller(p.RatingCount)
		out = append(out, p)
	}
	return out, rows.Err()
}
