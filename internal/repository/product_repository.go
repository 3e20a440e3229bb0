// Package repository contains data access logic separated from HTTP handlers.
// This file holds the read-only catalog queries that feed the home page,
// the comparison page and the search box.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/model"
)

// UnderFiftyMaxPrice is the inclusive discounted-price ceiling for the
// under-fifty list, in the currency the prices are stored in.
const UnderFiftyMaxPrice = 50

// AutocompleteLimit caps the number of suggested product names.
const AutocompleteLimit = 5

// ProductRepo runs catalog queries over Products and Reviews.
type ProductRepo struct{ db *database.DB }

func NewProductRepo(db *database.DB) *ProductRepo { return &ProductRepo{db: db} }

// TrendingDeal is one row of the trending list: a product with its review
// count.
type TrendingDeal struct {
	ProductID    string  `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Rating       float64 `json:"rating"`
	TotalReviews int64   `json:"total_reviews"`
}

// Discount is the best-discount row for one product name.  Prices and the
// percentage are whole numbers for display; DiscountLabel reads like "64%".
type Discount struct {
	ProductID          string `json:"product_id"`
	ProductName        string `json:"product_name"`
	Price              int64  `json:"price"`
	DiscountedPrice    int64  `json:"discounted_price"`
	DiscountPercentage int64  `json:"discount_percentage"`
	DiscountLabel      string `json:"total_discount"`
}

// BudgetDeal pairs a product priced at or under fifty with the sentiment of
// one of its reviews.  A product appears once per distinct sentiment.
type BudgetDeal struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Sentiment   *string `json:"sentiment"`
}

// ProductOption is the id/name pair used by the review form's product
// selector.
type ProductOption struct {
	ID   string `json:"product_id"`
	Name string `json:"product_name"`
}

// Trending lists every product ordered by rating, then by how many reviews
// it has.
func (r *ProductRepo) Trending(ctx context.Context) ([]TrendingDeal, error) {
	const q = `SELECT p.product_id, p.product_name, COALESCE(p.rating, 0), COUNT(r.review_id)
		FROM Products p
		LEFT JOIN Reviews r ON p.product_id = r.product_id
		GROUP BY p.product_id, p.product_name, p.rating
		ORDER BY COALESCE(p.rating, 0) DESC, COUNT(r.review_id) DESC, p.product_id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("trending deals: %w", err)
	}
	defer rows.Close()

	out := []TrendingDeal{}
	for rows.Next() {
		var d TrendingDeal
		if err := rows.Scan(&d.ProductID, &d.ProductName, &d.Rating, &d.TotalReviews); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Discounts keeps, for every product name, the discounted row with the
// highest discount_percentage and orders the result by that percentage.
// Which row wins a tie within one name is left to the database.
func (r *ProductRepo) Discounts(ctx context.Context) ([]Discount, error) {
	const q = `SELECT p.product_id, p.product_name, p.actual_price, p.discounted_price, p.discount_percentage
		FROM (
			SELECT product_id, product_name, actual_price, discounted_price, discount_percentage,
				ROW_NUMBER() OVER (PARTITION BY product_name ORDER BY discount_percentage DESC) AS rn
			FROM Products
			WHERE discounted_price IS NOT NULL AND actual_price > discounted_price
		) p
		WHERE p.rn = 1
		ORDER BY p.discount_percentage DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("discounts: %w", err)
	}
	defer rows.Close()

	out := []Discount{}
	for rows.Next() {
		var (
			d                        Discount
			actual, discounted, pct decimal.NullDecimal
		)
		if err := rows.Scan(&d.ProductID, &d.ProductName, &actual, &discounted, &pct); err != nil {
			return nil, err
		}
		d.Price = roundInt(actual)
		d.DiscountedPrice = roundInt(discounted)
		d.DiscountPercentage = roundInt(pct)
		d.DiscountLabel = fmt.Sprintf("%d%%", d.DiscountPercentage)
		out = append(out, d)
	}
	return out, rows.Err()
}

// UnderFifty lists distinct (product, review sentiment) pairs for products
// whose discounted price is at most UnderFiftyMaxPrice, cheapest first.
// Products without reviews are not listed.
func (r *ProductRepo) UnderFifty(ctx context.Context) ([]BudgetDeal, error) {
	// discounted_price is selected because DISTINCT requires ORDER BY
	// columns in the select list on MySQL and Postgres.
	q := r.db.Dialect.Rebind(`SELECT DISTINCT p.product_id, p.product_name, r.sentiment, p.discounted_price
		FROM Products p
		JOIN Reviews r ON p.product_id = r.product_id
		WHERE p.discounted_price <= ?
		ORDER BY p.discounted_price ASC, p.product_id ASC`)
	rows, err := r.db.QueryContext(ctx, q, UnderFiftyMaxPrice)
	if err != nil {
		return nil, fmt.Errorf("under fifty: %w", err)
	}
	defer rows.Close()

	out := []BudgetDeal{}
	for rows.Next() {
		var (
			d         BudgetDeal
			sentiment sql.NullString
			price     decimal.NullDecimal
		)
		if err := rows.Scan(&d.ProductID, &d.ProductName, &sentiment, &price); err != nil {
			return nil, err
		}
		if sentiment.Valid {
			s := sentiment.String
			d.Sentiment = &s
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Autocomplete returns up to AutocompleteLimit product names containing
// term, ignoring case.  LIKE wildcards in term match literally.
func (r *ProductRepo) Autocomplete(ctx context.Context, term string) ([]string, error) {
	q := r.db.Dialect.Rebind(`SELECT product_name FROM Products
		WHERE LOWER(product_name) LIKE ? ESCAPE '!'
		LIMIT ?`)
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	rows, err := r.db.QueryContext(ctx, q, pattern, AutocompleteLimit)
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// GetByName returns the first product whose name matches exactly, or
// ErrProductNotFound.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	q := r.db.Dialect.Rebind(`SELECT product_id, product_name, actual_price, discounted_price,
			discount_percentage, COALESCE(rating, 0), rating_count, COALESCE(about_product, '')
		FROM Products
		WHERE product_name = ?
		LIMIT 1`)
	var p model.Product
	err := r.db.QueryRowContext(ctx, q, name).Scan(
		&p.ID, &p.Name, &p.ActualPrice, &p.DiscountedPrice,
		&p.DiscountPercentage, &p.Rating, &p.RatingCount, &p.About,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Options lists every product id and name for the review form.
func (r *ProductRepo) Options(ctx context.Context) ([]ProductOption, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT product_id, product_name FROM Products ORDER BY product_name")
	if err != nil {
		return nil, fmt.Errorf("product options: %w", err)
	}
	defer rows.Close()

	out := []ProductOption{}
	for rows.Next() {
		var o ProductOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// NameByID returns a product's name.  The boolean is false when no product
// has that id.
func (r *ProductRepo) NameByID(ctx context.Context, id string) (string, bool, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT product_name FROM Products WHERE product_id = ?"), id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return name, true, nil
}

// TruncInt drops the fractional part of a decimal (23.9 -> 23).  NULL maps
// to 0.
func TruncInt(d decimal.NullDecimal) int64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Truncate(0).IntPart()
}

// roundInt rounds half away from zero, the way MySQL casts DECIMAL to an
// integer.
func roundInt(d decimal.NullDecimal) int64 {
	if !d.Valid {
		return 0
	}
	return d.Decimal.Round(0).IntPart()
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
