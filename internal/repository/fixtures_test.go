package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/product-review-hub/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

type productRow struct {
	id, name           string
	actual, discounted any
	pct, rating        any
	ratingCount        int
	about              string
}

func insertProducts(t *testing.T, db *database.DB, rows ...productRow) {
	t.Helper()
	for _, p := range rows {
		_, err := db.Exec(`INSERT INTO Products (product_id, product_name, actual_price, discounted_price,
				discount_percentage, rating, rating_count, about_product)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.id, p.name, p.actual, p.discounted, p.pct, p.rating, p.ratingCount, p.about)
		require.NoError(t, err, p.id)
	}
}

func insertUser(t *testing.T, db *database.DB, id, name string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO Users (user_id, user_name) VALUES (?, ?)", id, name)
	require.NoError(t, err)
}

func insertReview(t *testing.T, db *database.DB, reviewID, productID, userID string, sentiment any) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO Reviews (review_id, product_id, user_id, review_title, review_content, sentiment)
		VALUES (?, ?, ?, ?, ?, ?)`, reviewID, productID, userID, "title "+reviewID, "content "+reviewID, sentiment)
	require.NoError(t, err)
}

func insertCategory(t *testing.T, db *database.DB, id int, name string, productIDs ...string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO Categories (category_id, category_name) VALUES (?, ?)", id, name)
	require.NoError(t, err)
	for _, pid := range productIDs {
		_, err := db.Exec("INSERT INTO CategoryAssignments (product_id, category_id) VALUES (?, ?)", pid, id)
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, db *database.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
