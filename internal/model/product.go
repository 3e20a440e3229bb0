package model

import "github.com/shopspring/decimal"

// Product mirrors a row of the `Products` table.  Products are loaded from
// the sales dataset ahead of time; the application never writes them.
// Monetary and percentage columns are decimals so that truncation and
// rounding for display are exact.
//
// Fields:
//  ID                 – Products.product_id.
//  Name               – Products.product_name (not unique).
//  ActualPrice        – list price, currency as stored.
//  DiscountedPrice    – selling price; NULL in the dataset becomes Valid=false.
//  DiscountPercentage – discount relative to ActualPrice.
//  Rating             – average rating (0-5).
//  RatingCount        – number of ratings behind Rating.
//  About              – free-text description.
type Product struct {
    ID                 string
    Name               string
    ActualPrice        decimal.NullDecimal
    DiscountedPrice    decimal.NullDecimal
    DiscountPercentage decimal.NullDecimal
    Rating             float64
    RatingCount        int64
    About              string
}

// BestSellerThreshold is the rating_count from which a product is flagged
// as a best seller in category listings.
const BestSellerThreshold = 5000

// IsBestSeller reports whether the product has enough ratings to be flagged.
func IsBestSeller(ratingCount int64) bool { return ratingCount >= BestSellerThreshold }
