package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/product-review-hub/internal/handler"
)

// RegisterCatalog registers the public catalog pages.  The read-only GETs
// go through the response cache; the home page is not cached because it
// shows the signed-in user.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/home", h.Home)
	e.POST("/home", h.Search)
	e.GET("/compareproduct", h.ComparePage)
	e.POST("/add_review", h.AddReview)

	e.GET("/autocomplete", h.Autocomplete, cache)
	e.GET("/discounts_and_deals", h.Discounts, cache)
	e.GET("/under_fifty", h.UnderFifty, cache)
	e.GET("/category_products/:category_name", h.CategoryProducts, cache)
	e.GET("/get_product_details", h.ProductDetails, cache)
}
