package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/product-review-hub/internal/handler"
)

// RegisterAccount registers the routes that need a logged in user.
// requireSession redirects everyone else to the login page.  purge runs on
// the writes that add or remove reviews.
func RegisterAccount(e *echo.Echo, r *handler.ReviewHandler, a *handler.AccountHandler, requireSession, purge echo.MiddlewareFunc) {
	e.GET("/userprofile", r.Profile, requireSession)
	e.POST("/userprofile", r.CreateReview, requireSession, purge)
	e.POST("/delete_review/:review_id", r.DeleteReview, requireSession, purge)
	e.GET("/user_reviews", r.UserReviews, requireSession)

	e.POST("/update_profile", a.UpdateProfile, requireSession)
	e.POST("/delete_account", a.DeleteAccount, requireSession, purge)
}
