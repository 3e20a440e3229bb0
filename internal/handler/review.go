package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/middleware"
	"github.com/iliyamo/product-review-hub/internal/model"
	"github.com/iliyamo/product-review-hub/internal/queue"
	"github.com/iliyamo/product-review-hub/internal/repository"
)

// ReviewHandler serves the profile page and the review endpoints.  Every
// route is behind RequireSession.
type ReviewHandler struct {
	Reviews   *repository.ReviewRepo
	Products  *repository.ProductRepo
	Events    EventPublisher
	Log       *zap.Logger
	DBTimeout time.Duration

	// OwnerOnlyDelete limits DeleteReview to the session user's reviews.
	OwnerOnlyDelete bool
}

func NewReviewHandler(r *repository.ReviewRepo, p *repository.ProductRepo, ev EventPublisher, log *zap.Logger, timeout time.Duration, ownerOnly bool) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Products: p, Events: ev, Log: log, DBTimeout: timeout, OwnerOnlyDelete: ownerOnly}
}

type profilePage struct {
	page
	Reviews  []repository.ProfileReview
	Products []repository.ProductOption
}

type userReviewsPage struct {
	page
	Reviews []repository.UserReview
}

// Profile renders the user's reviews and the form for writing a new one.
func (h *ReviewHandler) Profile(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	data := profilePage{page: page{Title: "Profile", Username: username}}
	var err error
	if data.Products, err = h.Products.Options(ctx); err != nil {
		h.Log.Error("product options failed", zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred")
	}
	if data.Reviews, err = h.Reviews.ListForProfile(ctx, username); err != nil {
		h.Log.Error("profile reviews failed", zap.String("user", username), zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred")
	}
	return c.Render(http.StatusOK, "userprofile.html", data)
}

// CreateReview stores a review written by the session user.  A review id
// that is already taken is rejected with 400 and nothing is written.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	rv := model.Review{
		ID:        strings.TrimSpace(c.FormValue("review_id")),
		ProductID: strings.TrimSpace(c.FormValue("product_id")),
		Title:     c.FormValue("review_title"),
		Content:   c.FormValue("review_content"),
	}
	if rv.ID == "" || rv.ProductID == "" {
		return c.String(http.StatusBadRequest, "Review ID and product are required")
	}

	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	err := h.Reviews.Create(ctx, rv, username)
	if errors.Is(err, repository.ErrReviewExists) {
		return c.String(http.StatusBadRequest, "Review ID already exists")
	}
	if err != nil {
		h.Log.Error("create review failed", zap.String("review_id", rv.ID), zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred")
	}
	_ = h.Events.Publish(ctx, queue.ActivityEvent{
		Kind: queue.KindReviewCreated, Username: username, ReviewID: rv.ID, ProductID: rv.ProductID,
	})
	return c.Redirect(http.StatusFound, "/userprofile")
}

// DeleteReview removes a review and returns to the profile page.  Unknown
// ids are ignored.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	reviewID := c.Param("review_id")
	deleted, err := h.Reviews.Delete(ctx, reviewID, username, h.OwnerOnlyDelete)
	if err != nil {
		h.Log.Error("delete review failed", zap.String("review_id", reviewID), zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred during deletion")
	}
	if deleted {
		_ = h.Events.Publish(ctx, queue.ActivityEvent{Kind: queue.KindReviewDeleted, Username: username, ReviewID: reviewID})
	}
	return c.Redirect(http.StatusFound, "/userprofile")
}

// UserReviews renders every review of the session user whose product still
// exists.
func (h *ReviewHandler) UserReviews(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	username := middleware.Username(c)
	reviews, err := h.Reviews.ListByUserDetailed(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return c.String(http.StatusNotFound, "No such user found")
	}
	if err != nil {
		h.Log.Error("user reviews failed", zap.String("user", username), zap.Error(err))
		return c.String(http.StatusInternalServerError, "An error occurred")
	}
	return c.Render(http.StatusOK, "user_reviews.html", userReviewsPage{
		page:    page{Title: "My reviews", Username: username},
		Reviews: reviews,
	})
}
