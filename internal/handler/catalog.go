package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/product-review-hub/internal/middleware"
	"github.com/iliyamo/product-review-hub/internal/model"
	"github.com/iliyamo/product-review-hub/internal/repository"
)

// CatalogHandler serves the read-only product pages and JSON endpoints.
type CatalogHandler struct {
	Products   *repository.ProductRepo
	Categories *repository.CategoryRepo
	Log        *zap.Logger
	DBTimeout  time.Duration
}

func NewCatalogHandler(p *repository.ProductRepo, cat *repository.CategoryRepo, log *zap.Logger, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{Products: p, Categories: cat, Log: log, DBTimeout: timeout}
}

type homePage struct {
	page
	Categories []model.Category
	Trending   []repository.TrendingDeal
	Discounts  []repository.Discount
	UnderFifty []repository.BudgetDeal
}

type comparePage struct {
	page
	Query string
}

type categoryFragment struct {
	CategoryName string
	Products     []repository.CategoryProduct
}

// productDetail is the JSON shape of /get_product_details.  Price and
// discount are truncated to whole numbers and null when unknown.
type productDetail struct {
	ProductID          string  `json:"product_id"`
	ProductName        string  `json:"product_name"`
	DiscountedPrice    *int64  `json:"discounted_price"`
	DiscountPercentage *int64  `json:"discount_percentage"`
	Rating             float64 `json:"rating"`
	About              string  `json:"about_product"`
}

func (h *CatalogHandler) serverError(c echo.Context, msg string, err error) error {
	h.Log.Error(msg, zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}

// Home renders trending deals, discounts, the under-fifty list and the
// category selector.  The four queries run concurrently.
func (h *CatalogHandler) Home(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	data := homePage{page: page{Title: "Home", Username: middleware.Username(c)}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.Trending, err = h.Products.Trending(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Discounts, err = h.Products.Discounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.UnderFifty, err = h.Products.UnderFifty(gctx)
		return err
	})
	g.Go(func() (err error) {
		data.Categories, err = h.Categories.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return h.serverError(c, "home page queries failed", err)
	}
	return c.Render(http.StatusOK, "home.html", data)
}

// Search sends the home page's search term to the comparison page.
func (h *CatalogHandler) Search(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/compareproduct?query="+url.QueryEscape(c.FormValue("search")))
}

// Autocomplete answers a flat JSON list of up to five product names.
func (h *CatalogHandler) Autocomplete(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	names, err := h.Products.Autocomplete(ctx, c.QueryParam("term"))
	if err != nil {
		return h.serverError(c, "autocomplete failed", err)
	}
	return c.JSON(http.StatusOK, names)
}

// Discounts returns the best discount per product name as JSON.
func (h *CatalogHandler) Discounts(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	rows, err := h.Products.Discounts(ctx)
	if err != nil {
		return h.serverError(c, "discounts failed", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// UnderFifty returns the under-fifty deals as JSON.
func (h *CatalogHandler) UnderFifty(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	rows, err := h.Products.UnderFifty(ctx)
	if err != nil {
		return h.serverError(c, "under fifty failed", err)
	}
	return c.JSON(http.StatusOK, rows)
}

// CategoryProducts renders the top products of a category as an HTML
// fragment for the home page.
func (h *CatalogHandler) CategoryProducts(c echo.Context) error {
	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	name := c.Param("category_name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	products, err := h.Categories.TopProducts(ctx, name, repository.CategoryTopLimit)
	if err != nil {
		return h.serverError(c, "category products failed", err)
	}
	return c.Render(http.StatusOK, "category_products.html", categoryFragment{CategoryName: name, Products: products})
}

// ProductDetails looks a product up by exact name.  A missing name matches
// nothing.
func (h *CatalogHandler) ProductDetails(c echo.Context) error {
	name := c.QueryParam("product_name")
	if name == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}

	ctx, cancel := dbContext(c, h.DBTimeout)
	defer cancel()

	p, err := h.Products.GetByName(ctx, name)
	if errors.Is(err, repository.ErrProductNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		return h.serverError(c, "product details failed", err)
	}

	out := productDetail{ProductID: p.ID, ProductName: p.Name, Rating: p.Rating, About: p.About}
	if p.DiscountedPrice.Valid {
		v := repository.TruncInt(p.DiscountedPrice)
		out.DiscountedPrice = &v
	}
	if p.DiscountPercentage.Valid {
		v := repository.TruncInt(p.DiscountPercentage)
		out.DiscountPercentage = &v
	}
	return c.JSON(http.StatusOK, out)
}

// ComparePage renders the comparison page.  The optional query prefills
// the first product.
func (h *CatalogHandler) ComparePage(c echo.Context) error {
	return c.Render(http.StatusOK, "compare_product.html", comparePage{
		page:  page{Title: "Compare products", Username: middleware.Username(c)},
		Query: c.QueryParam("query"),
	})
}

// AddReview is the legacy review form target; it only returns home.
func (h *CatalogHandler) AddReview(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/home")
}
