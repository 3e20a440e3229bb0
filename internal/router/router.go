// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/product-review-hub/internal/config"
	"github.com/iliyamo/product-review-hub/internal/database"
	"github.com/iliyamo/product-review-hub/internal/handler"
	"github.com/iliyamo/product-review-hub/internal/middleware"
	"github.com/iliyamo/product-review-hub/internal/repository"
	"github.com/iliyamo/product-review-hub/web"
)

// Deps is everything the routes need.  Redis may be nil; caching and rate
// limiting are then skipped.
type Deps struct {
	Cfg      config.Config
	DB       *database.DB
	Redis    *redis.Client
	Sessions handler.Sessions
	Events   handler.EventPublisher
	Log      *zap.Logger
}

// New builds the echo instance with every route registered.
func New(d Deps) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer, err := handler.NewRenderer(web.Templates())
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	e.Use(echomw.Recover())
	e.Use(middleware.LoadSession(d.Sessions))
	e.Use(middleware.RequestLogger(d.Log))

	users := repository.NewUserRepo(d.DB)
	products := repository.NewProductRepo(d.DB)
	categories := repository.NewCategoryRepo(d.DB)
	reviews := repository.NewReviewRepo(d.DB)
	timeout := d.Cfg.DBTimeout

	RegisterRoutes(e, d.DB)
	RegisterAuth(e,
		handler.NewAuthHandler(users, d.Sessions, d.Events, d.Log, timeout),
		middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis, d.Log))
	RegisterCatalog(e,
		handler.NewCatalogHandler(products, categories, d.Log, timeout),
		middleware.NewRedisCache(d.Cfg.Cache, d.Redis, d.Log))
	RegisterAccount(e,
		handler.NewReviewHandler(reviews, products, d.Events, d.Log, timeout, d.Cfg.ReviewDeleteOwnerOnly),
		handler.NewAccountHandler(users, d.Sessions, d.Events, d.Log, timeout),
		middleware.RequireSession(d.Sessions, d.Log),
		middleware.PurgeCache(d.Cfg.Cache, d.Redis, d.Log))
	return e, nil
}

// RegisterRoutes registers the health check and the embedded static
// assets.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(web.Static())))))
}

// RegisterAuth registers the login page and the credential endpoints.  The
// two POSTs are rate limited since a (username, user_id) pair is the only
// credential.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET("/", a.LoginPage)
	e.POST("/", a.Login, limiter)
	e.POST("/register_user", a.Register, limiter)
	e.GET("/logout", a.Logout)
}
