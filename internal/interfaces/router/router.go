package router

import (
	"net/http"

	authsvc "tabiconst-backend/internal/application/auth"
	"tabiconst-backend/internal/application/dashboard"
	favsvc "tabiconst-backend/internal/application/favorites"
	healthsvc "tabiconst-backend/internal/application/health"
	listsvc "tabiconst-backend/internal/application/listings"
	"tabiconst-backend/internal/application/uploads"
	usersvc "tabiconst-backend/internal/application/user"
	"tabiconst-backend/internal/config"
	"tabiconst-backend/internal/infrastructure/database"
	"tabiconst-backend/internal/infrastructure/repositories"
	authhandler "tabiconst-backend/internal/interfaces/handlers/auth"
	favhandler "tabiconst-backend/internal/interfaces/handlers/favorites"
	healthhandler "tabiconst-backend/internal/interfaces/handlers/health"
	listhandler "tabiconst-backend/internal/interfaces/handlers/listings"
	userhandler "tabiconst-backend/internal/interfaces/handlers/user"
	"tabiconst-backend/internal/middleware"
	"tabiconst-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// bodyLimit fits a full image batch plus form fields.
const bodyLimit = (uploads.MaxFiles*uploads.MaxFileSize + 1<<20)

// CreateApp opens Postgres and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return New(cfg, db, rdb), db, rdb, nil
}

// New builds the app over existing connections.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               bodyLimit,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
		CookieDomain:      cfg.CookieDomain,
	}
	finder := &authsvc.GormUserFinder{DB: db}
	resolver := &authsvc.Resolver{Users: finder, JWTSecret: cfg.JWTSecret}

	app.Use(middleware.Tracing())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.SessionWithClient(rdb))
	app.Use(middleware.Authenticate(resolver))

	app.Static("/uploads", cfg.UploadDir)

	var pinger healthsvc.DBPinger
	if sqlDB, err := db.DB(); err == nil {
		pinger = sqlDB
	}
	hh := &healthhandler.Handlers{
		Collector: &healthsvc.Collector{Rdb: rdb, DB: pinger, FrontendURL: cfg.FrontendURL},
		Service:   "tabiconst-api",
	}
	app.Get("/health/json", hh.JSON)
	api := app.Group("/api/v1")
	hg := api.Group("/health")
	hg.Get("/json", hh.JSON)
	hg.Get("/errors", middleware.AuthorizePermission(constants.ViewDashboard), hh.Errors)
	hg.Post("/reset", middleware.AuthorizePermission(constants.ViewDashboard), hh.Reset)

	stats := &dashboard.Service{Source: &dashboard.GormSource{DB: db}, Rdb: rdb, TTL: cfg.StatsCacheTTL}
	users := &usersvc.Service{DB: db, Rdb: rdb}
	ah := &authhandler.Handlers{
		UserFinder: finder,
		Users:      users,
		Rdb:        rdb,
		Config:     sessionCfg,
		JWTSecret:  cfg.JWTSecret,
		JWTExpiry:  cfg.JWTExpiry,
		Dashboard:  stats,
	}
	uh := &userhandler.Handlers{Service: users, Dashboard: stats}
	ag := api.Group("/auth")
	ag.Post("/register", ah.Register)
	ag.Post("/login", ah.Login)
	ag.Get("/me", ah.Me)
	ag.Get("/profile", ah.Me)
	ag.Delete("/logout", ah.Logout)
	ag.Put("/profile", middleware.RequireAuth(), uh.UpdateProfile)
	ag.Get("/users", middleware.AuthorizePermission(constants.ManageUsers), uh.ListUsers)
	ag.Patch("/users/:id/status", middleware.AuthorizePermission(constants.ManageUsers), uh.UpdateUserStatus)
	ag.Delete("/users/:id", middleware.AuthorizePermission(constants.DeleteUsers), uh.DeleteUser)

	lh := &listhandler.Handlers{
		Service:   listsvc.NewService(repositories.NewListingRepository(db)),
		Uploads:   &uploads.Service{Store: &uploads.DiskStore{Dir: cfg.UploadDir}},
		Dashboard: stats,
	}
	lg := api.Group("/listings")
	lg.Get("/", lh.List)
	lg.Get("/stats", middleware.AuthorizePermission(constants.ViewDashboard), lh.Stats)
	lg.Get("/admin", middleware.AuthorizePermission(constants.ViewAdminListings), lh.Admin)
	lg.Get("/my", middleware.RequireAuth(), lh.Mine)
	lg.Get("/:id", lh.Get)
	lg.Get("/:id/events", middleware.AuthorizePermission(constants.ViewListingEvents), lh.Events)
	lg.Post("/", middleware.RequireAuth(), lh.Create)
	lg.Put("/:id", middleware.RequireAuth(), lh.Update)
	lg.Patch("/:id/status", middleware.AuthorizePermission(constants.ChangeListingStatus), lh.ChangeStatus)
	lg.Delete("/:id", middleware.RequireAuth(), lh.Delete)

	fh := &favhandler.Handlers{Service: &favsvc.Service{DB: db}}
	fg := api.Group("/favorites", middleware.RequireAuth())
	fg.Get("/", fh.List)
	fg.Post("/", fh.Add)
	fg.Delete("/:id", fh.Remove)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
