package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ali-plastic-pos/internal/cache"
	"ali-plastic-pos/internal/config"
	"ali-plastic-pos/internal/handler"
	"ali-plastic-pos/internal/jobs"
	"ali-plastic-pos/internal/middleware"
	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/internal/service"
	"ali-plastic-pos/internal/ws"
	"ali-plastic-pos/pkg/database"
	"ali-plastic-pos/pkg/jwt"
	applog "ali-plastic-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	log := applog.New(cfg.LogFormat)
	slog.SetDefault(log)

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.Database())
	if err != nil {
		log.Error("database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&model.Product{}, &model.Sale{}, &model.SaleItem{}, &model.StockMovement{},
		&model.Privilege{}, &model.Role{}, &model.User{},
	); err != nil {
		log.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Seed default privileges, roles, and the owner account
	if err := seedDefaults(ctx, db, cfg, log); err != nil {
		log.Error("seed", slog.Any("error", err))
		os.Exit(1)
	}

	// 4. Redis-backed report cache and job queue are optional
	var (
		reportCache *cache.Cache
		jobClient   *jobs.Client
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		reportCache = cache.New(rdb, cfg.CacheTTL)

		jobClient = jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer jobClient.Close()
	} else {
		log.Warn("REDIS_ADDR not set, report cache and background jobs disabled")
	}

	// 5. WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()
	defer wsHub.Stop()

	// 6. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	tx := repository.NewTransactor(db)
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	invService := service.NewInventoryService(productRepo, tx, reportCache, wsHub, log)
	saleService := service.NewSaleService(saleRepo, tx, reportCache, wsHub, jobClient, log, service.SaleOptions{
		AllowNegativeStock: cfg.AllowNegativeStock,
	})
	reportService := service.NewReportService(productRepo, saleRepo, reportCache, time.Now, log)
	dashService := service.NewDashboardService(productRepo, saleRepo, movementRepo, time.Now)
	authService := service.NewAuthService(userRepo, roleRepo, tokens)
	userService := service.NewUserService(userRepo, roleRepo)

	invHandler := handler.NewInventoryHandler(invService, log)
	saleHandler := handler.NewSaleHandler(saleService, log)
	reportHandler := handler.NewReportHandler(reportService, log)
	dashHandler := handler.NewDashboardHandler(dashService, log)
	authHandler := handler.NewAuthHandler(authService, log)
	userHandler := handler.NewUserHandler(userService, log)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo, log)

	// 7. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(helmet.New())

	// 8. Routes
	api := app.Group("/api/v1")

	// Public auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
	}), authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	// Unapproved users may still end their session
	auth.Post("/logout", middleware.RequireAuth(tokens, userRepo), authHandler.Logout)

	// Everything below needs a valid token and an approved account
	protected := api.Group("", middleware.RequireAuth(tokens, userRepo), middleware.RequireApproved())
	can := middleware.RequirePrivilege

	protected.Get("/products", can(model.PrivProductView), invHandler.GetProducts)
	protected.Get("/products/:id", can(model.PrivProductView), invHandler.GetProduct)
	protected.Post("/products", can(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", can(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Delete("/products/:id", can(model.PrivProductDelete), invHandler.DeleteProduct)
	protected.Post("/products/:id/restock", can(model.PrivProductRestock), invHandler.Restock)

	protected.Post("/checkout", can(model.PrivSaleCreate), saleHandler.Checkout)
	protected.Get("/sales", can(model.PrivSaleView), saleHandler.GetSales)
	protected.Get("/sales/:id", can(model.PrivSaleView), saleHandler.GetSale)

	protected.Get("/reports/pnl", can(model.PrivReportPnl), reportHandler.GetDailyPnl)
	protected.Get("/reports/restock-radar", can(model.PrivReportRadar), reportHandler.GetRestockRadar)

	protected.Get("/dashboard/stats", can(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", can(model.PrivDashboardView), dashHandler.GetStockMovement)

	protected.Get("/users", can(model.PrivUserView), userHandler.GetUsers)
	protected.Put("/users/:id/authorize", can(model.PrivUserApprove), userHandler.ToggleAuthorization)
	protected.Put("/users/:id/role", can(model.PrivUserUpdate), userHandler.UpdateUserRole)
	protected.Delete("/users/:id", can(model.PrivUserDelete), userHandler.DeleteUser)

	staff := middleware.RequireAnyPrivilege(model.PrivUserView, model.PrivUserApprove, model.PrivUserUpdate)
	protected.Get("/roles", staff, roleHandler.GetRoles)
	protected.Get("/privileges", staff, roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !wsHub.Join(c) {
			return
		}
		defer wsHub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("listen", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
	}
	log.Info("server exited")
}
