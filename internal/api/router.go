package api

import (
	"mymoney/internal/api/handlers"
	"mymoney/pkg/auth"
	"mymoney/pkg/config"
	"mymoney/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func SetupRouter(
	cfg *config.ServerConfig,
	authHandler *handlers.AuthHandler,
	txHandler *handlers.TransactionHandler,
	extractHandler *handlers.ExtractHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	app.Get("/swagger/*", swagger.HandlerDefault)

	authMw := middleware.AuthMiddleware(jwtManager, appLogger)

	// Auth routes
	authGroup := app.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/verify-email", authMw, authHandler.VerifyEmail)
	authGroup.Post("/reset-password", authMw, authHandler.ResetPassword)

	// Transaction routes
	tx := app.Group("/transaction", authMw)
	tx.Get("", txHandler.List)
	tx.Post("", txHandler.Create)
	tx.Get("/analytics", txHandler.Analytics)
	tx.Post("/extract", extractHandler.Extract)
	tx.Get("/:id", txHandler.Get)
	tx.Put("/:id", txHandler.Update)
	tx.Delete("/:id", txHandler.Delete)

	return app
}
