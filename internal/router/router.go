package router

import (
	"log/slog"

	"github.com/Facumerino03/Finquik-back/internal/config"
	"github.com/Facumerino03/Finquik-back/internal/handler"
	"github.com/Facumerino03/Finquik-back/internal/middleware"
	"github.com/Facumerino03/Finquik-back/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires services, handlers and middleware into a Gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *slog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	users := service.NewUserService(db)
	accounts := service.NewAccountService(db)
	categories := service.NewCategoryService(db)
	transactions := service.NewTransactionService(db)

	api := r.Group("/api")

	// registration and login need no credentials
	authHandler := handler.NewAuthHandler(users, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	userHandler := handler.NewUserHandler(users)
	protected.GET("/users/me", userHandler.GetMe)

	accountHandler := handler.NewAccountHandler(accounts)
	protected.POST("/accounts", accountHandler.Create)
	protected.GET("/accounts", accountHandler.List)
	protected.GET("/accounts/:id", accountHandler.GetByID)
	protected.PUT("/accounts/:id", accountHandler.Update)
	protected.DELETE("/accounts/:id", accountHandler.Delete)

	categoryHandler := handler.NewCategoryHandler(categories)
	protected.POST("/categories", categoryHandler.Create)
	protected.GET("/categories", categoryHandler.List)
	protected.GET("/categories/:id", categoryHandler.GetByID)
	protected.PUT("/categories/:id", categoryHandler.Update)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	transactionHandler := handler.NewTransactionHandler(transactions, cfg.App.PageSize)
	protected.POST("/transactions", transactionHandler.Create)
	protected.GET("/transactions", transactionHandler.List)
	protected.GET("/transactions/summary", transactionHandler.Summary)
	protected.GET("/transactions/:id", transactionHandler.GetByID)
	protected.PUT("/transactions/:id", transactionHandler.Update)
	protected.DELETE("/transactions/:id", transactionHandler.Delete)

	exportHandler := handler.NewExportHandler(transactions)
	protected.GET("/transactions/export", exportHandler.Export)

	return r
}
