package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/auth"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/config"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/core"
	"github.com/Jonathan305g/Marketplace-Modelamiento/internal/store"
)

// NewServer builds the HTTP server: REST API under /api plus the chat
// WebSocket endpoint at /ws.
func NewServer(hub *core.Hub, authService *auth.Service, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, cfg, logger)))

	authHandlers := NewAuthHandlers(authService, logger)
	productHandlers := NewProductHandlers(st, logger)
	favoriteHandlers := NewFavoriteHandlers(st, logger)
	adminHandlers := NewAdminHandlers(st, logger)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandlers.Register)
		api.POST("/auth/login", authHandlers.Login)

		// Anyone can browse the catalog.
		api.GET("/products", productHandlers.ListProducts)
		api.GET("/products/:id", productHandlers.GetProduct)
	}

	authed := api.Group("")
	authed.Use(AuthMiddleware(authService, logger))
	{
		authed.POST("/products", productHandlers.CreateProduct)
		authed.PUT("/products/:id", productHandlers.UpdateProduct)
		authed.DELETE("/products/:id", productHandlers.DeleteProduct)

		authed.PUT("/products/:id/favorite", favoriteHandlers.AddFavorite)
		authed.DELETE("/products/:id/favorite", favoriteHandlers.RemoveFavorite)
		authed.GET("/favorites", favoriteHandlers.ListFavorites)
	}

	admin := api.Group("/admin")
	admin.Use(AuthMiddleware(authService, logger))
	{
		admin.GET("/users", RequireRole(store.RoleAdmin), adminHandlers.ListUsers)
		admin.PUT("/users/:id/role", RequireRole(store.RoleAdmin), adminHandlers.UpdateUserRole)
		admin.PUT("/users/:id/status", RequireRole(store.RoleAdmin, store.RoleModerator), adminHandlers.UpdateUserStatus)
		admin.PUT("/products/:id/state", RequireRole(store.RoleAdmin, store.RoleModerator), adminHandlers.UpdateProductState)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
