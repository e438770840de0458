package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/holdings-api/internal/application/auth"
	"github.com/jhoicas/holdings-api/internal/application/catalog"
	"github.com/jhoicas/holdings-api/internal/application/holdings"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *catalog.ProductUseCase
	StockUC   *holdings.UseCase
	AuthUC    *auth.AuthUseCase
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/register-with-address", authHandler.RegisterWithAddress)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/login-with-address", authHandler.LoginWithAddress)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Stocks y holdings (protegido)
	stocks := protected.Group("/stocks")
	stockHandler := NewStockHandler(deps.StockUC)
	stocks.Post("/user/add", stockHandler.AddUserProduct)
	stocks.Get("/user/stock/:userId/:productId", stockHandler.GetUserProductStock)
	stocks.Get("/user/value/:userId/:productId", stockHandler.GetUserProductValue)
	stocks.Put("/user/update", stockHandler.UpdateUserProduct)
	stocks.Put("/user/increment", stockHandler.IncrementUserProduct)
	stocks.Put("/user/decrement", stockHandler.DecrementUserProduct)
	stocks.Put("/incrementStock", stockHandler.IncrementStock)
	stocks.Put("/decrementStock", stockHandler.DecrementStock)
	stocks.Put("/updateStock", stockHandler.UpdateStock)
	stocks.Delete("/cache", stockHandler.FlushCache)
}
