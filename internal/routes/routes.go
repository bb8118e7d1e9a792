package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/velora/internal/config"
	"github.com/example/velora/internal/handlers"
	"github.com/example/velora/internal/middleware"
	"github.com/example/velora/internal/services"
	"github.com/example/velora/internal/storage"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)

	checkoutStore := storage.NewCheckoutStore(db)
	orderStore := storage.NewOrderStore(db)
	addressStore := storage.NewAddressStore(db)
	cartItemStore := storage.NewCartItemStore(db)
	productStore := storage.NewProductStore(db)
	paymentStore := storage.NewPaymentStore(db)
	categoryStore := storage.NewCategoryStore(db)

	pricing := services.RatePricing{
		TaxRateBps:       cfg.TaxRateBps,
		ShippingFee:      cfg.ShippingFee,
		FreeShippingOver: cfg.FreeShippingOver,
	}

	assembler := services.NewOrderAssembler(orderStore, cartItemStore, productStore, addressStore,
		pricing, telegramService, cfg.OrderNumberPrefix, cfg.Currency)
	checkoutService := services.NewCheckoutService(checkoutStore, addressStore, cartItemStore, assembler)
	orderService := services.NewOrderService(orderStore, paymentStore, telegramService, services.DefaultStatusPolicy())
	categoryService := services.NewCategoryService(categoryStore)

	authHandler := handlers.NewAuthHandler(db, cfg)
	categoryHandler := handlers.NewCategoryHandler(db, categoryService)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	addressHandler := handlers.NewAddressHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Public catalog routes
	categories := api.Group("/categories")
	categories.Get("/", categoryHandler.ListCategories)
	categories.Get("/tree", categoryHandler.GetCategoryTree)
	categories.Get("/:id", categoryHandler.GetCategory)
	categories.Get("/:id/breadcrumbs", categoryHandler.GetBreadcrumbs)
	categories.Get("/:id/descendants", categoryHandler.GetDescendants)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/:id", productHandler.GetProduct)

	// Owner routes: authenticated users or guest sessions
	owned := api.Group("", middleware.ResolveIdentity(cfg))

	cart := owned.Group("/cart")
	cart.Get("/", cartHandler.ListCartItems)
	cart.Post("/", cartHandler.AddCartItem)
	cart.Put("/:id", cartHandler.UpdateCartItem)
	cart.Delete("/:id", cartHandler.RemoveCartItem)

	addresses := owned.Group("/addresses")
	addresses.Get("/", addressHandler.ListAddresses)
	addresses.Post("/", addressHandler.CreateAddress)
	addresses.Put("/:id", addressHandler.UpdateAddress)
	addresses.Delete("/:id", addressHandler.DeleteAddress)

	checkouts := owned.Group("/checkouts")
	checkouts.Post("/", checkoutHandler.CreateCheckout)
	checkouts.Get("/:id", checkoutHandler.GetCheckout)
	checkouts.Put("/:id", checkoutHandler.ValidateCheckout)
	checkouts.Post("/:id/complete", checkoutHandler.CompleteCheckout)
	checkouts.Post("/:id/abandon", checkoutHandler.AbandonCheckout)

	orders := owned.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Post("/:id/cancel", orderHandler.CancelOrder)
	orders.Post("/:id/refund", orderHandler.RefundOrder)

	// Admin routes
	admin := api.Group("/admin", middleware.RequireAuth(cfg), middleware.RequireAdmin())
	admin.Post("/categories", categoryHandler.CreateCategory)
	admin.Put("/categories/:id", categoryHandler.UpdateCategory)
	admin.Put("/categories/:id/parent", categoryHandler.ReparentCategory)
	admin.Delete("/categories/:id", categoryHandler.DeleteCategory)
	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
	admin.Post("/orders/:id/advance", orderHandler.AdvanceOrder)
	admin.Post("/orders/:id/payment/confirm", orderHandler.ConfirmPayment)
}
