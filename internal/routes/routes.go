package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/address"
	"github.com/example/shopingo/internal/cart"
	"github.com/example/shopingo/internal/catalog"
	"github.com/example/shopingo/internal/checkout"
	"github.com/example/shopingo/internal/config"
	"github.com/example/shopingo/internal/coupons"
	"github.com/example/shopingo/internal/handlers"
	"github.com/example/shopingo/internal/middleware"
	"github.com/example/shopingo/internal/pricing"
	"github.com/example/shopingo/internal/repository"
)

// Register wires the repositories, domain services and handlers onto
// the fiber app.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	carts := repository.NewCarts(db)
	wishlists := repository.NewWishlists(db)
	products := repository.NewProducts(db)
	couponRepo := repository.NewCoupons(db)
	orders := repository.NewOrders(db)
	shippingMethods := repository.NewShippingMethods(db)
	sessions := repository.NewSessions(db)
	addresses := repository.NewAddresses(db)
	catalogRepo := repository.NewCatalog(db)

	store := cart.NewStore(carts, wishlists, products)
	validator := coupons.NewValidator(couponRepo)
	engine := pricing.NewEngine(cfg.DefaultShipping)
	book := address.NewBook(addresses)
	lifecycle := checkout.NewLifecycle(store, validator, engine, book, orders, shippingMethods, sessions)
	browser := catalog.NewEngine(catalogRepo)

	authHandler := handlers.NewAuthHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(store, lifecycle)
	checkoutHandler := handlers.NewCheckoutHandler(lifecycle, book)
	catalogHandler := handlers.NewCatalogHandler(browser, catalogRepo)
	productHandler := handlers.NewProductHandler(products)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	shop := api.Group("/shop")
	shop.Get("/categories/:slug", catalogHandler.Category)
	shop.Get("/subcategories/:slug", catalogHandler.SubCategory)
	shop.Get("/tags/:slug", catalogHandler.Tag)
	shop.Get("/products/:slug", productHandler.Detail)

	api.Get("/orders/track/:tracking_id", checkoutHandler.Track)

	authed := api.Group("", middleware.AuthMiddleware(cfg))

	authed.Post("/products/action", cartHandler.ProductAction)

	authed.Get("/cart", cartHandler.View)
	authed.Patch("/cart/quantity", cartHandler.UpdateQuantity)
	authed.Delete("/cart/items/:id", cartHandler.Remove)
	authed.Post("/cart/items/:id/wishlist", cartHandler.MoveToWishlist)
	authed.Post("/cart/shipping-info", checkoutHandler.StageShippingDraft)

	authed.Get("/wishlist", cartHandler.Wishlist)

	authed.Post("/coupons/apply", checkoutHandler.ApplyCoupon)
	authed.Delete("/coupons", checkoutHandler.RemoveCoupon)

	co := authed.Group("/checkout")
	co.Get("/details", checkoutHandler.Details)
	co.Post("/details", checkoutHandler.SubmitDetails)
	co.Get("/shipping", checkoutHandler.Shipping)
	co.Post("/shipping", checkoutHandler.SelectShipping)
	co.Post("/payment", checkoutHandler.RecordPayment)
	co.Get("/review", checkoutHandler.Review)
	co.Post("/complete", checkoutHandler.Complete)
	co.Delete("/items/:id", checkoutHandler.RemoveItem)
}
