package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/theazran/tagihYT/controller"
)

func Register(app *fiber.App, tc *controller.TransactionController, ac *controller.AuthController, adminRequired fiber.Handler) {
	// =========================
	// PUBLIC ROUTES
	// =========================
	app.Post("/create-transaction", tc.Create)
	app.Post("/notification", tc.Webhook)

	api := app.Group("/api")
	api.Get("/summary", tc.Summary)
	api.Get("/transaction/:orderId/check", tc.Check)
	api.Post("/admin/login", ac.Login)

	// =========================
	// ADMIN ROUTES
	// =========================
	api.Get("/transactions", adminRequired, tc.List)
	api.Delete("/transaction/:orderId", adminRequired, tc.Delete)
	api.Post("/transaction/:orderId/status", adminRequired, tc.OverrideStatus)
	api.Post("/send-wa", adminRequired, tc.SendWA)
}
