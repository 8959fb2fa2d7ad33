package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/controller"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/middleware"
)

func RegisterPaymentRoutes(app *fiber.App, pc *controller.PaymentController, jwtSecret string) {
	auth := middleware.AuthRequired(jwtSecret)

	api := app.Group("/api")
	p := api.Group("/payments")

	// =========================
	// GATEWAY CALLBACK (signed, no auth)
	// =========================
	p.Post("/notification", pc.Notification)

	// =========================
	// PUBLIC
	// =========================
	p.Get("/methods", pc.Methods)

	// =========================
	// ADMIN ROUTES
	// =========================
	p.Get("/all", auth, middleware.RoleRequired("admin"), pc.ListAll)
	p.Get("/stats", auth, middleware.RoleRequired("admin"), pc.Stats)

	// =========================
	// USER ROUTES
	// =========================
	p.Get("/", auth, pc.List)
	p.Post("/", auth, pc.Create)
	p.Get("/order/:orderId", auth, pc.GetByOrder)
	p.Post("/:id/sync", auth, pc.Sync)
	p.Post("/:id/cancel", auth, pc.Cancel)
	p.Post("/:id/refund", auth, middleware.RoleRequired("admin"), pc.Refund)
	p.Get("/:id", auth, pc.Get)
}
