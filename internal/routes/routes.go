package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/biashadrive/biashadrive-backend/internal/handlers"
	"github.com/biashadrive/biashadrive-backend/internal/middleware"
	"github.com/biashadrive/biashadrive-backend/internal/services"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// Services groups the wired services the routes need
type Services struct {
	OTP        *services.OTPService
	Auth       *services.AuthService
	Mpesa      *services.MpesaService
	Templates  *services.TemplateService
	Reports    *services.ReportService
	Dispatcher *services.Dispatcher
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, svc Services) {
	authHandler := handlers.NewAuthHandler(store, svc.OTP, svc.Auth)
	diagnosticHandler := handlers.NewDiagnosticHandler(store)
	expertHandler := handlers.NewExpertHandler(store, svc.Dispatcher)
	playbookHandler := handlers.NewPlaybookHandler(store, svc.Templates)
	paymentHandler := handlers.NewPaymentHandler(store, svc.Mpesa)
	adminHandler := handlers.NewAdminHandler(svc.Reports)

	requireAuth := middleware.RequireAuth(svc.Auth)

	api := app.Group("/api")

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/send-otp", authHandler.SendOTP)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/onboarding", requireAuth, authHandler.Onboarding)

	// Diagnostics
	diagnostics := api.Group("/diagnostics")
	diagnostics.Get("/questions/:domain", diagnosticHandler.Questions)
	diagnostics.Get("/", requireAuth, diagnosticHandler.List)
	diagnostics.Post("/", requireAuth, diagnosticHandler.Submit)

	// Experts and bookings
	experts := api.Group("/experts")
	experts.Get("/", expertHandler.List)
	experts.Post("/bookings", requireAuth, expertHandler.CreateBooking)

	// Playbooks (public reads)
	playbooks := api.Group("/playbooks")
	playbooks.Get("/", playbookHandler.List)
	playbooks.Get("/:id", playbookHandler.Get)
	playbooks.Get("/:id/template", playbookHandler.DownloadTemplate)

	// M-Pesa: initiation needs a session, the callback comes from the gateway
	mpesa := api.Group("/mpesa")
	mpesa.Post("/stkpush", requireAuth, paymentHandler.InitiatePush)
	mpesa.Post("/callback", paymentHandler.Callback)

	// ========== ADMIN ROUTES ==========
	admin := app.Group("/admin", middleware.RequireAdminKey())
	admin.Get("/playbooks", playbookHandler.AdminList)
	admin.Post("/playbooks", playbookHandler.Create)
	admin.Put("/playbooks/:id", playbookHandler.Update)
	admin.Delete("/playbooks/:id", playbookHandler.Delete)
	admin.Post("/playbooks/:id/template-upload", playbookHandler.TemplateUpload)
	admin.Get("/reports/export", adminHandler.ExportReport)
}
