package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/circletel/payments/handler"
	"github.com/circletel/payments/infra/middle"
	"github.com/circletel/payments/provider"

	// Import for side-effect registration
	_ "github.com/circletel/payments/provider/netcash"
)

// Routes mounts the payment API on the given router. Webhook and health
// endpoints are public; everything under /v1 requires the API key.
func Routes(r chi.Router, service *provider.PaymentService) {
	validate := validator.New()

	paymentHandler := handler.NewPaymentHandler(service, validate)
	healthHandler := handler.NewHealthHandler(service)

	r.Get("/health", healthHandler.Liveness)
	r.Get("/health/providers", healthHandler.ProviderHealth)

	// Gateways post here; authenticated by signature, not API key
	r.Post("/webhooks/{provider}", paymentHandler.ProcessWebhook)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middle.APIKeyMiddleware())

		r.Post("/payments", paymentHandler.InitiatePayment)
		r.Post("/payments/{provider}", paymentHandler.InitiatePayment)
		r.Post("/payments/{provider}/refund", paymentHandler.RefundPayment)
		r.Get("/payments/{provider}/{transactionID}", paymentHandler.GetPaymentStatus)

		r.Get("/providers", paymentHandler.ListProviders)
		r.Get("/providers/{provider}/capabilities", paymentHandler.GetProviderCapabilities)
		r.Get("/factory/status", paymentHandler.GetFactoryStatus)

		r.Get("/transactions", paymentHandler.ListTransactions)
		r.Get("/transactions/{transactionID}/events", paymentHandler.GetTransactionEvents)
		r.Get("/events/errors", paymentHandler.ListErrorEvents)
	})
}
