// Package payments provides a payment gateway abstraction for CircleTel
// services: a single provider interface, a factory that validates and
// caches provider instances, and an HTTP API for initiating payments and
// receiving gateway webhooks.
//
// # Overview
//
// Each supported gateway implements the provider.PaymentProvider
// interface. Callers never construct providers directly; the
// provider.Factory resolves a provider by name, checks that it is enabled
// and configured, and hands out one shared instance per type. Business
// outcomes such as a rejected payment or a bad webhook signature are
// reported through result structs; Go errors are reserved for selection
// and configuration problems.
//
// # Supported Providers
//
//   - NetCash: Pay Now hosted payment page with 20+ payment methods.
//     Webhook driven status updates, manual refunds via the merchant
//     portal.
//   - PayFast, PayGate, Zoho Billing: reserved provider types without an
//     implementation yet.
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/circletel/payments/provider"
//	    _ "github.com/circletel/payments/provider/netcash" // Import to register provider
//	)
//
//	func main() {
//	    factory := provider.NewFactory()
//
//	    p, err := factory.GetProvider("netcash")
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    result, err := p.Initiate(context.Background(), provider.InitiationParams{
//	        Amount:        799.00,
//	        Currency:      "ZAR",
//	        Reference:     "ORDER-001",
//	        CustomerEmail: "customer@example.com",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // Redirect the customer to result.PaymentURL with result.FormData
//	    fmt.Println(result.PaymentURL)
//	}
//
// Configuration is environment driven; see infra/config for the variable
// names each provider reads.
package payments
