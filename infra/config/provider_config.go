package config

// Provider configuration keys are resolved from the environment per
// provider. The key names inside each map are the provider's own contract
// (its Initialize reads them); the env variable names are the deployment
// contract.

// GetProviderConfig returns the environment-backed configuration map for a
// provider type. Unknown types get an empty map; the provider's own
// IsConfigured decides whether that is usable.
func GetProviderConfig(name string) map[string]string {
	switch name {
	case "netcash":
		return map[string]string{
			"serviceKey":    GetEnv("NETCASH_SERVICE_KEY", ""),
			"pciVaultKey":   GetEnv("NETCASH_PCI_VAULT_KEY", ""),
			"webhookSecret": GetEnv("NETCASH_WEBHOOK_SECRET", ""),
			"paymentURL":    GetEnv("NETCASH_PAYMENT_URL", ""),
			"returnURL":     GetEnv("PAYMENT_RETURN_URL", GetEnv("APP_URL", "")+"/payment/success"),
			"cancelURL":     GetEnv("PAYMENT_CANCEL_URL", GetEnv("APP_URL", "")+"/payment/cancelled"),
			"notifyURL":     GetEnv("PAYMENT_NOTIFY_URL", GetEnv("APP_URL", "")+"/webhooks/netcash"),
		}
	case "payfast":
		return map[string]string{
			"merchantId":  GetEnv("PAYFAST_MERCHANT_ID", ""),
			"merchantKey": GetEnv("PAYFAST_MERCHANT_KEY", ""),
			"passphrase":  GetEnv("PAYFAST_PASSPHRASE", ""),
		}
	case "paygate":
		return map[string]string{
			"payGateId":     GetEnv("PAYGATE_ID", ""),
			"encryptionKey": GetEnv("PAYGATE_ENCRYPTION_KEY", ""),
		}
	case "zoho_billing":
		return map[string]string{
			"organizationId": GetEnv("ZOHO_ORGANIZATION_ID", ""),
			"apiToken":       GetEnv("ZOHO_API_TOKEN", ""),
		}
	default:
		return map[string]string{}
	}
}
