package netcash

import "github.com/circletel/payments/provider"

// Register NetCash provider with the gateway registry
func init() {
	provider.Register("netcash", NewProvider)
}
