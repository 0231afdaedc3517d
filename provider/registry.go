package provider

import (
	"sync"
)

// builders is the process-wide table of provider constructors. Concrete
// provider packages add themselves via init() (blank imports in the router
// pull them in), so a Factory only ever builds what was compiled in.
var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// Register adds a payment provider builder to the builder table
func Register(name string, builder Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[name] = builder
}

// registeredBuilder looks up a builder by provider name
func registeredBuilder(name string) (Builder, bool) {
	buildersMu.RLock()
	defer buildersMu.RUnlock()
	builder, ok := builders[name]
	return builder, ok
}

// RegisteredBuilders returns the names of all compiled-in providers
func RegisteredBuilders() []string {
	buildersMu.RLock()
	defer buildersMu.RUnlock()

	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}
