// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which reports whether it can
// run and registers its own routes.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// The Manager holds the registry of available features. Register() adds a
// feature and LoadAll() loads the enabled ones in registration order, logging
// the ones it skips.
package loader
