package routes

// Routes package provides the routing setup for the Address Validator
// Service.
//
// Layout:
// - api.go: API routes (/v1/*)
// - web.go: Web routes (/, /docs, /status)
// - routes.go: package doc
//
// Usage:
// routes.SetupAllRoutes(router, addressController, adminController)
