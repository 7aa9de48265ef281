// Package schemas registers the import target schemas with the core registry.
// Import this package to ensure all schemas are registered.
package schemas

// Each schema file uses init() to register its schema.
