// Package domain defines the MCP tool schemas and handlers for the game
// service. Handlers call the application service directly and shape the
// results for model-driven clients.
package domain
