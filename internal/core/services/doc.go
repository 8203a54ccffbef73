// Package services implements the driving port interfaces.
// Services contain the core business logic of the search and caching
// engine and orchestrate calls to driven ports (adapters).
//
// Services are written as plain functions and structs over injected
// ports; none of them hold process-wide state.
package services
