// Package server implements the realtime relay: websocket transport, session
// and room registries, presence and messaging coordination, and call
// signaling.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, event dispatch, and the individual event handlers
// to keep the codebase maintainable and testable as the project grows.
package server
