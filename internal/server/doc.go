// Package server implements the HTTP and WebSocket server functionality for relaychat.
//
// The implementation is organized into specialized files for configuration,
// the frame protocol, the broadcast coordinator, hub management, clients,
// routing, and HTTP handlers. Channel state itself lives in the channel
// package; this package only reaches it through the Registry API.
package server
