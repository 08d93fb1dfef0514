// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Custom WebSocket close codes used by the relay endpoint.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError   websocket.StatusCode = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError websocket.StatusCode = 3001 // No usable session and no guest account could be issued.
	SlowConsumerError     websocket.StatusCode = 3004 // Outbound buffer overflowed; the client is not reading.
)
