// File: internal/realtime/client.go
package realtime

// Client is the interface for any kind of live session the hub manages. It
// abstracts the transport so the hub (and tests) never touch a websocket
// directly.
type Client interface {
	// SessionID returns the unique identifier of this connection.
	SessionID() string
	// Send queues an event for delivery. It must not block; it reports
	// false when the session's buffer is full and the event was dropped.
	Send(event Event) bool
	// Close tears the session down and stops its pumps.
	Close()
}
