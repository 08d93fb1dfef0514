package relay

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const defaultSendBuffer = 64

// Conn is one live client connection as seen by the relay. The transport
// drains Send and stops once Done is closed.
type Conn struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Username string

	send      chan Event
	done      chan struct{}
	closeOnce sync.Once

	frames *rate.Limiter
	chat   *rate.Limiter
}

// NewConn registers nothing; it only allocates the outbound buffer and the
// per-connection limiters.
func NewConn(userID uuid.UUID, username string) *Conn {
	return &Conn{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		send:     make(chan Event, defaultSendBuffer),
		done:     make(chan struct{}),
		frames:   rate.NewLimiter(20, 40),
		chat:     rate.NewLimiter(1, 5),
	}
}

// Send is the outbound queue.
func (c *Conn) Send() <-chan Event { return c.send }

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Deliver queues ev without blocking. A connection whose buffer is full is
// too slow to keep up and gets closed.
func (c *Conn) Deliver(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		c.Close()
		return false
	}
}

// Close marks the connection closed. Safe to call more than once.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Allow reports whether another inbound frame is within the rate limit.
func (c *Conn) Allow() bool { return c.frames.Allow() }

// AllowChat applies the stricter chat limit.
func (c *Conn) AllowChat() bool { return c.chat.Allow() }
