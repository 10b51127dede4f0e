package ports

import (
	"context"
	"net/http"

	"github.com/bft-labs/drawstream/internal/domain"
)

// Conn is one persistent bidirectional client connection.
//
// ReadPayload is called from a single reader goroutine and WriteFrame from a
// single writer goroutine. Close may be called from any goroutine, any number
// of times.
type Conn interface {
	// ReadPayload blocks until the next message arrives and classifies it.
	// Errors wrapping domain.ErrProtocol mean the message was discarded and
	// the connection is still usable. Any other error is terminal.
	ReadPayload() (domain.Payload, error)

	// WriteFrame sends a result frame to the client.
	WriteFrame(ctx context.Context, frame domain.Frame) error

	// Close releases the connection and unblocks a pending ReadPayload.
	Close() error

	// RemoteAddr identifies the peer for logging.
	RemoteAddr() string
}

// ConnUpgrader turns an incoming HTTP request into a Conn.
// On failure the implementation has already replied to the client.
type ConnUpgrader interface {
	Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
}
