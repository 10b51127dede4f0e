package log

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	adapter "github.com/bft-labs/drawstream/internal/adapters/log"
	"github.com/bft-labs/drawstream/internal/ports"
)

// Logger provides structured logging capabilities.
type Logger = ports.Logger

// Field represents a key-value pair for structured logging.
type Field = ports.Field

// NewZerolog wraps an existing zerolog.Logger.
func NewZerolog(l zerolog.Logger) Logger {
	return adapter.NewZerologAdapterWithLogger(l)
}

// NewConsole returns a human-readable zerolog logger writing to w.
func NewConsole(w io.Writer) Logger {
	return adapter.NewConsoleAdapter(w)
}

// NewNoop returns a logger that discards all messages.
func NewNoop() Logger {
	return adapter.NewNoopLogger()
}

// With returns a logger that adds fields to every message, when l supports it.
func With(l Logger, fields ...Field) Logger {
	return ports.With(l, fields...)
}

func String(key, value string) Field                 { return ports.String(key, value) }
func Int(key string, value int) Field                { return ports.Int(key, value) }
func Int64(key string, value int64) Field            { return ports.Int64(key, value) }
func Uint64(key string, value uint64) Field          { return ports.Uint64(key, value) }
func Float64(key string, value float64) Field        { return ports.Float64(key, value) }
func Bool(key string, value bool) Field              { return ports.Bool(key, value) }
func Duration(key string, value time.Duration) Field { return ports.Duration(key, value) }
func Err(err error) Field                            { return ports.Err(err) }
func Any(key string, value interface{}) Field        { return ports.Any(key, value) }
