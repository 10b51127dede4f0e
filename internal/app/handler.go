package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

// Handler owns one connection for its lifetime: it reads payloads, forwards
// them to a dedicated worker and tears both down when the stream ends.
type Handler struct {
	conn         ports.Conn
	engine       ports.TransformEngine
	gate         ports.InferenceGate
	params       domain.ParamSet
	pollInterval time.Duration
	stats        *Stats
	logger       ports.Logger
}

// NewHandler creates a handler for conn. params are the session's initial params.
func NewHandler(
	conn ports.Conn,
	engine ports.TransformEngine,
	gate ports.InferenceGate,
	params domain.ParamSet,
	pollInterval time.Duration,
	stats *Stats,
	logger ports.Logger,
) *Handler {
	return &Handler{
		conn:         conn,
		engine:       engine,
		gate:         gate,
		params:       params,
		pollInterval: pollInterval,
		stats:        stats,
		logger:       logger,
	}
}

// Serve runs until the peer closes, a read fails, the worker fails, or ctx is
// cancelled. On return the worker has exited and the connection is closed.
func (h *Handler) Serve(ctx context.Context) {
	h.stats.connOpened()
	defer h.stats.connClosed()

	mailbox := NewMailbox()
	worker := NewWorker(mailbox, h.conn, h.engine, h.gate, h.params, h.pollInterval, h.stats, h.logger)

	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := h.runWorker(workerCtx, worker); err != nil {
			h.logger.Error("worker stopped", ports.Err(err))
			// Unblock the read loop; the client gets no further results.
			_ = h.conn.Close()
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = h.conn.Close()
		case <-workerDone:
		}
	}()

	h.logger.Info("connection opened")
	h.readLoop(mailbox)

	stopWorker()
	mailbox.Put(domain.StopPayload())
	<-workerDone
	_ = h.conn.Close()

	h.logger.Info("connection closed", ports.Uint64("dropped", mailbox.Dropped()))
}

// runWorker contains a panicking engine to this connection.
func (h *Handler) runWorker(ctx context.Context, w *Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.stats.transformFailed()
			err = fmt.Errorf("%w: panic: %v", domain.ErrTransform, r)
		}
	}()
	return w.Run(ctx)
}

func (h *Handler) readLoop(mailbox *Mailbox) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("read loop panic", ports.Any("panic", r))
		}
	}()

	for {
		p, err := h.conn.ReadPayload()
		if err != nil {
			if errors.Is(err, domain.ErrProtocol) {
				h.stats.protocolError()
				h.logger.Warn("discarding malformed message", ports.Err(err))
				continue
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				h.logger.Debug("read loop finished", ports.Err(err))
			} else {
				h.logger.Error("read failed", ports.Err(err))
			}
			return
		}

		switch p.Kind {
		case domain.KindFrame:
			h.stats.frameReceived()
		case domain.KindControl:
			if !p.Control.Recognized() {
				h.stats.controlIgnored()
				h.logger.Debug("ignoring control message", ports.Int("type", p.Control.Type))
				continue
			}
			h.stats.controlReceived()
		default:
			continue
		}

		if mailbox.Put(p) {
			h.stats.dropped(1)
		}
	}
}
