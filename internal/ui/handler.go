package ui

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bft-labs/drawstream/internal/domain"
	"github.com/bft-labs/drawstream/internal/ports"
)

//go:embed static
var staticFiles embed.FS

// StatusFunc returns the current server status.
type StatusFunc func() domain.Status

// Handler routes UI requests.
type Handler struct {
	status    StatusFunc
	streamURL func() string
	dir       string
	logger    ports.Logger
}

// NewHandler creates a UI handler. streamURL reports where clients should
// connect. When dir is empty the built-in page is served.
func NewHandler(status StatusFunc, streamURL func() string, dir string, logger ports.Logger) *Handler {
	return &Handler{
		status:    status,
		streamURL: streamURL,
		dir:       dir,
		logger:    logger,
	}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the UI routes on router.
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/status", h.Status).Methods(http.MethodGet)
	router.HandleFunc("/api/stream", h.Stream).Methods(http.MethodGet)
	router.PathPrefix("/").Handler(h.static()).Methods(http.MethodGet, http.MethodHead)
}

// Health reports 200 while the server is running and 503 otherwise.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.status()
	code := http.StatusOK
	if st.State != "Running" {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, map[string]string{"state": st.State})
}

// Status writes the statistics snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.status())
}

// Stream tells the page where the stream endpoint is.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"url":    h.streamURL(),
		"width":  domain.FrameWidth,
		"height": domain.FrameHeight,
	})
}

func (h *Handler) static() http.Handler {
	if h.dir != "" {
		return http.FileServer(http.Dir(h.dir))
	}
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to write response", ports.Err(err))
	}
}
