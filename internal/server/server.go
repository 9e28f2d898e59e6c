// Package server exposes the listings and the chat relay as a small JSON
// backend for browser front ends.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"sourcetalk/internal/config"
	"sourcetalk/internal/content"
	"sourcetalk/internal/entity"
	"sourcetalk/internal/logging"
	"sourcetalk/internal/metrics"
	"sourcetalk/internal/pagination"
	"sourcetalk/internal/query"
	"sourcetalk/internal/relay"
)

// maxChatBody bounds the chat request body.
const maxChatBody = 64 << 10

// backend is everything built from one configuration. Reload swaps it whole.
type backend struct {
	pageSize  int
	radius    int
	products  *content.Fetcher[entity.Product]
	materials *content.Fetcher[entity.Material]
	suppliers *content.Fetcher[entity.Supplier]
	relay     *relay.Client
}

func newBackend(cfg *config.Config, mapper entity.Mapper) *backend {
	client := content.NewClient(content.Config{
		BaseURL: cfg.Content.BaseURL,
		Token:   cfg.Content.Token,
		Timeout: cfg.GetContentTimeout(),
	})
	return &backend{
		pageSize:  cfg.GetPageSize(),
		radius:    cfg.GetPaginationRadius(),
		products:  content.NewProductFetcher(client, mapper),
		materials: content.NewMaterialFetcher(client, mapper),
		suppliers: content.NewSupplierFetcher(client, mapper),
		relay: relay.NewClient(relay.Config{
			WebhookURL: cfg.Relay.WebhookURL,
			Timeout:    cfg.GetRelayTimeout(),
		}),
	}
}

// Server serves the JSON API.
type Server struct {
	mu     sync.RWMutex
	be     *backend
	mapper entity.Mapper

	addr            string
	readTimeout     time.Duration
	shutdownTimeout time.Duration
	maxConns        int
	handler         http.Handler
}

// New creates a server for cfg. The listen address and timeouts are fixed at
// creation; everything else follows Reload.
func New(cfg *config.Config) *Server {
	s := &Server{
		addr:            cfg.Server.Addr,
		readTimeout:     cfg.GetReadTimeout(),
		shutdownTimeout: cfg.GetShutdownTimeout(),
		maxConns:        cfg.GetMaxConnections(),
	}
	s.be = newBackend(cfg, s.mapper)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalogs", serveListing(s, query.Catalogs, func(b *backend) *content.Fetcher[entity.Product] { return b.products }))
	mux.HandleFunc("GET /api/materials", serveListing(s, query.Materials, func(b *backend) *content.Fetcher[entity.Material] { return b.materials }))
	mux.HandleFunc("GET /api/suppliers", serveListing(s, query.Suppliers, func(b *backend) *content.Fetcher[entity.Supplier] { return b.suppliers }))
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handler = instrument(mux)
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Reload rebuilds the API clients from cfg. Requests already running finish
// with the clients they started with.
func (s *Server) Reload(cfg *config.Config) {
	be := newBackend(cfg, s.mapper)
	s.mu.Lock()
	s.be = be
	s.mu.Unlock()
	logging.Server("configuration reloaded")
}

func (s *Server) current() *backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.be
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. At most max_connections are
// accepted at once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.maxConns)
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readTimeout,
		ReadTimeout:       s.readTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Server("listening on %s", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		logging.Server("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// HANDLERS
// =============================================================================

type listingMeta struct {
	Pagination pagination.Pagination `json:"pagination"`
	Pages      []pagination.Token    `json:"pages"`
	From       int                   `json:"from"`
	To         int                   `json:"to"`
}

type listingResponse[T any] struct {
	Data []T         `json:"data"`
	Meta listingMeta `json:"meta"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func serveListing[T any](s *Server, resource query.Resource, pick func(*backend) *content.Fetcher[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		be := s.current()

		req, err := query.ParseValues(r.URL.Query(), be.pageSize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		page, err := pick(be).Fetch(r.Context(), req)
		if err != nil {
			writeError(w, fetchStatus(err), err.Error())
			return
		}

		from, to := page.Pagination.Range()
		data := page.Items
		if data == nil {
			data = []T{}
		}
		writeJSON(w, http.StatusOK, listingResponse[T]{
			Data: data,
			Meta: listingMeta{
				Pagination: page.Pagination,
				Pages:      pagination.Window(page.Pagination.Page, page.Pagination.PageCount, be.radius),
				From:       from,
				To:         to,
			},
		})
		logging.ServerDebug("%s: page %d, %d items", resource, page.Pagination.Page, len(page.Items))
	}
}

// fetchStatus maps a fetch error to a response code: bad input is the
// caller's fault, everything else is the upstream's.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidSortOption),
		errors.Is(err, query.ErrUnsupportedFilter),
		errors.Is(err, query.ErrInvalidPage),
		errors.Is(err, query.ErrInvalidParam):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp := s.current().relay.Send(r.Context(), message)
	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.ServerError("encoding JSON response: %v", err)
		status = http.StatusInternalServerError
		data, _ = json.Marshal(errorResponse{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		logging.ServerDebug("writing JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags every request with an ID and records its route, status
// and duration.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		timer := metrics.NewTimer()
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, rec.status, timer.Duration())
		logging.ServerDebug("%s %s -> %d (%s) id=%s", r.Method, r.URL.Path, rec.status, timer.Duration(), id)
	})
}
