// Package server exposes the voice webhook and a debug interpretation
// endpoint over HTTP.
package server

import (
	"context"
	"crypto/rand"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Jayphen/taskvoice/internal/auth"
	"github.com/Jayphen/taskvoice/internal/interpret"
	"github.com/Jayphen/taskvoice/internal/logging"
	"github.com/Jayphen/taskvoice/internal/voice"
	"github.com/oklog/ulid/v2"
	"github.com/rs/cors"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr           string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// Tokens guards /v1/interpret when set.
	Tokens *auth.Tokens
	// Location is used for the debug endpoint when the request gives no zone.
	Location *time.Location
	Parser   *interpret.Parser
}

// VoiceHandler answers voice envelopes. *voice.Handler implements it.
type VoiceHandler interface {
	Handle(ctx context.Context, req *voice.Request) (*voice.Response, error)
}

// Server is the taskvoice HTTP server.
type Server struct {
	cfg   Config
	voice VoiceHandler
	log   *logging.Logger
	mux   *http.ServeMux
	now   func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

// New wires the routes. A nil logger uses the global one.
func New(cfg Config, handler VoiceHandler, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Get()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Parser == nil {
		cfg.Parser = interpret.DefaultParser()
	}
	s := &Server{
		cfg:     cfg,
		voice:   handler,
		log:     log,
		mux:     http.NewServeMux(),
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	s.mux.HandleFunc("POST /v1/voice", s.handleVoice)
	s.mux.Handle("POST /v1/interpret", cfg.Tokens.Middleware(http.HandlerFunc(s.handleInterpret)))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(s.accessLog(s.mux))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", ln.Addr().String()).Info("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	s.entropyMu.Lock()
	defer s.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		id := s.requestID(r)
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.log.WithRequestID(id).WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"bytes":       rec.bytes,
			"duration_ms": s.now().Sub(start).Milliseconds(),
		}).Info("request")
	})
}
