package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/schemaviz/schemaviz/pkg/cache"
	schemavizerrors "github.com/schemaviz/schemaviz/pkg/errors"
	"github.com/schemaviz/schemaviz/pkg/observability"
	"github.com/schemaviz/schemaviz/pkg/pipeline"
)

// shutdownTimeout bounds how long in-flight requests may run after the
// server receives a stop signal.
const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command that exposes the render pipeline
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var port int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP server that renders diagrams on demand",
		Long: `Run an HTTP server exposing the render pipeline.

Endpoints:
  POST /render           render an erDiagram source to the requested formats
  GET  /diagrams/{hash}  fetch a previously rendered SVG by model hash
  GET  /healthz          liveness probe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           c.newRouter(runner),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()
			c.Logger.Info("server listening", "addr", srv.Addr)

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			c.Logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}

// =============================================================================
// Router
// =============================================================================

// newRouter builds the chi router with all endpoints registered.
func (c *CLI) newRouter(runner *pipeline.Runner) *chi.Mux {
	r := chi.NewRouter()
	r.Use(c.requestLogger)

	r.Get("/healthz", handleHealth)
	r.Post("/render", c.handleRender(runner))
	r.Get("/diagrams/{hash}", c.handleDiagram(runner))

	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLogger attaches a request-scoped logger to the context and reports
// every request through the server hooks.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		logger := c.Logger.With("request_id", requestID)
		ctx := withLogger(r.Context(), logger)

		observability.Server().OnRequest(ctx, r.Method, r.URL.Path)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		duration := time.Since(start)

		observability.Server().OnResponse(ctx, r.Method, r.URL.Path, rec.status, duration)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", duration)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// renderRequest is the POST /render body.
type renderRequest struct {
	Source      string   `json:"source"`
	Formats     []string `json:"formats,omitempty"`
	Direction   string   `json:"direction,omitempty"`
	FontFamily  string   `json:"font_family,omitempty"`
	FontSize    float64  `json:"font_size,omitempty"`
	UseMaxWidth bool     `json:"use_max_width,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	TargetID    string   `json:"target_id,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`
}

// renderResponse is the POST /render reply. Artifact bytes are
// base64-encoded by the JSON encoder.
type renderResponse struct {
	ModelHash string             `json:"model_hash"`
	Stats     pipeline.Stats     `json:"stats"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Artifacts map[string][]byte  `json:"artifacts"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// handleRender runs the full pipeline for a posted erDiagram source.
func (c *CLI) handleRender(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req renderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}

		opts := pipeline.Options{
			Source:      req.Source,
			Formats:     req.Formats,
			Direction:   req.Direction,
			FontFamily:  req.FontFamily,
			FontSize:    req.FontSize,
			UseMaxWidth: req.UseMaxWidth,
			Scale:       req.Scale,
			Detailed:    req.Detailed,
			TargetID:    req.TargetID,
			Refresh:     req.Refresh,
			Logger:      loggerFromContext(r.Context()),
		}

		result, err := runner.Execute(r.Context(), opts)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}

		writeJSON(w, http.StatusOK, renderResponse{
			ModelHash: result.ModelHash,
			Stats:     result.Stats,
			Cache:     result.CacheInfo,
			Artifacts: result.Artifacts,
		})
	}
}

// handleDiagram serves a cached SVG by model hash. Render options that feed
// the diagram cache key are taken from query parameters.
func (c *CLI) handleDiagram(runner *pipeline.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hash := chi.URLParam(r, "hash")

		q := r.URL.Query()
		opts := pipeline.Options{
			Direction:   q.Get("direction"),
			FontFamily:  q.Get("font_family"),
			UseMaxWidth: q.Get("max_width") == "true",
			Logger:      loggerFromContext(r.Context()),
		}
		if v := q.Get("font_size"); v != "" {
			size, err := strconv.ParseFloat(v, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid font_size %q", v))
				return
			}
			opts.FontSize = size
		}

		svgData, err := runner.CachedDiagram(r.Context(), hash, opts)
		if err != nil {
			if errors.Is(err, cache.ErrCacheMiss) {
				writeError(w, http.StatusNotFound, fmt.Errorf("diagram %s not found", hash))
				return
			}
			writeError(w, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(svgData)
	}
}

// =============================================================================
// Responses
// =============================================================================

// statusForError maps pipeline error codes onto HTTP status codes.
func statusForError(err error) int {
	switch schemavizerrors.GetCode(err) {
	case schemavizerrors.ErrCodeParse:
		return http.StatusUnprocessableEntity
	case schemavizerrors.ErrCodeInvalidInput, schemavizerrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	if code := schemavizerrors.GetCode(err); code != "" {
		resp.Code = string(code)
	}
	writeJSON(w, status, resp)
}
