// Package http serves the line model and a pool of solver sessions as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/pious"
	"github.com/aretw0/pious/internal/dto"
	"github.com/aretw0/pious/internal/logging"
	"github.com/aretw0/pious/internal/sanitize"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the handlers' dependencies.
type Server struct {
	pool     *session.Pool
	tree     string
	mode     session.LoadMode
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithTree sets the tree loaded when a request names none.
func WithTree(path string) Option {
	return func(s *Server) {
		s.tree = path
	}
}

// WithLoadMode sets the mode trees are loaded with.
func WithLoadMode(m session.LoadMode) Option {
	return func(s *Server) {
		s.mode = m
	}
}

// WithGatherer exposes g on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler. The pool may be nil, in which case
// only the line endpoints answer.
func NewHandler(pool *session.Pool, opts ...Option) http.Handler {
	s := &Server{
		pool:   pool,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	if doc, err := Spec(); err != nil {
		s.logger.Error("requests are not validated", "error", err)
	} else if validate, err := s.validateRequests(doc); err != nil {
		s.logger.Error("requests are not validated", "error", err)
	} else {
		r.Use(validate)
	}
	r.Get("/openapi.yaml", s.openAPI)
	r.Get("/health", s.health)
	r.Get("/info", s.info)
	r.Post("/lines/parse", s.parseLines)
	r.Get("/tree/info", s.treeInfo)
	r.Get("/tree/lines", s.treeLines)
	r.Get("/nodes/{id}", s.node)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	var (
		pre  *domain.PreconditionError
		node *domain.NodeLookupError
		tree *domain.TreeLoadError
	)
	switch {
	case errors.As(err, &pre):
		return http.StatusConflict
	case errors.As(err, &node), errors.Is(err, domain.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.As(err, &tree), errors.Is(err, line.ErrMalformedLine),
		errors.Is(err, sanitize.ErrInputTooLarge), errors.Is(err, sanitize.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionDegraded), errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, session.ErrPoolClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.pool != nil {
		idle, inUse := s.pool.Stats()
		body["idle"] = idle
		body["in_use"] = inUse
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"version": strings.TrimSpace(pious.Version),
		"tree":    s.tree,
		"engine":  s.pool != nil,
	}
	if doc, err := Spec(); err == nil && doc.Info != nil {
		body["api_version"] = doc.Info.Version
	}
	s.writeJSON(w, http.StatusOK, body)
}

// ParseRequest is the body of POST /lines/parse.
type ParseRequest struct {
	Lines          []string `json:"lines"`
	StartingStreet string   `json:"starting_street,omitempty"`
	EffectiveStack int      `json:"effective_stack,omitempty"`
}

// ParseResult is one entry of the POST /lines/parse answer.
type ParseResult struct {
	Input string    `json:"input"`
	Line  *dto.Line `json:"line,omitempty"`
	Error string    `json:"error,omitempty"`
}

func (s *Server) parseLines(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid body: " + err.Error()})
		return
	}
	var opts []line.Option
	if req.StartingStreet != "" {
		st, err := line.ParseStreet(req.StartingStreet)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
		opts = append(opts, line.WithStartingStreet(st))
	}
	if req.EffectiveStack > 0 {
		opts = append(opts, line.WithEffectiveStack(req.EffectiveStack))
	}

	out := make([]ParseResult, 0, len(req.Lines))
	for _, raw := range req.Lines {
		res := ParseResult{Input: raw}
		clean, err := sanitize.Input(raw)
		if err == nil {
			var l line.Line
			l, err = line.Parse(line.EnsureRoot(clean), opts...)
			if err == nil {
				v := dto.FromLine(l)
				res.Line = &v
			}
		}
		if err != nil {
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	s.writeJSON(w, http.StatusOK, out)
}

// withTree checks a session out of the pool, makes sure the requested tree
// is loaded and runs fn.
func (s *Server) withTree(r *http.Request, fn func(context.Context, *session.Session) error) error {
	if s.pool == nil {
		return &domain.PreconditionError{Op: r.URL.Path, Reason: "no engine configured"}
	}
	path, err := sanitize.Input(r.URL.Query().Get("tree"))
	if err != nil {
		return err
	}
	if path == "" {
		path = s.tree
	}
	if path == "" {
		return &domain.PreconditionError{Op: r.URL.Path, Reason: "no tree given"}
	}
	return s.pool.With(r.Context(), func(ctx context.Context, sess *session.Session) error {
		if current, ok := sess.TreePath(); !ok || !samePath(current, path) {
			if err := sess.LoadTree(ctx, path, session.WithLoadMode(s.mode)); err != nil {
				return err
			}
		}
		return fn(ctx, sess)
	})
}

func samePath(loaded, requested string) bool {
	abs, err := filepath.Abs(requested)
	return err == nil && abs == loaded
}

func (s *Server) treeInfo(w http.ResponseWriter, r *http.Request) {
	var info domain.TreeInfo
	err := s.withTree(r, func(ctx context.Context, sess *session.Session) error {
		var err error
		info, err = sess.ShowTreeInfo(ctx)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) treeLines(w http.ResponseWriter, r *http.Request) {
	preds, err := linePredicates(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var lines []line.Line
	err = s.withTree(r, func(ctx context.Context, sess *session.Session) error {
		var err error
		lines, err = sess.AllLines(ctx)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dto.FromLines(line.Filter(lines, preds...)))
}

// linePredicates reads the street, terminal and facing_bet filters.
func linePredicates(r *http.Request) ([]line.Predicate, error) {
	q := r.URL.Query()
	var preds []line.Predicate
	if v := q.Get("street"); v != "" {
		st, err := line.ParseStreet(v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, func(l line.Line) bool { return l.Street() == st })
	}
	for key, pred := range map[string]line.Predicate{
		"terminal":   line.IsTerminal,
		"facing_bet": line.IsFacingBet,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		want, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, func(l line.Line) bool { return pred(l) == want })
	}
	return preds, nil
}

// NodeResponse is the answer of GET /nodes/{id}.
type NodeResponse struct {
	Node     dto.Node   `json:"node"`
	Children []dto.Node `json:"children,omitempty"`
}

func (s *Server) node(w http.ResponseWriter, r *http.Request) {
	id, err := sanitize.Input(chi.URLParam(r, "id"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	q := r.URL.Query()
	allNodes, _ := strconv.ParseBool(q.Get("all_nodes"))
	withChildren, _ := strconv.ParseBool(q.Get("children"))

	var resp NodeResponse
	err = s.withTree(r, func(ctx context.Context, sess *session.Session) error {
		if allNodes {
			if err := sess.LoadAllNodes(ctx); err != nil {
				return err
			}
		}
		n, err := sess.ShowNode(ctx, id)
		if err != nil {
			return err
		}
		resp.Node = dto.FromNode(n)
		if withChildren {
			kids, err := sess.ShowChildren(ctx, id)
			if err != nil {
				return err
			}
			resp.Children = dto.FromNodes(kids)
		}
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}
