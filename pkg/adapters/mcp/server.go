// Package mcp exposes the line model and a pool of solver sessions as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/aretw0/pious"
	"github.com/aretw0/pious/internal/dto"
	"github.com/aretw0/pious/internal/logging"
	"github.com/aretw0/pious/internal/sanitize"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ParseLineArgs are the arguments of parse_line.
type ParseLineArgs struct {
	Line           string `json:"line"`
	StartingStreet string `json:"starting_street,omitempty"`
	EffectiveStack int    `json:"effective_stack,omitempty"`
}

// TreeArgs name the tree a tool works on.
type TreeArgs struct {
	Tree string `json:"tree,omitempty"`
}

// AllLinesArgs are the arguments of all_lines.
type AllLinesArgs struct {
	Tree   string `json:"tree,omitempty"`
	Street string `json:"street,omitempty"`
}

// LinesResponse wraps the all_lines answer.
type LinesResponse struct {
	Lines []dto.Line `json:"lines" jsonschema_description:"Lines of the tree"`
}

// ShowNodeArgs are the arguments of show_node.
type ShowNodeArgs struct {
	Tree     string `json:"tree,omitempty"`
	NodeID   string `json:"node_id"`
	Children bool   `json:"children,omitempty"`
}

// NodeResponse is the show_node answer.
type NodeResponse struct {
	Node     dto.Node   `json:"node" jsonschema_description:"The requested node"`
	Children []dto.Node `json:"children,omitempty" jsonschema_description:"Its children when requested"`
}

// Server exposes pious as an MCP server.
type Server struct {
	pool      *session.Pool
	tree      string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithTree sets the tree used when a call names none.
func WithTree(path string) Option {
	return func(s *Server) {
		s.tree = path
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the MCP server. Without a pool only parse_line is useful.
func NewServer(pool *session.Pool, opts ...Option) *Server {
	s := &Server{
		pool:      pool,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("pious-mcp", strings.TrimSpace(pious.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio serves on Stdin/Stdout until the client goes away.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("parse_line",
		mcp.WithDescription("Parse a betting line such as r:0:c:b30:c and describe it."),
		mcp.WithString("line", mcp.Required(), mcp.Description("Line or node id; the r:0 root may be omitted")),
		mcp.WithString("starting_street", mcp.Description("Street of the first postflop segment (flop, turn or river)")),
		mcp.WithNumber("effective_stack", mcp.Description("Effective stack, enables all-in detection")),
		mcp.WithOutputSchema[dto.Line](),
	), mcp.NewStructuredToolHandler(s.handleParseLine))

	s.mcpServer.AddTool(mcp.NewTool("tree_info",
		mcp.WithDescription("Report board, pot, stacks and ranges of a saved tree."),
		mcp.WithString("tree", mcp.Description("Path of the .cfr file (optional when the server has a default)")),
		mcp.WithOutputSchema[domain.TreeInfo](),
	), mcp.NewStructuredToolHandler(s.handleTreeInfo))

	s.mcpServer.AddTool(mcp.NewTool("all_lines",
		mcp.WithDescription("List every line of a saved tree, optionally for one street."),
		mcp.WithString("tree", mcp.Description("Path of the .cfr file (optional when the server has a default)")),
		mcp.WithString("street", mcp.Description("Only lines whose current street is this one")),
		mcp.WithOutputSchema[LinesResponse](),
	), mcp.NewStructuredToolHandler(s.handleAllLines))

	s.mcpServer.AddTool(mcp.NewTool("show_node",
		mcp.WithDescription("Describe one node of a saved tree."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("Node id, cards included")),
		mcp.WithString("tree", mcp.Description("Path of the .cfr file (optional when the server has a default)")),
		mcp.WithBoolean("children", mcp.Description("Also describe the node's children")),
		mcp.WithOutputSchema[NodeResponse](),
	), mcp.NewStructuredToolHandler(s.handleShowNode))
}

func (s *Server) handleParseLine(ctx context.Context, request mcp.CallToolRequest, args ParseLineArgs) (dto.Line, error) {
	var opts []line.Option
	if args.StartingStreet != "" {
		st, err := line.ParseStreet(args.StartingStreet)
		if err != nil {
			return dto.Line{}, err
		}
		opts = append(opts, line.WithStartingStreet(st))
	}
	if args.EffectiveStack > 0 {
		opts = append(opts, line.WithEffectiveStack(args.EffectiveStack))
	}
	raw, err := sanitize.Input(args.Line)
	if err != nil {
		return dto.Line{}, err
	}
	l, err := line.Parse(line.EnsureRoot(raw), opts...)
	if err != nil {
		return dto.Line{}, err
	}
	return dto.FromLine(l), nil
}

// withTree runs fn on a pooled session holding the requested tree. Nodes of
// partially saved trees are made addressable up front.
func (s *Server) withTree(ctx context.Context, tree string, fn func(context.Context, *session.Session) error) error {
	if s.pool == nil {
		return errors.New("no engine configured")
	}
	tree, err := sanitize.Input(tree)
	if err != nil {
		return err
	}
	if tree == "" {
		tree = s.tree
	}
	if tree == "" {
		return errors.New("no tree given")
	}
	abs, err := filepath.Abs(tree)
	if err != nil {
		return err
	}
	return s.pool.With(ctx, func(ctx context.Context, sess *session.Session) error {
		if current, ok := sess.TreePath(); !ok || current != abs {
			if err := sess.LoadTree(ctx, abs); err != nil {
				return err
			}
		}
		if err := fn(ctx, sess); err != nil {
			s.logger.Warn("MCP tool failed", "tree", abs, "error", err)
			return err
		}
		return nil
	})
}

func (s *Server) handleTreeInfo(ctx context.Context, request mcp.CallToolRequest, args TreeArgs) (domain.TreeInfo, error) {
	var info domain.TreeInfo
	err := s.withTree(ctx, args.Tree, func(ctx context.Context, sess *session.Session) error {
		var err error
		info, err = sess.ShowTreeInfo(ctx)
		return err
	})
	return info, err
}

func (s *Server) handleAllLines(ctx context.Context, request mcp.CallToolRequest, args AllLinesArgs) (LinesResponse, error) {
	var preds []line.Predicate
	if args.Street != "" {
		st, err := line.ParseStreet(args.Street)
		if err != nil {
			return LinesResponse{}, err
		}
		preds = append(preds, func(l line.Line) bool { return l.Street() == st })
	}
	var lines []line.Line
	err := s.withTree(ctx, args.Tree, func(ctx context.Context, sess *session.Session) error {
		var err error
		lines, err = sess.AllLines(ctx)
		return err
	})
	if err != nil {
		return LinesResponse{}, err
	}
	return LinesResponse{Lines: dto.FromLines(line.Filter(lines, preds...))}, nil
}

func (s *Server) handleShowNode(ctx context.Context, request mcp.CallToolRequest, args ShowNodeArgs) (NodeResponse, error) {
	nodeID, err := sanitize.Input(args.NodeID)
	if err != nil {
		return NodeResponse{}, err
	}
	if nodeID == "" {
		return NodeResponse{}, fmt.Errorf("node_id is required")
	}
	var resp NodeResponse
	err = s.withTree(ctx, args.Tree, func(ctx context.Context, sess *session.Session) error {
		if sess.Partial() {
			if err := sess.LoadAllNodes(ctx); err != nil {
				return err
			}
		}
		n, err := sess.ShowNode(ctx, nodeID)
		if err != nil {
			return err
		}
		resp.Node = dto.FromNode(n)
		if args.Children {
			kids, err := sess.ShowChildren(ctx, nodeID)
			if err != nil {
				return err
			}
			resp.Children = dto.FromNodes(kids)
		}
		return nil
	})
	return resp, err
}
