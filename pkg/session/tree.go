package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/protocol"
)

// LoadMode is the optional second argument of load_tree.
type LoadMode string

const (
	LoadDefault LoadMode = ""
	LoadFull    LoadMode = "full"
	LoadFast    LoadMode = "fast"
	LoadAuto    LoadMode = "auto"
)

type loadOptions struct {
	mode    LoadMode
	partial *bool
}

// LoadOption configures LoadTree.
type LoadOption func(*loadOptions)

// WithLoadMode selects how the engine reads the file.
func WithLoadMode(m LoadMode) LoadOption {
	return func(o *loadOptions) {
		o.mode = m
	}
}

// WithPartialSave overrides whether the tree needs load_all_nodes before node
// queries. By default only LoadFull trees are considered complete.
func WithPartialSave(partial bool) LoadOption {
	return func(o *loadOptions) {
		o.partial = &partial
	}
}

// LoadTree loads a saved tree. On success the tree info memo is dropped and
// the session is in StateTreeLoaded. A missing file fails before any command
// is sent.
func (s *Session) LoadTree(ctx context.Context, path string, opts ...LoadOption) error {
	if err := s.begin(opLoadTree, "load_tree"); err != nil {
		return err
	}
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	switch o.mode {
	case LoadDefault, LoadFull, LoadFast, LoadAuto:
	default:
		return &domain.TreeLoadError{Path: path, Message: fmt.Sprintf("unknown load mode %q", o.mode)}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return &domain.TreeLoadError{Path: path, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return &domain.TreeLoadError{Path: abs, Message: "file not found", Err: err}
	}
	if info.IsDir() {
		return &domain.TreeLoadError{Path: abs, Message: "is a directory"}
	}

	cmd := protocol.NewCommand("load_tree", protocol.Quote(abs), string(o.mode))
	resp, err := s.exchange(ctx, cmd)
	if err != nil {
		return err
	}
	if resp.Kind == protocol.KindError {
		return &domain.TreeLoadError{Path: abs, Message: resp.Message}
	}

	partial := o.mode != LoadFull
	if o.partial != nil {
		partial = *o.partial
	}
	s.tree = newTreeRef(abs, info, partial)
	s.cache.reset()
	s.commit(opLoadTree, "load_tree")
	s.logger.Info("tree loaded", "path", abs, "mode", string(o.mode), "partial", partial)
	return nil
}

// LoadAllNodes makes every node of a partially saved tree addressable. It is
// sent at most once per loaded tree.
func (s *Session) LoadAllNodes(ctx context.Context) error {
	if err := s.begin(opLoadAllNodes, "load_all_nodes"); err != nil {
		return err
	}
	if s.state == StateAllNodesLoaded {
		return nil
	}
	if _, err := s.run(ctx, protocol.NewCommand("load_all_nodes")); err != nil {
		return err
	}
	s.commit(opLoadAllNodes, "load_all_nodes")
	return nil
}

// ShowTreeInfo returns the facts of the loaded tree. Only the first call per
// loaded tree reaches the engine unless a shared store already knows the file.
func (s *Session) ShowTreeInfo(ctx context.Context) (domain.TreeInfo, error) {
	if err := s.begin(opTreeQuery, "show_tree_info"); err != nil {
		return domain.TreeInfo{}, err
	}
	if info, ok := s.lookupCache(ctx); ok {
		return info, nil
	}

	lines, err := s.run(ctx, protocol.NewCommand("show_tree_info"))
	if err != nil {
		return domain.TreeInfo{}, err
	}
	info, err := parseTreeInfo(lines)
	if err != nil {
		return domain.TreeInfo{}, err
	}
	s.fillCache(ctx, info)
	info, _ = s.cache.get()
	return info, nil
}

// ShowAllLines returns every line of the loaded tree. The bare root marker
// the engine prints first is skipped. When a line does not parse, the lines
// parsed before it are returned inside a *domain.PartialResultError.
func (s *Session) ShowAllLines(ctx context.Context, opts ...line.Option) ([]line.Line, error) {
	if err := s.begin(opTreeQuery, "show_all_lines"); err != nil {
		return nil, err
	}
	raw, err := s.run(ctx, protocol.NewCommand("show_all_lines"))
	if err != nil {
		return nil, err
	}
	s.cache.setLines(raw)

	out := make([]line.Line, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" || r == "r" {
			continue
		}
		l, err := s.grammar.Parse(r, opts...)
		if err != nil {
			return out, &domain.PartialResultError{Parsed: out, FailingRaw: r, Err: err}
		}
		out = append(out, l)
	}
	return out, nil
}

// AllLines loads every node and returns the tree's lines with the effective
// stack attached, so all-in lines report as terminal.
func (s *Session) AllLines(ctx context.Context) ([]line.Line, error) {
	if err := s.LoadAllNodes(ctx); err != nil {
		return nil, err
	}
	stack, err := s.ShowEffectiveStack(ctx)
	if err != nil {
		return nil, err
	}
	return s.ShowAllLines(ctx, line.WithEffectiveStack(stack))
}

// ShowEffectiveStack returns the effective stack of the loaded tree.
func (s *Session) ShowEffectiveStack(ctx context.Context) (int, error) {
	if err := s.begin(opTreeQuery, "show_effective_stack"); err != nil {
		return 0, err
	}
	lines, err := s.run(ctx, protocol.NewCommand("show_effective_stack"))
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, &domain.ResponseParseError{Verb: "show_effective_stack", Reason: "empty response"}
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return 0, &domain.ResponseParseError{Verb: "show_effective_stack", Reason: err.Error(), Raw: lines}
	}
	return n, nil
}

// IsReady round trips the no-op handshake command.
func (s *Session) IsReady(ctx context.Context) error {
	if err := s.begin(opCommand, "is_ready"); err != nil {
		return err
	}
	_, err := s.run(ctx, protocol.NewCommand("is_ready"))
	return err
}

// Echo asks the engine to print args back.
func (s *Session) Echo(ctx context.Context, args ...string) (string, error) {
	if err := s.begin(opCommand, "echo"); err != nil {
		return "", err
	}
	lines, err := s.run(ctx, protocol.NewCommand("echo", args...))
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// ShowHandOrder returns the engine's canonical ordering of the 1326 hands.
func (s *Session) ShowHandOrder(ctx context.Context) ([]string, error) {
	if err := s.begin(opCommand, "show_hand_order"); err != nil {
		return nil, err
	}
	lines, err := s.run(ctx, protocol.NewCommand("show_hand_order"))
	if err != nil {
		return nil, err
	}
	return strings.Fields(strings.Join(lines, " ")), nil
}

// ErrManagedVerb is returned by Raw for verbs whose effects the session
// tracks itself.
var ErrManagedVerb = errors.New("verb is managed by the session")

var managedVerbs = map[string]string{
	"load_tree":      "LoadTree",
	"load_all_nodes": "LoadAllNodes",
	"set_end_string": "",
	"exit":           "Close",
}

// Raw sends any other command and returns its payload. It gives
// collaborators access to the engine without a typed wrapper.
func (s *Session) Raw(ctx context.Context, verb string, args ...string) ([]string, error) {
	if use, ok := managedVerbs[verb]; ok {
		if use != "" {
			return nil, fmt.Errorf("%w: use %s", ErrManagedVerb, use)
		}
		return nil, fmt.Errorf("%w: %s", ErrManagedVerb, verb)
	}
	if err := s.begin(opCommand, verb); err != nil {
		return nil, err
	}
	return s.run(ctx, protocol.NewCommand(verb, args...))
}
