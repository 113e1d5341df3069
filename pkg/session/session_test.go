package session_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/pious/internal/testutils/fakepio"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/protocol"
	"github.com/aretw0/pious/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() session.Config {
	cfg := session.DefaultConfig("")
	cfg.CommandTimeout = time.Second
	cfg.StartTimeout = 2 * time.Second
	return cfg
}

func attach(t *testing.T, eng *fakepio.Engine, opts ...session.Option) *session.Session {
	t.Helper()
	stdin, stdout := eng.Pipe()
	s, err := session.Attach(context.Background(), protocol.NewConn(stdin, stdout), testConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func writeTree(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAttach_Handshake(t *testing.T) {
	eng := fakepio.New()
	s := attach(t, eng)

	assert.Equal(t, session.StateFresh, s.State())
	assert.Equal(t, []string{
		"set_end_string END",
		"set_threads 0",
		"set_recalc_accuracy 0.0025 0.001 0.005",
		"set_accuracy 20",
		"set_always_recalc 0 60000",
		"is_ready",
	}, eng.Commands())
}

func TestAttach_HandshakeFailures(t *testing.T) {
	t.Run("Timeout", func(t *testing.T) {
		eng := fakepio.New()
		eng.Hang("is_ready")
		stdin, stdout := eng.Pipe()
		cfg := testConfig()
		cfg.StartTimeout = 100 * time.Millisecond

		_, err := session.Attach(context.Background(), protocol.NewConn(stdin, stdout), cfg)
		var startErr *domain.StartError
		require.ErrorAs(t, err, &startErr)
		assert.Contains(t, startErr.Reason, "is_ready")
	})

	t.Run("Rejected Setting", func(t *testing.T) {
		eng := fakepio.New()
		eng.Handle("set_accuracy", func([]string) ([]string, error) { return nil, errors.New("bad accuracy") })
		stdin, stdout := eng.Pipe()

		_, err := session.Attach(context.Background(), protocol.NewConn(stdin, stdout), testConfig())
		var startErr *domain.StartError
		require.ErrorAs(t, err, &startErr)
		var engErr *domain.EngineError
		require.ErrorAs(t, err, &engErr)
		assert.Equal(t, "bad accuracy", engErr.Message)
	})
}

func TestShowNode_FreshSessionDoesNoIO(t *testing.T) {
	eng := fakepio.New()
	s := attach(t, eng)
	before := len(eng.Commands())

	_, err := s.ShowNode(context.Background(), "r:0")
	var pre *domain.PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, "no tree loaded", pre.Reason)

	_, err = s.ShowTreeInfo(context.Background())
	require.ErrorAs(t, err, &pre)
	assert.ErrorAs(t, s.LoadAllNodes(context.Background()), &pre)

	assert.Len(t, eng.Commands(), before)
}

func TestLoadTree(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing File", func(t *testing.T) {
		eng := fakepio.New()
		s := attach(t, eng)

		err := s.LoadTree(ctx, filepath.Join(t.TempDir(), "missing.cfr"))
		var loadErr *domain.TreeLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, 0, eng.Count("load_tree"))
		assert.Equal(t, session.StateFresh, s.State())
	})

	t.Run("Loaded", func(t *testing.T) {
		eng := fakepio.New()
		s := attach(t, eng)
		path := writeTree(t, "flop.cfr", "tree")

		require.NoError(t, s.LoadTree(ctx, path))
		assert.Equal(t, session.StateTreeLoaded, s.State())
		got, ok := s.TreePath()
		assert.True(t, ok)
		assert.Equal(t, path, got)
		assert.True(t, s.Partial())
		assert.Contains(t, eng.Commands(), `load_tree "`+path+`"`)
	})

	t.Run("Full Load Is Complete", func(t *testing.T) {
		eng := fakepio.New()
		s := attach(t, eng)
		path := writeTree(t, "flop.cfr", "tree")

		require.NoError(t, s.LoadTree(ctx, path, session.WithLoadMode(session.LoadFull)))
		assert.False(t, s.Partial())
		assert.Contains(t, eng.Commands(), `load_tree "`+path+`" full`)

		require.NoError(t, s.LoadTree(ctx, path, session.WithLoadMode(session.LoadFast), session.WithPartialSave(false)))
		assert.False(t, s.Partial())
	})

	t.Run("Engine Rejects", func(t *testing.T) {
		eng := fakepio.New()
		eng.Handle("load_tree", func([]string) ([]string, error) { return nil, errors.New("corrupt file") })
		s := attach(t, eng)

		err := s.LoadTree(ctx, writeTree(t, "bad.cfr", "x"))
		var loadErr *domain.TreeLoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "corrupt file", loadErr.Message)
		assert.Equal(t, session.StateFresh, s.State())
	})

	t.Run("Unknown Mode", func(t *testing.T) {
		s := attach(t, fakepio.New())
		err := s.LoadTree(ctx, writeTree(t, "a.cfr", "x"), session.WithLoadMode("lazy"))
		var loadErr *domain.TreeLoadError
		assert.ErrorAs(t, err, &loadErr)
	})
}

func TestShowTreeInfo(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "flop.cfr", "tree")))

	info, err := s.ShowTreeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Qs", "Jh", "2h"}, info.Board)
	assert.Equal(t, 60, info.Pot)
	assert.Equal(t, fakepio.EffectiveStack, info.EffectiveStack)
	assert.Equal(t, 67, info.AllinThreshold)
	assert.Equal(t, []string{"AA", "KK", "QQ", "AKs:0.5"}, info.RangeOOP)
	assert.Equal(t, []string{"JJ", "TT", "AQo"}, info.RangeIP)
	assert.Equal(t, []any{50, 75}, info.Fields["FlopConfig.BetSize"])
	assert.Equal(t, []any{60, "ai"}, info.Fields["FlopConfig.RaiseSize"])
	assert.Equal(t, false, info.Fields["Rake.Enabled"])
	assert.Equal(t, 0.05, info.Fields["Rake.Fraction"])

	info.Board[0] = "As"
	again, err := s.ShowTreeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Qs", again.Board[0], "cached value must not be shared with callers")
	assert.Equal(t, 1, eng.Count("show_tree_info"))
}

func TestShowTreeInfo_InvalidatedByLoadTree(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)

	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))
	_, err := s.ShowTreeInfo(ctx)
	require.NoError(t, err)

	require.NoError(t, s.LoadTree(ctx, writeTree(t, "b.cfr", "b")))
	_, err = s.ShowTreeInfo(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, eng.Count("show_tree_info"))
}

func TestShowTreeInfo_MissingKeys(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	eng.Handle("show_tree_info", func([]string) ([]string, error) {
		return []string{"#Board#Qs Jh 2h", "#Pot#60", "garbage"}, nil
	})
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	_, err := s.ShowTreeInfo(ctx)
	var parseErr *domain.ResponseParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "missing EffectiveStacks", parseErr.Reason)
	assert.Equal(t, session.StateTreeLoaded, s.State())
}

func TestShowTreeInfo_BadBoard(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	eng.Handle("show_tree_info", func([]string) ([]string, error) {
		return []string{"#Board#Qs Qs 2h", "#Pot#60", "#EffectiveStacks#970"}, nil
	})
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	_, err := s.ShowTreeInfo(ctx)
	var parseErr *domain.ResponseParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestShowAllLines(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	lines, err := s.ShowAllLines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, len(fakepio.Lines)-1)
	assert.Equal(t, "r:0", lines[0].String())
	assert.True(t, lines[0].IsRoot())

	info, err := s.ShowTreeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakepio.Lines, info.Lines)
}

func TestShowAllLines_Partial(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	eng.Handle("show_all_lines", func([]string) ([]string, error) {
		return []string{"r", "r:0", "r:0:c", "r:0:c:x", "r:0:b40"}, nil
	})
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	lines, err := s.ShowAllLines(ctx)
	var partial *domain.PartialResultError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "r:0:c:x", partial.FailingRaw)
	require.Len(t, partial.Parsed, 2)
	assert.Len(t, lines, 2)

	var parseErr *line.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, session.StateTreeLoaded, s.State())
}

func TestAllLines(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	lines, err := s.AllLines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, len(fakepio.Lines)-1)
	assert.Equal(t, session.StateAllNodesLoaded, s.State())

	_, err = s.AllLines(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, eng.Count("load_all_nodes"), "load_all_nodes is sent once per tree")

	require.NoError(t, s.LoadTree(ctx, writeTree(t, "b.cfr", "b")))
	assert.Equal(t, session.StateTreeLoaded, s.State())
	require.NoError(t, s.LoadAllNodes(ctx))
	assert.Equal(t, 2, eng.Count("load_all_nodes"))
}

func TestShowNode(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))

	root, err := s.ShowNode(ctx, "r:0")
	require.NoError(t, err, "the root is addressable before load_all_nodes")
	assert.Equal(t, domain.NodeInfo{
		ID:       "r:0",
		Type:     domain.NodeOOPDecision,
		Board:    []string{"Qs", "Jh", "2h"},
		Pot:      [3]int{0, 0, 60},
		Children: 2,
		Flags:    []string{"PIO_CFR"},
	}, root)

	_, err = s.ShowNode(ctx, "r:0:c")
	var pre *domain.PreconditionError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, "load_all_nodes required", pre.Reason)
	assert.Equal(t, 1, eng.Count("show_node"))

	require.NoError(t, s.LoadAllNodes(ctx))
	node, err := s.ShowNode(ctx, "r:0:c")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeIPDecision, node.Type)
	pos, ok := node.Position()
	assert.True(t, ok)
	assert.Equal(t, "IP", pos)
	assert.Equal(t, "c", node.LastAction())

	l, err := s.NodeLine(node)
	require.NoError(t, err)
	assert.Equal(t, "r:0:c", l.String())
}

func TestShowNode_Failures(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a"), session.WithLoadMode(session.LoadFull)))

	_, err := s.ShowNode(ctx, "r:0:b999")
	var lookup *domain.NodeLookupError
	require.ErrorAs(t, err, &lookup)
	assert.Equal(t, "r:0:b999", lookup.NodeID)

	before := eng.Count("show_node")
	_, err = s.ShowNode(ctx, "r:0:c:x")
	var parseErr *line.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, before, eng.Count("show_node"), "invalid ids are not sent")

	eng.Handle("show_node", func([]string) ([]string, error) { return []string{"r:0:c", "IP_DEC"}, nil })
	_, err = s.ShowNode(ctx, "r:0:c")
	var respErr *domain.ResponseParseError
	assert.ErrorAs(t, err, &respErr)
	assert.Equal(t, session.StateTreeLoaded, s.State(), "parse failures do not change state")
}

func TestShowChildrenAndStrategy(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)
	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a"), session.WithLoadMode(session.LoadFull)))

	kids, err := s.ShowChildren(ctx, "r:0")
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, "r:0:c", kids[0].ID)
	assert.Equal(t, "r:0:b40", kids[1].ID)
	assert.Equal(t, domain.NodeIPDecision, kids[1].Type)

	leaf, err := s.ShowChildren(ctx, "r:0:b40:f")
	require.NoError(t, err)
	assert.Empty(t, leaf)

	strat, err := s.ShowStrategy(ctx, "r:0")
	require.NoError(t, err)
	require.Len(t, strat, 2)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, strat[0])
}

func TestGenericCommands(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)

	require.NoError(t, s.IsReady(ctx))

	out, err := s.Echo(ctx, "hello", "pio")
	require.NoError(t, err)
	assert.Equal(t, "hello pio", out)

	hands, err := s.ShowHandOrder(ctx)
	require.NoError(t, err)
	assert.Len(t, hands, 1326)

	_, err = s.Raw(ctx, "load_tree", "x")
	assert.ErrorIs(t, err, session.ErrManagedVerb)

	_, err = s.Raw(ctx, "show_effective_stack")
	var engErr *domain.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, "no tree loaded", engErr.Message)
	assert.Equal(t, session.StateFresh, s.State(), "engine errors do not change state")

	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))
	stack, err := s.ShowEffectiveStack(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakepio.EffectiveStack, stack)
}

func TestTimeoutDegradesSession(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	eng.Hang("echo")
	stdin, stdout := eng.Pipe()
	cfg := testConfig()
	cfg.CommandTimeout = 50 * time.Millisecond
	s, err := session.Attach(ctx, protocol.NewConn(stdin, stdout), cfg)
	require.NoError(t, err)
	defer s.Close(ctx)

	_, err = s.Echo(ctx, "x")
	var violation *domain.ProtocolViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "echo", violation.Verb)
	assert.ErrorIs(t, err, domain.ErrSessionDegraded)
	assert.Equal(t, session.StateDegraded, s.State())

	before := eng.Commands()
	assert.ErrorIs(t, s.IsReady(ctx), domain.ErrSessionDegraded)
	_, err = s.ShowNode(ctx, "r:0")
	assert.ErrorIs(t, err, domain.ErrSessionDegraded)
	assert.Equal(t, before, eng.Commands(), "a degraded session writes nothing")

	require.NoError(t, s.Close(ctx))
	assert.Equal(t, session.StateClosed, s.State())
	assert.NotContains(t, eng.Commands(), "exit")
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	eng := fakepio.New()
	s := attach(t, eng)

	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, session.StateClosed, s.State())

	assert.ErrorIs(t, s.IsReady(ctx), domain.ErrSessionClosed)
	assert.ErrorIs(t, s.LoadTree(ctx, "x.cfr"), domain.ErrSessionClosed)

	require.Eventually(t, func() bool {
		cmds := eng.Commands()
		return len(cmds) > 0 && cmds[len(cmds)-1] == "exit"
	}, time.Second, 10*time.Millisecond)
}

func TestCommandLog(t *testing.T) {
	var buf bytes.Buffer
	s := attach(t, fakepio.New(), session.WithCommandLog(&buf), session.WithLogCapacity(3))

	_, err := s.Echo(context.Background(), "hi")
	require.NoError(t, err)

	entries := s.CommandLog()
	require.Len(t, entries, 3)
	assert.Equal(t, "set_always_recalc 0 60000", entries[0].Command)
	assert.Equal(t, "is_ready", entries[1].Command)
	assert.Equal(t, "echo hi", entries[2].Command)
	assert.Equal(t, []string{"hi"}, entries[2].Response)
	assert.Equal(t, domain.OutcomeOK, entries[2].Outcome)
	assert.Equal(t, []string{"set_always_recalc 0 60000", "is_ready", "echo hi"}, s.Script())

	assert.Contains(t, buf.String(), "[>] set_end_string END\n[<] set_end_string ok!\n")
	assert.Contains(t, buf.String(), "[>] echo hi\n[<] hi\n")
}

func TestHooks(t *testing.T) {
	ctx := context.Background()
	var (
		commands []string
		states   []string
		lookups  []domain.CacheEvent
	)
	hooks := domain.SessionHooks{
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			commands = append(commands, e.Verb+":"+e.Outcome)
		},
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			states = append(states, e.From+">"+e.To)
		},
		OnCacheLookup: func(_ context.Context, e *domain.CacheEvent) {
			lookups = append(lookups, *e)
		},
	}
	s := attach(t, fakepio.New(), session.WithHooks(hooks))

	require.NoError(t, s.LoadTree(ctx, writeTree(t, "a.cfr", "a")))
	_, err := s.ShowTreeInfo(ctx)
	require.NoError(t, err)
	_, err = s.ShowTreeInfo(ctx)
	require.NoError(t, err)

	assert.Contains(t, commands, "is_ready:ok")
	assert.Contains(t, commands, "load_tree:ok")
	assert.Equal(t, []string{"fresh>tree_loaded"}, states)
	assert.Equal(t, []domain.CacheEvent{
		{Tier: "session", Hit: false},
		{Tier: "session", Hit: true},
	}, lookups)
}
