package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/pious/internal/testutils/fakepio"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/aretw0/pious/pkg/protocol"
	"github.com/aretw0/pious/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tree := filepath.Join(t.TempDir(), "QsJh2h.cfr")
	require.NoError(t, os.WriteFile(tree, []byte("tree"), 0o644))

	cfg := session.DefaultConfig("")
	cfg.CommandTimeout = time.Second
	cfg.StartTimeout = 2 * time.Second
	pool := session.NewPool(1, func(ctx context.Context) (*session.Session, error) {
		stdin, stdout := fakepio.New().Pipe()
		return session.Attach(ctx, protocol.NewConn(stdin, stdout), cfg)
	})
	t.Cleanup(func() { _ = pool.Close(context.Background()) })
	return NewServer(pool, WithTree(tree)), tree
}

func TestParseLine(t *testing.T) {
	s := NewServer(nil)
	ctx := context.Background()

	got, err := s.handleParseLine(ctx, mcp.CallToolRequest{}, ParseLineArgs{Line: "c:b30:b90"})
	require.NoError(t, err)
	assert.Equal(t, "r:0:c:b30:b90", got.Line)
	assert.Equal(t, "flop", got.Street)
	assert.True(t, got.InPosition)
	assert.Equal(t, 2, got.NumBets)

	_, err = s.handleParseLine(ctx, mcp.CallToolRequest{}, ParseLineArgs{Line: "r:0:q"})
	assert.Error(t, err)
	_, err = s.handleParseLine(ctx, mcp.CallToolRequest{}, ParseLineArgs{Line: "r:0", StartingStreet: "sixth"})
	assert.Error(t, err)
}

func TestTreeInfo(t *testing.T) {
	s, _ := newTestServer(t)
	info, err := s.handleTreeInfo(context.Background(), mcp.CallToolRequest{}, TreeArgs{})
	require.NoError(t, err)
	assert.Equal(t, 60, info.Pot)
	assert.Equal(t, []string{"Qs", "Jh", "2h"}, info.Board)
}

func TestAllLines(t *testing.T) {
	s, tree := newTestServer(t)
	ctx := context.Background()

	all, err := s.handleAllLines(ctx, mcp.CallToolRequest{}, AllLinesArgs{Tree: tree})
	require.NoError(t, err)
	assert.Len(t, all.Lines, len(fakepio.Lines)-1)

	turn, err := s.handleAllLines(ctx, mcp.CallToolRequest{}, AllLinesArgs{Street: "turn"})
	require.NoError(t, err)
	require.NotEmpty(t, turn.Lines)
	for _, l := range turn.Lines {
		assert.Equal(t, "turn", l.Street, l.Line)
	}
}

func TestShowNode(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleShowNode(ctx, mcp.CallToolRequest{}, ShowNodeArgs{NodeID: "r:0:c", Children: true})
	require.NoError(t, err)
	assert.Equal(t, domain.NodeIPDecision, resp.Node.Type)
	assert.Len(t, resp.Children, resp.Node.Children)

	_, err = s.handleShowNode(ctx, mcp.CallToolRequest{}, ShowNodeArgs{NodeID: "r:0:b999"})
	var lookup *domain.NodeLookupError
	assert.ErrorAs(t, err, &lookup)
}

func TestNoEngine(t *testing.T) {
	s := NewServer(nil)
	_, err := s.handleTreeInfo(context.Background(), mcp.CallToolRequest{}, TreeArgs{Tree: "x.cfr"})
	assert.Error(t, err)
}
