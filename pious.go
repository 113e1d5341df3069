package pious

import (
	"context"
	_ "embed"

	"github.com/aretw0/pious/pkg/session"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Start launches the solver executable with the default configuration and
// returns a ready session.
func Start(ctx context.Context, executable string, opts ...session.Option) (*session.Session, error) {
	return session.Start(ctx, session.DefaultConfig(executable), opts...)
}
