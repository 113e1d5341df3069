package line_test

import (
	"testing"

	"github.com/aretw0/pious/pkg/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrammar_With(t *testing.T) {
	_, err := line.Parse("r:0:c:x")
	require.Error(t, err)

	check, err := line.CompileRule("explicit_check", "x", line.ClassPassive)
	require.NoError(t, err)
	allin, err := line.CompileRule("allin", `a(?P<amount>[0-9]+)`, line.ClassAggressive)
	require.NoError(t, err)

	g, err := line.DefaultGrammar().With(check, allin)
	require.NoError(t, err)

	l, err := g.Parse("r:0:c:x")
	require.NoError(t, err)
	assert.Equal(t, "r:0:c:x", l.String())
	assert.Equal(t, 1, l.CurrentStreet())
	assert.True(t, l.IsClosed())

	l, err = g.Parse("r:0:b30:a1000:c")
	require.NoError(t, err)
	acts := l.StreetsAsActions()[1]
	assert.Equal(t, line.KindRaise, acts[1].Kind)
	assert.Equal(t, 1000, acts[1].Amount)
	assert.Equal(t, "r:0:b30:a1000:c", l.String())

	// The shared default grammar is untouched.
	_, err = line.Parse("r:0:c:x")
	assert.Error(t, err)
}

func TestCompileRule_Validation(t *testing.T) {
	_, err := line.CompileRule("bad_bet", "b[0-9]+", line.ClassAggressive)
	assert.Error(t, err)

	_, err = line.CompileRule("bad_deal", "[AK][sh]", line.ClassDeal)
	assert.Error(t, err)

	_, err = line.CompileRule("bad_class", "z", line.Class("sideways"))
	assert.Error(t, err)

	_, err = line.CompileRule("bad_regex", "(", line.ClassFold)
	assert.Error(t, err)
}

func TestNewGrammar_CustomDelimiter(t *testing.T) {
	g, err := line.NewGrammar("/", "root", line.DefaultRules()...)
	require.NoError(t, err)

	l, err := g.Parse("root/c/b30/c")
	require.NoError(t, err)
	assert.Equal(t, "root/c/b30/c", l.String())
	assert.Equal(t, []string{"root", "c/b30/c"}, l.StreetsAsLines())

	_, err = line.NewGrammar("", "r:0", line.DefaultRules()...)
	assert.Error(t, err)
	_, err = line.NewGrammar(":", "r:0")
	assert.Error(t, err)
}
