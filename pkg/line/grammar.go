package line

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/pious/pkg/cards"
)

// Class is what a token rule yields before the parser looks at the surrounding
// segment. Passive tokens become a check or a call, aggressive tokens a bet or a
// raise.
type Class string

const (
	ClassPassive    Class = "passive"
	ClassAggressive Class = "aggressive"
	ClassFold       Class = "fold"
	ClassDeal       Class = "deal"
)

// Capture group names a rule pattern may define.
const (
	GroupAmount = "amount"
	GroupCard   = "card"
)

// Rule maps a token pattern to an action class.
// Aggressive rules must capture an "amount" group; deal rules must capture "card".
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Class   Class
}

// CompileRule builds a Rule from its textual form. The pattern is anchored.
func CompileRule(name, pattern string, class Class) (Rule, error) {
	if !strings.HasPrefix(pattern, "^") {
		pattern = "^" + pattern
	}
	if !strings.HasSuffix(pattern, "$") {
		pattern += "$"
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s: %w", name, err)
	}
	r := Rule{Name: name, Pattern: re, Class: class}
	if err := r.validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (r Rule) validate() error {
	if r.Pattern == nil {
		return fmt.Errorf("rule %s: missing pattern", r.Name)
	}
	switch r.Class {
	case ClassAggressive:
		if r.Pattern.SubexpIndex(GroupAmount) < 0 {
			return fmt.Errorf("rule %s: aggressive rules need an %q group", r.Name, GroupAmount)
		}
	case ClassDeal:
		if r.Pattern.SubexpIndex(GroupCard) < 0 {
			return fmt.Errorf("rule %s: deal rules need a %q group", r.Name, GroupCard)
		}
	case ClassPassive, ClassFold:
	default:
		return fmt.Errorf("rule %s: unknown class %q", r.Name, r.Class)
	}
	return nil
}

// Grammar is the token vocabulary of one engine version.
type Grammar struct {
	Delimiter string
	Root      string
	Rules     []Rule

	rootTokens int
}

// DefaultDelimiter and DefaultRoot match PioSOLVER's node identifiers.
const (
	DefaultDelimiter = ":"
	DefaultRoot      = "r:0"
)

// DefaultRules is the PioSOLVER action vocabulary.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "check_or_call", Pattern: regexp.MustCompile(`^c$`), Class: ClassPassive},
		{Name: "bet_or_raise", Pattern: regexp.MustCompile(`^b(?P<amount>0|[1-9][0-9]*)$`), Class: ClassAggressive},
		{Name: "fold", Pattern: regexp.MustCompile(`^f$`), Class: ClassFold},
		{Name: "deal", Pattern: regexp.MustCompile(`^(?P<card>[2-9TJQKA][shdc])$`), Class: ClassDeal},
	}
}

// NewGrammar validates and builds a grammar.
func NewGrammar(delimiter, root string, rules ...Rule) (*Grammar, error) {
	if delimiter == "" {
		return nil, errors.New("grammar: empty delimiter")
	}
	if root == "" {
		return nil, errors.New("grammar: empty root marker")
	}
	if len(rules) == 0 {
		return nil, errors.New("grammar: no rules")
	}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("grammar: %w", err)
		}
	}
	return &Grammar{
		Delimiter:  delimiter,
		Root:       root,
		Rules:      rules,
		rootTokens: len(strings.Split(root, delimiter)),
	}, nil
}

var defaultGrammar = func() *Grammar {
	g, err := NewGrammar(DefaultDelimiter, DefaultRoot, DefaultRules()...)
	if err != nil {
		panic(err)
	}
	return g
}()

// DefaultGrammar returns the shared PioSOLVER grammar. It must not be mutated;
// use With to derive an extended one.
func DefaultGrammar() *Grammar { return defaultGrammar }

// With returns a copy of g with extra rules appended. Earlier rules win.
func (g *Grammar) With(rules ...Rule) (*Grammar, error) {
	all := make([]Rule, 0, len(g.Rules)+len(rules))
	all = append(all, g.Rules...)
	all = append(all, rules...)
	return NewGrammar(g.Delimiter, g.Root, all...)
}

// classify finds the first rule matching tok.
func (g *Grammar) classify(tok string) (Rule, []string, bool) {
	for _, r := range g.Rules {
		if m := r.Pattern.FindStringSubmatch(tok); m != nil {
			return r, m, true
		}
	}
	return Rule{}, nil, false
}

// token decodes a matched token into an Action carrying only its class payload.
func (g *Grammar) token(r Rule, m []string, tok string) (Action, error) {
	a := Action{token: tok}
	switch r.Class {
	case ClassPassive:
		a.Kind = KindCheck
	case ClassFold:
		a.Kind = KindFold
	case ClassAggressive:
		n, err := strconv.Atoi(m[r.Pattern.SubexpIndex(GroupAmount)])
		if err != nil || n < 0 {
			return Action{}, fmt.Errorf("bad amount in %q", tok)
		}
		a.Kind = KindBet
		a.Amount = n
	case ClassDeal:
		c, err := cards.Parse(m[r.Pattern.SubexpIndex(GroupCard)])
		if err != nil {
			return Action{}, err
		}
		a.Kind = KindDeal
		a.Card = c
	}
	return a, nil
}

// Parse parses raw with the default grammar.
func Parse(raw string, opts ...Option) (Line, error) {
	return defaultGrammar.Parse(raw, opts...)
}

// MustParse is like Parse but panics on error.
func MustParse(raw string, opts ...Option) Line {
	l, err := Parse(raw, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Parse turns raw into a Line. See the package documentation for the grammar.
func (g *Grammar) Parse(raw string, opts ...Option) (Line, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}

	if raw != g.Root && !strings.HasPrefix(raw, g.Root+g.Delimiter) {
		return Line{}, &ParseError{Raw: raw, Position: 0, Reason: fmt.Sprintf("line must start with %q", g.Root)}
	}
	var tokens []string
	if raw != g.Root {
		tokens = strings.Split(raw[len(g.Root)+len(g.Delimiter):], g.Delimiter)
	}
	return g.build(raw, tokens, cfg)
}

// build runs the segmenting state machine over the tokens following the root.
func (g *Grammar) build(raw string, tokens []string, cfg options) (Line, error) {
	l := Line{
		grammar:  g,
		opts:     cfg,
		segments: [][]Action{{{Kind: KindRoot, token: g.Root}}},
		closed:   true,
	}
	maxSegments := 1 + int(River-cfg.startingStreet) + 1

	fail := func(i int, tok, reason string) (Line, error) {
		return Line{}, &ParseError{Raw: raw, Position: g.rootTokens + i, Token: tok, Reason: reason}
	}

	for i, tok := range tokens {
		if tok == "" {
			return fail(i, tok, "empty token")
		}
		rule, m, ok := g.classify(tok)
		if !ok {
			return fail(i, tok, "unrecognized token")
		}
		a, err := g.token(rule, m, tok)
		if err != nil {
			return fail(i, tok, err.Error())
		}
		if l.folded {
			return fail(i, tok, "action after fold")
		}

		if a.Kind == KindDeal {
			if !l.closed {
				return fail(i, tok, "card dealt before the street closed")
			}
			if len(l.segments) < 2 {
				return fail(i, tok, "the first street's cards belong to the board")
			}
			if len(l.segments) >= maxSegments {
				return fail(i, tok, "card dealt after the final street")
			}
			l.segments = append(l.segments, []Action{a})
			l.closed = false
			l.dealt = true
			continue
		}

		if l.closed {
			if len(l.segments) >= maxSegments {
				return fail(i, tok, "action after the final street closed")
			}
			l.segments = append(l.segments, nil)
			l.closed = false
		}
		cur := len(l.segments) - 1
		seg := l.segments[cur]
		last, hasBet := lastAggression(seg)

		switch a.Kind {
		case KindCheck:
			if hasBet {
				a.Kind = KindCall
			}
		case KindBet:
			if hasBet {
				if a.Amount <= last.Amount {
					return fail(i, tok, fmt.Sprintf("raise to %d does not exceed %d", a.Amount, last.Amount))
				}
				a.Kind = KindRaise
			} else if prior, ok := committed(l.segments[:cur]); ok && a.Amount <= prior {
				return fail(i, tok, fmt.Sprintf("bet to %d does not exceed the %d already committed", a.Amount, prior))
			}
		}

		seg = append(seg, a)
		l.segments[cur] = seg

		switch {
		case a.Kind == KindFold:
			l.folded = true
		case a.IsPassive() && playerActions(seg) > 1:
			l.closed = true
		}
	}
	return l, nil
}

// committed returns the cumulative amount each player put in on earlier
// streets, i.e. the last bet or raise before the current segment.
func committed(segments [][]Action) (int, bool) {
	for i := len(segments) - 1; i >= 0; i-- {
		if a, ok := lastAggression(segments[i]); ok {
			return a.Amount, true
		}
	}
	return 0, false
}

// lastAggression returns the most recent bet or raise of the segment. In an open
// segment that action is still unanswered.
func lastAggression(seg []Action) (Action, bool) {
	for i := len(seg) - 1; i >= 0; i-- {
		if seg[i].IsAggressive() {
			return seg[i], true
		}
	}
	return Action{}, false
}

func playerActions(seg []Action) int {
	n := 0
	for _, a := range seg {
		if a.IsPlayer() {
			n++
		}
	}
	return n
}
