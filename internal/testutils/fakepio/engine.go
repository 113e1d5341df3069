// Package fakepio is a scriptable stand-in for a PioSOLVER process. It speaks
// the same line protocol over any reader/writer pair and serves a small fixed
// flop tree.
package fakepio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/pious/pkg/cards"
	"github.com/aretw0/pious/pkg/line"
	"github.com/aretw0/pious/pkg/protocol"
)

// Board is the flop of the served tree.
const Board = "Qs Jh 2h"

// EffectiveStack is the stack reported for the served tree.
const EffectiveStack = 970

// Lines is the line inventory reported by show_all_lines, root marker first.
var Lines = []string{
	"r",
	"r:0",
	"r:0:c",
	"r:0:c:c",
	"r:0:c:b30",
	"r:0:c:b30:c",
	"r:0:c:b30:f",
	"r:0:c:b30:b90",
	"r:0:c:b30:b90:c",
	"r:0:c:b30:b90:f",
	"r:0:b40",
	"r:0:b40:c",
	"r:0:b40:f",
	"r:0:c:c:c",
	"r:0:c:c:c:c",
	"r:0:c:c:c:b60",
	"r:0:c:c:c:b60:c",
	"r:0:c:c:c:b60:f",
	"r:0:c:c:b45",
	"r:0:c:c:b45:c",
	"r:0:c:c:b45:f",
}

// Handler answers one verb with payload lines or an engine error.
type Handler func(args []string) ([]string, error)

// Engine is the fake solver. Handlers may be replaced before Serve.
type Engine struct {
	mu       sync.Mutex
	handlers map[string]Handler
	hang     map[string]bool
	commands []string
	tokens   protocol.Tokens

	endString string
	tree      string
	allNodes  bool
}

// New returns an engine with the default command set.
func New() *Engine {
	e := &Engine{
		hang:      make(map[string]bool),
		tokens:    protocol.DefaultTokens(),
		endString: protocol.DefaultTokens().EndString,
	}
	e.handlers = map[string]Handler{
		"is_ready":             none,
		"set_threads":          none,
		"set_recalc_accuracy":  none,
		"set_accuracy":         none,
		"set_always_recalc":    none,
		"set_info_freq":        none,
		"echo":                 echo,
		"load_tree":            e.loadTree,
		"load_all_nodes":       e.loadAllNodes,
		"show_tree_info":       e.showTreeInfo,
		"show_all_lines":       e.showAllLines,
		"show_node":            e.showNode,
		"show_children":        e.showChildren,
		"show_effective_stack": e.showEffectiveStack,
		"show_hand_order":      showHandOrder,
		"show_strategy":        e.showStrategy,
	}
	return e
}

// Handle replaces the handler of verb.
func (e *Engine) Handle(verb string, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[verb] = h
}

// Hang makes verb never answer.
func (e *Engine) Hang(verb string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hang[verb] = true
}

// Commands returns every line received so far.
func (e *Engine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.commands...)
}

// Count returns how often verb was received.
func (e *Engine) Count(verb string) int {
	n := 0
	for _, c := range e.Commands() {
		if c == verb || strings.HasPrefix(c, verb+" ") {
			n++
		}
	}
	return n
}

// Serve answers commands read from r until "exit" or EOF.
func (e *Engine) Serve(r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		fields := strings.Fields(raw)
		verb, args := fields[0], fields[1:]

		e.mu.Lock()
		e.commands = append(e.commands, raw)
		h, known := e.handlers[verb]
		hang := e.hang[verb]
		e.mu.Unlock()

		if verb == "exit" {
			return nil
		}
		if hang {
			continue
		}

		var out []string
		switch {
		case verb == "set_end_string":
			if len(args) != 1 {
				out = []string{"ERROR: set_end_string takes one argument"}
				break
			}
			e.endString = args[0]
			out = []string{e.tokens.Ack(verb)}
		case !known:
			out = []string{fmt.Sprintf("ERROR: unknown command %s", verb)}
		default:
			payload, err := h(args)
			if err != nil {
				out = []string{"ERROR: " + err.Error()}
				break
			}
			out = payload
			if e.tokens.RequiresAck(verb) {
				out = append(out, e.tokens.Ack(verb))
			}
		}
		for _, l := range out {
			fmt.Fprintln(bw, l)
		}
		fmt.Fprintln(bw, e.endString)
		if err := bw.Flush(); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Pipe starts the engine on in-memory pipes. The returned writer is the
// engine's stdin, the reader its stdout. Closing stdin stops the engine.
func (e *Engine) Pipe() (io.WriteCloser, io.Reader) {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	go func() {
		err := e.Serve(inR, outW)
		_ = inR.Close()
		_ = outW.CloseWithError(err)
	}()
	return inW, outR
}

func none([]string) ([]string, error) { return nil, nil }

func echo(args []string) ([]string, error) {
	return []string{strings.Join(args, " ")}, nil
}

func (e *Engine) loadTree(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("load_tree needs a path")
	}
	path := strings.Trim(args[0], `"`)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("could not open file %s", path)
	}
	e.tree = path
	e.allNodes = len(args) > 1 && args[1] == "full"
	return nil, nil
}

func (e *Engine) requireTree() error {
	if e.tree == "" {
		return errors.New("no tree loaded")
	}
	return nil
}

func (e *Engine) loadAllNodes([]string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	e.allNodes = true
	return []string{"loaded all nodes"}, nil
}

func (e *Engine) showTreeInfo([]string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	return []string{
		"#Board#" + Board,
		"#Pot#60",
		fmt.Sprintf("#EffectiveStacks#%d", EffectiveStack),
		"#AllinThreshold#67",
		"#MergingThreshold#0",
		"#Range0#AA,KK,QQ,AKs:0.5",
		"#Range1#JJ,TT,AQo",
		"#FlopConfig.BetSize#50 75",
		"#FlopConfig.RaiseSize#60,ai",
		"#Rake.Enabled#False",
		"#Rake.Fraction#0.05",
	}, nil
}

func (e *Engine) showAllLines([]string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	return append([]string(nil), Lines...), nil
}

func (e *Engine) showEffectiveStack([]string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	return []string{fmt.Sprint(EffectiveStack)}, nil
}

func showHandOrder([]string) ([]string, error) {
	deck := cards.Deck()
	hands := make([]string, 0, 1326)
	for i := len(deck) - 1; i >= 0; i-- {
		for j := len(deck) - 1; j > i; j-- {
			hands = append(hands, deck[i].String()+deck[j].String())
		}
	}
	return []string{strings.Join(hands, " ")}, nil
}

// known reports whether the line of nodeID is part of the tree.
func known(nodeID string) (line.Line, bool) {
	l, err := line.NodeIDToLine(nodeID)
	if err != nil {
		return line.Line{}, false
	}
	s := l.String()
	for _, candidate := range Lines {
		if candidate == s {
			return l, true
		}
	}
	return line.Line{}, false
}

func children(l line.Line) []string {
	var out []string
	prefix := l.String() + ":"
	for _, candidate := range Lines {
		if strings.HasPrefix(candidate, prefix) && !strings.Contains(candidate[len(prefix):], ":") {
			out = append(out, candidate)
		}
	}
	return out
}

func (e *Engine) nodeBlock(nodeID string) ([]string, bool) {
	l, ok := known(nodeID)
	if !ok {
		return nil, false
	}
	kids := children(l)

	typ := "OOP_DEC"
	switch {
	case len(kids) == 0:
		typ = "END_NODE"
	case l.IsClosed():
		typ = "SPLIT_NODE"
	case l.IsInPosition():
		typ = "IP_DEC"
	}

	board := Board
	if p, err := line.Parse(nodeID); err == nil {
		for _, seg := range p.StreetsAsActions() {
			for _, a := range seg {
				if a.Kind == line.KindDeal {
					board += " " + a.Card.String()
				}
			}
		}
	}

	oop, ip := 0, 0
	if streets := l.StreetsAsActions(); len(streets) > 0 {
		for _, seg := range streets[1:] {
			players := 0
			for _, a := range seg {
				if !a.IsPlayer() {
					continue
				}
				if a.IsAggressive() || a.Kind == line.KindCall {
					amt := a.Amount
					if a.Kind == line.KindCall {
						amt = lastBet(seg)
					}
					if players%2 == 0 {
						oop = amt
					} else {
						ip = amt
					}
				}
				players++
			}
		}
	}

	return []string{
		nodeID,
		typ,
		board,
		fmt.Sprintf("%d %d 60", oop, ip),
		fmt.Sprintf("%d children", len(kids)),
		"flags: PIO_CFR",
	}, true
}

func lastBet(seg []line.Action) int {
	amt := 0
	for _, a := range seg {
		if a.IsAggressive() {
			amt = a.Amount
		}
	}
	return amt
}

func (e *Engine) showNode(args []string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("show_node needs a node id")
	}
	block, ok := e.nodeBlock(args[0])
	if !ok {
		return nil, fmt.Errorf("node %s not found", args[0])
	}
	return block, nil
}

func (e *Engine) showChildren(args []string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("show_children needs a node id")
	}
	l, ok := known(args[0])
	if !ok {
		return nil, fmt.Errorf("node %s not found", args[0])
	}
	var out []string
	for i, kid := range children(l) {
		if i > 0 {
			out = append(out, "")
		}
		block, _ := e.nodeBlock(kid)
		out = append(out, fmt.Sprintf("child %d:", i))
		out = append(out, block...)
	}
	return out, nil
}

func (e *Engine) showStrategy(args []string) ([]string, error) {
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("show_strategy needs a node id")
	}
	l, ok := known(args[0])
	if !ok {
		return nil, fmt.Errorf("node %s not found", args[0])
	}
	kids := children(l)
	if len(kids) == 0 {
		return nil, fmt.Errorf("node %s has no strategy", args[0])
	}
	out := make([]string, len(kids))
	share := 1.0 / float64(len(kids))
	for i := range kids {
		out[i] = strings.TrimSpace(strings.Repeat(fmt.Sprintf("%.3f ", share), 4))
	}
	return out, nil
}
