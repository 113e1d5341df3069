package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/pious/pkg/cards"
	"github.com/aretw0/pious/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// guessType types a show_tree_info value by its key: bet size configs become
// lists of ints (with "a"/"ai" kept as strings), ranges and the board become
// string lists, anything else a bool, int, float or string.
func guessType(key, value string) any {
	value = strings.TrimSpace(value)
	switch {
	case strings.Contains(key, "Config") && strings.Contains(key, "Size"):
		var out []any
		for _, part := range strings.Split(value, ",") {
			for _, f := range strings.Fields(part) {
				if n, err := strconv.Atoi(f); err == nil {
					out = append(out, n)
				} else {
					out = append(out, f)
				}
			}
		}
		return out
	case strings.Contains(key, "Range"):
		if value == "" {
			return []string{}
		}
		return strings.Split(value, ",")
	case key == "Board":
		return strings.Fields(value)
	}
	return literal(value)
}

func literal(v string) any {
	switch v {
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

var requiredTreeKeys = []string{"Board", "Pot", "EffectiveStacks"}

// parseTreeInfo decodes "#Key#Value" lines. Lines of any other shape are
// ignored.
func parseTreeInfo(lines []string) (domain.TreeInfo, error) {
	raw := make(map[string]any)
	for _, l := range lines {
		parts := strings.Split(strings.TrimSpace(l), "#")
		if len(parts) != 3 || parts[0] != "" || parts[1] == "" {
			continue
		}
		raw[parts[1]] = guessType(parts[1], parts[2])
	}
	for _, k := range requiredTreeKeys {
		if _, ok := raw[k]; !ok {
			return domain.TreeInfo{}, &domain.ResponseParseError{Verb: "show_tree_info", Reason: "missing " + k, Raw: lines}
		}
	}

	var info domain.TreeInfo
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &info,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.TreeInfo{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.TreeInfo{}, &domain.ResponseParseError{Verb: "show_tree_info", Reason: err.Error(), Raw: lines}
	}

	if _, err := cards.ParseBoard(strings.Join(info.Board, " ")); err != nil {
		return domain.TreeInfo{}, &domain.ResponseParseError{Verb: "show_tree_info", Reason: err.Error(), Raw: lines}
	}
	return info, nil
}

// parseNode reads the six line block printed by show_node:
//
//	r:0:c
//	IP_DEC
//	Qs Jh 2h
//	0 0 60
//	2 children
//	flags: PIO_CFR
func parseNode(verb string, lines []string) (domain.NodeInfo, error) {
	var block []string
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			block = append(block, t)
		}
	}
	fail := func(reason string) (domain.NodeInfo, error) {
		return domain.NodeInfo{}, &domain.ResponseParseError{Verb: verb, Reason: reason, Raw: lines}
	}
	if len(block) < 6 {
		return fail(fmt.Sprintf("node block has %d lines, want 6", len(block)))
	}

	n := domain.NodeInfo{
		ID:    block[0],
		Board: strings.Fields(block[2]),
	}
	n.Type = strings.Fields(block[1])[0]

	pot := strings.Fields(block[3])
	if len(pot) != 3 {
		return fail(fmt.Sprintf("pot %q is not three amounts", block[3]))
	}
	for i, p := range pot {
		v, err := strconv.Atoi(p)
		if err != nil {
			return fail(fmt.Sprintf("pot %q: %v", block[3], err))
		}
		n.Pot[i] = v
	}

	kids, err := strconv.Atoi(strings.Fields(block[4])[0])
	if err != nil {
		return fail(fmt.Sprintf("children %q: %v", block[4], err))
	}
	n.Children = kids

	if _, flags, ok := strings.Cut(block[5], ":"); ok {
		n.Flags = strings.Fields(flags)
	}
	return n, nil
}

// parseChildren splits show_children output into "child n:" blocks.
func parseChildren(lines []string) ([]domain.NodeInfo, error) {
	var (
		out   []domain.NodeInfo
		block []string
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		body := block
		if strings.HasPrefix(strings.TrimSpace(body[0]), "child") {
			body = body[1:]
		}
		n, err := parseNode("show_children", body)
		if err != nil {
			return err
		}
		out = append(out, n)
		block = nil
		return nil
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, l)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseStrategy reads one row of frequencies per child action.
func parseStrategy(lines []string) ([][]float64, error) {
	out := make([][]float64, 0, len(lines))
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, &domain.ResponseParseError{Verb: "show_strategy", Reason: err.Error(), Raw: lines}
			}
			row[i] = v
		}
		out = append(out, row)
	}
	return out, nil
}
