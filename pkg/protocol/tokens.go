package protocol

import "slices"

// Tokens are the markers the engine uses to frame responses. They differ
// between engine builds and are therefore data.
type Tokens struct {
	// EndString terminates every response. It is also sent with
	// set_end_string during the handshake.
	EndString string `yaml:"end_string"`
	// ErrorPrefix starts a line reporting a failed command.
	ErrorPrefix string `yaml:"error_prefix"`
	// AckSuffix follows the verb on the acknowledgement line of AckVerbs.
	AckSuffix string `yaml:"ack_suffix"`
	// AckVerbs produce no payload besides their acknowledgement.
	AckVerbs []string `yaml:"ack_verbs"`
}

var defaultAckVerbs = []string{
	"is_ready",
	"set_end_string",
	"load_tree",
	"dump_tree",
	"go",
	"stop",
	"wait_for_solver",
	"take_a_break",
	"set_threads",
	"set_info_freq",
	"set_accuracy",
	"set_recalc_accuracy",
	"set_always_recalc",
	"set_isomorphism",
	"set_first_iteration_player",
	"add_preflop_line",
	"remove_preflop_line",
	"clear_preflop_lines",
	"build_preflop_tree",
	"add_to_subset",
	"reset_subset",
	"recover_subset",
	"add_schematic_tree",
	"add_all_flops",
	"set_algorithm",
	"small_strats",
	"add_info_line",
	"reset_tree_info",
	"solve_partial",
	"solve_all_splits",
	"eliminate_path",
	"lock_node",
	"unlock_node",
	"combo_lock_node",
	"set_equal_strats",
	"set_mes",
	"free_tree",
}

// DefaultTokens returns the PioSOLVER 2.x markers.
func DefaultTokens() Tokens {
	return Tokens{
		EndString:   "END",
		ErrorPrefix: "ERROR",
		AckSuffix:   " ok!",
		AckVerbs:    slices.Clone(defaultAckVerbs),
	}
}

// Merge overlays the non-zero fields of o on t.
func (t Tokens) Merge(o Tokens) Tokens {
	if o.EndString != "" {
		t.EndString = o.EndString
	}
	if o.ErrorPrefix != "" {
		t.ErrorPrefix = o.ErrorPrefix
	}
	if o.AckSuffix != "" {
		t.AckSuffix = o.AckSuffix
	}
	if len(o.AckVerbs) > 0 {
		t.AckVerbs = slices.Clone(o.AckVerbs)
	}
	return t
}

// RequiresAck reports whether verb answers with an acknowledgement line.
func (t Tokens) RequiresAck(verb string) bool {
	return slices.Contains(t.AckVerbs, verb)
}

// Ack is the acknowledgement line expected for verb.
func (t Tokens) Ack(verb string) string {
	return verb + t.AckSuffix
}
