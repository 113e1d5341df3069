package domain

// TreeInfo holds the facts reported by show_tree_info. Known keys decode into
// fields; the rest land in Fields with their guessed type.
type TreeInfo struct {
	Board            []string `mapstructure:"Board" json:"board"`
	Pot              int      `mapstructure:"Pot" json:"pot"`
	EffectiveStack   int      `mapstructure:"EffectiveStacks" json:"effective_stack"`
	AllinThreshold   int      `mapstructure:"AllinThreshold" json:"allin_threshold,omitempty"`
	MergingThreshold int      `mapstructure:"MergingThreshold" json:"merging_threshold,omitempty"`
	RangeOOP         []string `mapstructure:"Range0" json:"range_oop,omitempty"`
	RangeIP          []string `mapstructure:"Range1" json:"range_ip,omitempty"`

	Fields map[string]any `mapstructure:",remain" json:"fields,omitempty"`

	// Lines is the raw line inventory, present once show_all_lines ran.
	Lines []string `mapstructure:"-" json:"lines,omitempty"`
}

// Clone returns a copy that shares nothing mutable with t.
func (t TreeInfo) Clone() TreeInfo {
	c := t
	c.Board = append([]string(nil), t.Board...)
	c.RangeOOP = append([]string(nil), t.RangeOOP...)
	c.RangeIP = append([]string(nil), t.RangeIP...)
	c.Lines = append([]string(nil), t.Lines...)
	if t.Fields != nil {
		c.Fields = make(map[string]any, len(t.Fields))
		for k, v := range t.Fields {
			c.Fields[k] = v
		}
	}
	return c
}
