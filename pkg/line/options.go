package line

// Option configures how a line is interpreted.
type Option func(*options)

type options struct {
	startingStreet Street
	effectiveStack int
}

func defaultOptions() options {
	return options{startingStreet: Flop}
}

// WithStartingStreet sets the street of the tree's first postflop segment
// (Flop by default; Turn for turn trees).
func WithStartingStreet(s Street) Option {
	return func(o *options) {
		if s >= Flop && s <= River {
			o.startingStreet = s
		}
	}
}

// WithEffectiveStack enables all-in detection in IsTerminal.
func WithEffectiveStack(chips int) Option {
	return func(o *options) {
		o.effectiveStack = chips
	}
}
