package normalize

import "time"

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithLocation sets the location dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) {
		if loc != nil {
			n.loc = loc
		}
	}
}

// WithDateLayouts replaces the accepted date layouts. Layouts are tried in order.
func WithDateLayouts(layouts ...string) Option {
	return func(n *Normalizer) {
		if len(layouts) > 0 {
			n.dateLayouts = layouts
		}
	}
}

// WithTimeLayouts replaces the accepted time-of-day layouts. Layouts are tried in order.
func WithTimeLayouts(layouts ...string) Option {
	return func(n *Normalizer) {
		if len(layouts) > 0 {
			n.timeLayouts = layouts
		}
	}
}
