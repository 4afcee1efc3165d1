package mask

// Pattern is what Format masks against: one mask or a dynamic set.
// The zero value means no mask.
type Pattern struct {
	masks   []string
	dynamic bool
}

func Single(mask string) Pattern {
	if mask == "" {
		return Pattern{}
	}
	return Pattern{masks: []string{mask}}
}

// Dynamic builds a set for Select. An empty set is still a mask and formats
// every value to "".
func Dynamic(masks ...string) Pattern {
	return Pattern{masks: append([]string{}, masks...), dynamic: true}
}

// IsZero reports whether p carries no mask at all.
func (p Pattern) IsZero() bool { return !p.dynamic && len(p.masks) == 0 }

func (p Pattern) IsDynamic() bool { return p.dynamic }

// Masks returns a copy of the masks held by p.
func (p Pattern) Masks() []string { return append([]string(nil), p.masks...) }

// Format dispatches to Apply for a single mask and to Select for a set.
// A zero Pattern disables masking and value is returned unchanged.
func Format(value string, p Pattern, masked bool, tokens TokenTable) string {
	switch {
	case p.IsZero():
		return value
	case p.dynamic:
		return Select(value, p.masks, masked, tokens)
	default:
		return Apply(value, p.masks[0], masked, tokens)
	}
}
