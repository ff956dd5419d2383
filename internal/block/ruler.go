package block

import "github.com/cockroachdb/errors"

// Rule tries to recognize a block construct at startLine. In silent mode it
// only reports whether the construct would match, without touching the
// token stream or the cursor. Otherwise a matching rule pushes its tokens
// and advances state.Line past the consumed lines.
type Rule func(state *State, startLine, endLine int, silent bool) bool

type ruleEntry struct {
	name    string
	enabled bool
	fn      Rule
	alt     []string
}

// Ruler keeps an ordered list of named rules. A rule may also belong to
// alternative chains, used by other rules to probe for terminators.
type Ruler struct {
	rules []*ruleEntry
	cache map[string][]Rule
}

// ErrUnknownRule is returned when a rule name does not exist in the ruler.
var ErrUnknownRule = errors.New("unknown rule")

func (r *Ruler) find(name string) int {
	for i, rule := range r.rules {
		if rule.name == name {
			return i
		}
	}

	return -1
}

func (r *Ruler) insert(at int, name string, fn Rule, alt []string) {
	entry := &ruleEntry{name: name, enabled: true, fn: fn, alt: alt}

	r.rules = append(r.rules, nil)
	copy(r.rules[at+1:], r.rules[at:])
	r.rules[at] = entry
	r.cache = nil
}

// Push appends a rule to the end of the chain.
func (r *Ruler) Push(name string, fn Rule, alt ...string) {
	r.insert(len(r.rules), name, fn, alt)
}

// Before inserts a rule right before the rule named before.
func (r *Ruler) Before(before, name string, fn Rule, alt ...string) error {
	idx := r.find(before)
	if idx < 0 {
		return errors.Wrapf(ErrUnknownRule, "before %q", before)
	}

	r.insert(idx, name, fn, alt)

	return nil
}

// After inserts a rule right after the rule named after.
func (r *Ruler) After(after, name string, fn Rule, alt ...string) error {
	idx := r.find(after)
	if idx < 0 {
		return errors.Wrapf(ErrUnknownRule, "after %q", after)
	}

	r.insert(idx+1, name, fn, alt)

	return nil
}

// At replaces the function of an existing rule.
func (r *Ruler) At(name string, fn Rule, alt ...string) error {
	idx := r.find(name)
	if idx < 0 {
		return errors.Wrapf(ErrUnknownRule, "at %q", name)
	}

	r.rules[idx].fn = fn
	r.rules[idx].alt = alt
	r.cache = nil

	return nil
}

// Enable turns the named rules on.
func (r *Ruler) Enable(names ...string) error {
	return r.toggle(true, names)
}

// Disable turns the named rules off.
func (r *Ruler) Disable(names ...string) error {
	return r.toggle(false, names)
}

func (r *Ruler) toggle(enabled bool, names []string) error {
	for _, name := range names {
		idx := r.find(name)
		if idx < 0 {
			return errors.Wrapf(ErrUnknownRule, "%q", name)
		}

		r.rules[idx].enabled = enabled
	}

	r.cache = nil

	return nil
}

// Names returns the names of the enabled rules in order.
func (r *Ruler) Names() []string {
	names := make([]string, 0, len(r.rules))

	for _, rule := range r.rules {
		if rule.enabled {
			names = append(names, rule.name)
		}
	}

	return names
}

// Rules returns the enabled rules of a chain. The empty chain name is the
// main chain holding every rule.
func (r *Ruler) Rules(chain string) []Rule {
	if r.cache == nil {
		r.compile()
	}

	return r.cache[chain]
}

func (r *Ruler) compile() {
	r.cache = map[string][]Rule{"": nil}

	for _, rule := range r.rules {
		if !rule.enabled {
			continue
		}

		r.cache[""] = append(r.cache[""], rule.fn)

		for _, alt := range rule.alt {
			r.cache[alt] = append(r.cache[alt], rule.fn)
		}
	}
}
