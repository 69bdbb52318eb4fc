package engine

import "sdn-te/internal/model"

// State is the provisioning state: the mode that produced the installed rule
// set and the rules themselves, in push order.
//
// Orphans are entries that may still be on the switches although they belong
// to no rule set: rules of a failed push that could not be rolled back and
// stale rules whose withdrawal failed. The next cycle withdraws them.
type State struct {
	Mode    model.Mode   `json:"mode"`
	Rules   []model.Rule `json:"rules"`
	Orphans []model.Rule `json:"orphans,omitempty"`
}

// Clone returns a copy that shares no slice with s.
func (s State) Clone() State {
	return State{
		Mode:    s.Mode,
		Rules:   append([]model.Rule(nil), s.Rules...),
		Orphans: append([]model.Rule(nil), s.Orphans...),
	}
}

// staleRules returns the rules of prev whose flow-table entry is not
// occupied by any rule of next.
func staleRules(prev, next []model.Rule) []model.Rule {
	if len(prev) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(next))
	for _, r := range next {
		keep[r.FlowKey()] = struct{}{}
	}
	var stale []model.Rule
	for _, r := range prev {
		if _, ok := keep[r.FlowKey()]; !ok {
			stale = append(stale, r)
		}
	}
	return stale
}

// overwrittenRules returns the rules of prev whose flow-table entry next
// occupies with a different action.
func overwrittenRules(prev, next []model.Rule) []model.Rule {
	written := make(map[string]string, len(next))
	for _, r := range next {
		written[r.FlowKey()] = r.Key()
	}
	var out []model.Rule
	for _, r := range prev {
		if key, ok := written[r.FlowKey()]; ok && key != r.Key() {
			out = append(out, r)
		}
	}
	return out
}

// unionRules appends the rules of b whose flow-table entry a does not occupy.
func unionRules(a, b []model.Rule) []model.Rule {
	if len(b) == 0 {
		return a
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]model.Rule, 0, len(a)+len(b))
	for _, r := range a {
		seen[r.FlowKey()] = struct{}{}
		out = append(out, r)
	}
	for _, r := range b {
		if _, ok := seen[r.FlowKey()]; !ok {
			seen[r.FlowKey()] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
