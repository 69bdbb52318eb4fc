package model

import (
	"fmt"
	"strconv"
)

type ActionType string

const (
	Forward ActionType = "FORWARD"
	Drop    ActionType = "DROP"
)

type Action struct {
	Type    ActionType `json:"action_type"`
	OutPort *uint32    `json:"out_port,omitempty"`
}

// ForwardTo builds a FORWARD action towards port.
func ForwardTo(port uint32) Action {
	return Action{Type: Forward, OutPort: &port}
}

// Validate enforces that OutPort is set iff the action forwards.
func (a Action) Validate() error {
	switch a.Type {
	case Forward:
		if a.OutPort == nil {
			return fmt.Errorf("%w: FORWARD action without out_port", ErrValidation)
		}
	case Drop:
		if a.OutPort != nil {
			return fmt.Errorf("%w: DROP action with out_port", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown action type %q", ErrValidation, a.Type)
	}
	return nil
}

func (a Action) String() string {
	if a.OutPort == nil {
		return string(a.Type)
	}
	return string(a.Type) + ":" + strconv.FormatUint(uint64(*a.OutPort), 10)
}

// Rule is a single flow-table entry for one switch.
type Rule struct {
	SwitchID string       `json:"switch_id"`
	Match    MatchPattern `json:"match_pattern"`
	Action   Action       `json:"action"`
}

// Key identifies the rule by content; equal rules share a key.
func (r Rule) Key() string {
	return r.FlowKey() + "|" + r.Action.String()
}

// FlowKey identifies the flow-table entry the rule occupies. Two rules with
// the same FlowKey overwrite each other on the switch, including rules whose
// selectors differ only in spelling (MAC case, bare address versus /32).
func (r Rule) FlowKey() string {
	return r.SwitchID + "|" + r.Match.canonical().String()
}

func (r Rule) String() string {
	return fmt.Sprintf("switch=%s match=[%s] action=%s", r.SwitchID, r.Match, r.Action)
}
