package engine

import (
	"fmt"

	"sdn-te/internal/model"
)

// expandSymmetric derives the reverse direction of a symmetric objective.
//
// The reverse pattern swaps the MAC, IP and transport-port pairs and drops
// in_port. For pass-by the reverse request pins the forward path backwards;
// computed kinds get a fresh objective with the endpoints swapped so the
// selector runs again on the reverse direction.
func expandSymmetric(obj model.Objective, fwdPath []string) (model.MatchPattern, model.Objective, error) {
	pattern := obj.Pattern().Reverse()

	switch o := obj.(type) {
	case model.PassByPathObjective:
		switches := make([]model.SwitchID, len(fwdPath))
		for i, sw := range fwdPath {
			switches[len(fwdPath)-1-i] = model.SwitchID(sw)
		}
		return pattern, model.PassByPathObjective{MatchPattern: pattern, Switches: switches}, nil
	case model.MinLatencyObjective:
		return pattern, model.MinLatencyObjective{MatchPattern: pattern, SrcSwitch: o.DstSwitch, DstSwitch: o.SrcSwitch}, nil
	case model.MaxBandwidthObjective:
		return pattern, model.MaxBandwidthObjective{MatchPattern: pattern, SrcSwitch: o.DstSwitch, DstSwitch: o.SrcSwitch}, nil
	default:
		return model.MatchPattern{}, nil, fmt.Errorf("engine: cannot reverse objective type %T", obj)
	}
}
