package model

import (
	"fmt"
	"strings"
)

// Mode names the objective kind that owns the installed rule set.
type Mode string

const (
	ModeNone         Mode = "None"
	ModePassBy       Mode = "pass_by"
	ModeMinLatency   Mode = "min_latency"
	ModeMaxBandwidth Mode = "max_bandwidth"
)

// Modes lists the provisionable modes in store order.
var Modes = []Mode{ModePassBy, ModeMinLatency, ModeMaxBandwidth}

// ParseMode accepts the canonical mode names plus the policy-file section
// name "pass_by_paths". The empty string and "none" map to ModeNone.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "pass_by", "pass_by_paths", "pass-by":
		return ModePassBy, nil
	case "min_latency", "min-latency":
		return ModeMinLatency, nil
	case "max_bandwidth", "max-bandwidth":
		return ModeMaxBandwidth, nil
	default:
		return ModeNone, fmt.Errorf("unknown mode %q", s)
	}
}
