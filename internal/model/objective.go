package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrValidation marks a malformed objective or pattern.
var ErrValidation = errors.New("validation error")

// SwitchID identifies a switch. Policy files may carry datapath IDs as JSON
// numbers; they are kept in their decimal string form.
type SwitchID string

func (s *SwitchID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(raw); err == nil {
		*s = SwitchID(unq)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("switch id: %w", err)
	}
	*s = SwitchID(n.String())
	return nil
}

// Objective is a traffic-engineering intent. The set of implementations is
// closed: PassByPathObjective, MinLatencyObjective and MaxBandwidthObjective.
type Objective interface {
	Mode() Mode
	Pattern() MatchPattern
	IsSymmetric() bool
	Validate() error
	String() string

	objective()
}

// PassByPathObjective pins a flow to an explicit switch sequence.
type PassByPathObjective struct {
	MatchPattern MatchPattern `json:"match_pattern"`
	Switches     []SwitchID   `json:"switches"`
	Symmetric    bool         `json:"symmetric"`
}

// MinLatencyObjective routes a flow over the path with the lowest total delay.
type MinLatencyObjective struct {
	MatchPattern MatchPattern `json:"match_pattern"`
	SrcSwitch    SwitchID     `json:"src_switch"`
	DstSwitch    SwitchID     `json:"dst_switch"`
	Symmetric    bool         `json:"symmetric"`
}

// MaxBandwidthObjective routes a flow over the path with the widest bottleneck.
type MaxBandwidthObjective struct {
	MatchPattern MatchPattern `json:"match_pattern"`
	SrcSwitch    SwitchID     `json:"src_switch"`
	DstSwitch    SwitchID     `json:"dst_switch"`
	Symmetric    bool         `json:"symmetric"`
}

func (PassByPathObjective) objective()   {}
func (MinLatencyObjective) objective()   {}
func (MaxBandwidthObjective) objective() {}

func (o PassByPathObjective) Mode() Mode   { return ModePassBy }
func (o MinLatencyObjective) Mode() Mode   { return ModeMinLatency }
func (o MaxBandwidthObjective) Mode() Mode { return ModeMaxBandwidth }

func (o PassByPathObjective) Pattern() MatchPattern   { return o.MatchPattern }
func (o MinLatencyObjective) Pattern() MatchPattern   { return o.MatchPattern }
func (o MaxBandwidthObjective) Pattern() MatchPattern { return o.MatchPattern }

func (o PassByPathObjective) IsSymmetric() bool   { return o.Symmetric }
func (o MinLatencyObjective) IsSymmetric() bool   { return o.Symmetric }
func (o MaxBandwidthObjective) IsSymmetric() bool { return o.Symmetric }

// Path returns the pinned switch sequence as plain identifiers.
func (o PassByPathObjective) Path() []string {
	path := make([]string, len(o.Switches))
	for i, s := range o.Switches {
		path[i] = string(s)
	}
	return path
}

func (o PassByPathObjective) Validate() error {
	if len(o.Switches) == 0 {
		return fmt.Errorf("%w: pass-by objective has no switches", ErrValidation)
	}
	for i, s := range o.Switches {
		if s == "" {
			return fmt.Errorf("%w: pass-by objective has empty switch at position %d", ErrValidation, i)
		}
	}
	return o.MatchPattern.Validate()
}

func (o MinLatencyObjective) Validate() error {
	return validateEndpoints(o.SrcSwitch, o.DstSwitch, o.MatchPattern)
}

func (o MaxBandwidthObjective) Validate() error {
	return validateEndpoints(o.SrcSwitch, o.DstSwitch, o.MatchPattern)
}

func validateEndpoints(src, dst SwitchID, pattern MatchPattern) error {
	if src == "" {
		return fmt.Errorf("%w: missing src_switch", ErrValidation)
	}
	if dst == "" {
		return fmt.Errorf("%w: missing dst_switch", ErrValidation)
	}
	return pattern.Validate()
}

func (o PassByPathObjective) String() string {
	return fmt.Sprintf("pass_by[%s] match=[%s]", strings.Join(o.Path(), "->"), o.MatchPattern)
}

func (o MinLatencyObjective) String() string {
	return fmt.Sprintf("min_latency[%s->%s] match=[%s]", o.SrcSwitch, o.DstSwitch, o.MatchPattern)
}

func (o MaxBandwidthObjective) String() string {
	return fmt.Sprintf("max_bandwidth[%s->%s] match=[%s]", o.SrcSwitch, o.DstSwitch, o.MatchPattern)
}
