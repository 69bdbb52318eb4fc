// Package objectives holds the registered traffic-engineering objectives,
// one ordered collection per mode.
package objectives

import (
	"errors"
	"fmt"
	"sync"

	"sdn-te/internal/model"
)

// ErrNilObjective is returned when Add is given a nil objective.
var ErrNilObjective = errors.New("objectives: nil objective")

// Set is a snapshot of objectives grouped by mode. It is the unit exchanged
// with objective providers and serialized to policy files.
type Set struct {
	PassBy       []model.PassByPathObjective   `json:"pass_by_paths"`
	MinLatency   []model.MinLatencyObjective   `json:"min_latency"`
	MaxBandwidth []model.MaxBandwidthObjective `json:"max_bandwidth"`
}

// Len reports the total number of objectives in s.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.PassBy) + len(s.MinLatency) + len(s.MaxBandwidth)
}

// Validate checks every objective and joins the failures.
func (s *Set) Validate() error {
	if s == nil {
		return nil
	}
	var errs []error
	check := func(section string, i int, o model.Objective) {
		if err := o.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s[%d]: %w", section, i, err))
		}
	}
	for i, o := range s.PassBy {
		check("pass_by_paths", i, o)
	}
	for i, o := range s.MinLatency {
		check("min_latency", i, o)
	}
	for i, o := range s.MaxBandwidth {
		check("max_bandwidth", i, o)
	}
	return errors.Join(errs...)
}

// Store keeps objectives in registration order. It is safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	passBy       []model.PassByPathObjective
	minLatency   []model.MinLatencyObjective
	maxBandwidth []model.MaxBandwidthObjective
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends obj to the collection matching its kind. Duplicates are kept.
func (s *Store) Add(obj model.Objective) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch o := obj.(type) {
	case model.PassByPathObjective:
		s.passBy = append(s.passBy, o)
	case model.MinLatencyObjective:
		s.minLatency = append(s.minLatency, o)
	case model.MaxBandwidthObjective:
		s.maxBandwidth = append(s.maxBandwidth, o)
	case nil:
		return ErrNilObjective
	default:
		return fmt.Errorf("objectives: unsupported objective type %T", obj)
	}
	return nil
}

// AddSet appends every objective of set, preserving section order.
func (s *Store) AddSet(set *Set) {
	if set == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.passBy = append(s.passBy, set.PassBy...)
	s.minLatency = append(s.minLatency, set.MinLatency...)
	s.maxBandwidth = append(s.maxBandwidth, set.MaxBandwidth...)
}

// Objectives returns a copy of the collection for mode in insertion order.
// ModeNone and unknown modes yield nil.
func (s *Store) Objectives(mode model.Mode) []model.Objective {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Objective
	switch mode {
	case model.ModePassBy:
		out = make([]model.Objective, 0, len(s.passBy))
		for _, o := range s.passBy {
			out = append(out, o)
		}
	case model.ModeMinLatency:
		out = make([]model.Objective, 0, len(s.minLatency))
		for _, o := range s.minLatency {
			out = append(out, o)
		}
	case model.ModeMaxBandwidth:
		out = make([]model.Objective, 0, len(s.maxBandwidth))
		for _, o := range s.maxBandwidth {
			out = append(out, o)
		}
	}
	return out
}

// Snapshot copies the whole store into a Set.
func (s *Store) Snapshot() *Set {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &Set{
		PassBy:       append([]model.PassByPathObjective(nil), s.passBy...),
		MinLatency:   append([]model.MinLatencyObjective(nil), s.minLatency...),
		MaxBandwidth: append([]model.MaxBandwidthObjective(nil), s.maxBandwidth...),
	}
}

// Len reports how many objectives are registered for mode.
func (s *Store) Len(mode model.Mode) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch mode {
	case model.ModePassBy:
		return len(s.passBy)
	case model.ModeMinLatency:
		return len(s.minLatency)
	case model.ModeMaxBandwidth:
		return len(s.maxBandwidth)
	}
	return 0
}
