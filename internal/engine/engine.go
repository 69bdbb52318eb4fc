// Package engine provisions traffic-engineering objectives as flow rules and
// keeps them consistent with the topology.
//
// An Engine owns the provisioning state (active mode and installed rules).
// Provisioning and reconciliation cycles run to completion under one lock,
// so the controller never observes a partially built rule set. A Reconciler
// feeds topology-change triggers to the Engine from a single goroutine.
package engine

//go:generate mockgen -destination mock_engine/mock_engine.go -package mock_engine sdn-te/internal/engine Compiler,Controller,PathSelector,TopologySource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"sdn-te/internal/model"
	"sdn-te/internal/objectives"
	"sdn-te/internal/pathsel"
	"sdn-te/internal/topology"
)

// Errors that abort a whole cycle. Per-objective failures never do; they are
// listed in Report.Skipped instead.
var (
	ErrTopologyLoad   = errors.New("engine: topology load failed")
	ErrRulePush       = errors.New("engine: rule push failed")
	ErrRuleWithdraw   = errors.New("engine: rule withdraw failed")
	ErrUnknownMode    = errors.New("engine: unknown mode")
	ErrAlreadyRunning = errors.New("engine: reconciler is already running")
	ErrMissingDep     = errors.New("engine: missing dependency")
)

// TopologySource supplies a fresh topology snapshot.
type TopologySource interface {
	Load(ctx context.Context) (*topology.Topology, error)
}

// TopologySourceFunc adapts a function to TopologySource.
type TopologySourceFunc func(ctx context.Context) (*topology.Topology, error)

func (f TopologySourceFunc) Load(ctx context.Context) (*topology.Topology, error) { return f(ctx) }

// PathSelector computes the switch path for an objective.
type PathSelector interface {
	Select(ctx context.Context, obj model.Objective, topo *topology.Topology) ([]string, error)
}

// Compiler turns a path and a match pattern into per-switch rules.
type Compiler interface {
	Compile(topo *topology.Topology, path []string, pattern model.MatchPattern, includeInPort bool) ([]model.Rule, error)
}

// Controller installs and removes rules on the switches. Each call carries a
// whole rule set.
type Controller interface {
	Push(ctx context.Context, rules []model.Rule) error
	Withdraw(ctx context.Context, rules []model.Rule) error
}

// Config wires an Engine to its collaborators. Selector and Logger are
// optional.
type Config struct {
	Objectives *objectives.Store
	Topology   TopologySource
	Compiler   Compiler
	Controller Controller
	Selector   PathSelector
	Logger     *slog.Logger
}

// Engine is the provisioning engine. It is safe for concurrent use; cycles
// are serialized.
type Engine struct {
	store      *objectives.Store
	source     TopologySource
	compiler   Compiler
	controller Controller
	selector   PathSelector
	logger     *slog.Logger

	mu    sync.Mutex
	topo  *topology.Topology
	state State
}

// New validates cfg and returns an Engine with no active mode.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Objectives == nil:
		return nil, fmt.Errorf("%w: objective store", ErrMissingDep)
	case cfg.Topology == nil:
		return nil, fmt.Errorf("%w: topology source", ErrMissingDep)
	case cfg.Compiler == nil:
		return nil, fmt.Errorf("%w: compiler", ErrMissingDep)
	case cfg.Controller == nil:
		return nil, fmt.Errorf("%w: controller", ErrMissingDep)
	}

	e := &Engine{
		store:      cfg.Objectives,
		source:     cfg.Topology,
		compiler:   cfg.Compiler,
		controller: cfg.Controller,
		selector:   cfg.Selector,
		logger:     cfg.Logger,
		state:      State{Mode: model.ModeNone},
	}
	if e.selector == nil {
		e.selector = pathsel.New()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// State returns a copy of the provisioning state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state.Clone()
}

// Topology returns the current topology snapshot, or nil before the first
// load. Snapshots are never mutated after loading.
func (e *Engine) Topology() *topology.Topology {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.topo
}

// LoadTopology replaces the current topology with a fresh snapshot from the
// source. Installed rules are left alone.
func (e *Engine) LoadTopology(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.loadTopologyLocked(ctx)
}

func (e *Engine) loadTopologyLocked(ctx context.Context) error {
	topo, err := e.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTopologyLoad, err)
	}
	if topo == nil {
		return fmt.Errorf("%w: source returned no topology", ErrTopologyLoad)
	}
	e.topo = topo
	e.logger.Info("Topology loaded",
		"switches", len(topo.Switches()),
		"links", topo.LinkCount(),
		"hosts", topo.Hosts())
	return nil
}
