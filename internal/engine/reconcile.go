package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sdn-te/internal/model"
)

// Reconcile runs one reconciliation cycle: reload the topology, withdraw the
// installed rules, clear them, and provision the recorded mode again.
//
// A topology failure keeps the installed rules and the previous topology. A
// withdraw failure keeps the state and the new topology. With no active mode
// only the topology is refreshed.
func (e *Engine) Reconcile(ctx context.Context) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.reconcileLocked(ctx)
	reconcileCycles.WithLabelValues(resultLabel(err)).Inc()
	return report, err
}

func (e *Engine) reconcileLocked(ctx context.Context) (*Report, error) {
	mode := e.state.Mode
	logger := e.logger.With("mode", mode)
	logger.Info("Reconciliation started", "installed", len(e.state.Rules))

	if err := e.loadTopologyLocked(ctx); err != nil {
		logger.Error("Reconciliation aborted, keeping installed rules", "error", err)
		return nil, err
	}

	installed := unionRules(e.state.Rules, e.state.Orphans)
	if len(installed) > 0 {
		if err := e.controller.Withdraw(ctx, installed); err != nil {
			logger.Error("Rule withdraw failed", "rules", len(installed), "error", err)
			return nil, fmt.Errorf("%w: %w", ErrRuleWithdraw, err)
		}
	}
	withdrawn := len(installed)
	e.state.Rules = nil
	e.state.Orphans = nil
	installedRules.Set(0)

	if mode == model.ModeNone {
		logger.Info("Reconciliation finished, no active mode", "withdrawn", withdrawn)
		return &Report{Mode: mode, Withdrawn: withdrawn}, nil
	}

	report, err := e.provisionLocked(ctx, mode)
	provisionCycles.WithLabelValues(string(mode), resultLabel(err)).Inc()
	if report != nil {
		report.Withdrawn += withdrawn
	}
	return report, err
}

// Phase is the state of a Reconciler.
type Phase string

const (
	PhaseIdle        Phase = "Idle"
	PhaseReconciling Phase = "Reconciling"
)

// CycleResult describes one completed reconciliation cycle.
type CycleResult struct {
	Hint     model.Mode
	Report   *Report
	Err      error
	Duration time.Duration
}

// Reconciler is the single consumer of topology-change triggers. Triggers
// that arrive while a cycle runs collapse into one follow-up cycle.
type Reconciler struct {
	// Engine is the engine to reconcile. Required.
	Engine *Engine
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// OnCycle, if set, is called from the worker goroutine after each cycle.
	OnCycle func(CycleResult)

	initOnce sync.Once
	trigger  chan struct{}

	mu      sync.Mutex
	running bool
	hint    model.Mode

	phase atomic.Value
}

// NewReconciler returns a Reconciler for e.
func NewReconciler(e *Engine, logger *slog.Logger) *Reconciler {
	return &Reconciler{Engine: e, Logger: logger}
}

func (r *Reconciler) init() {
	r.initOnce.Do(func() {
		r.trigger = make(chan struct{}, 1)
		r.phase.Store(PhaseIdle)
		if r.Logger == nil {
			r.Logger = slog.Default()
		}
	})
}

// Notify requests a reconciliation cycle and returns immediately. hint is an
// advisory mode from the notifier; the recorded active mode always wins.
func (r *Reconciler) Notify(hint model.Mode) {
	r.init()

	r.mu.Lock()
	if hint != model.ModeNone && hint != "" {
		r.hint = hint
	}
	r.mu.Unlock()

	select {
	case r.trigger <- struct{}{}:
	default:
		// A cycle is already pending.
	}
}

// Phase reports whether a cycle is in flight.
func (r *Reconciler) Phase() Phase {
	r.init()
	return r.phase.Load().(Phase)
}

// Run processes triggers until ctx is done. It must only be called once at a
// time.
func (r *Reconciler) Run(ctx context.Context) error {
	r.init()
	if r.Engine == nil {
		return fmt.Errorf("%w: engine", ErrMissingDep)
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	r.Logger.Info("Reconciler started")
	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("Reconciler stopped")
			return nil
		case <-r.trigger:
			r.cycle(ctx)
		}
	}
}

func (r *Reconciler) cycle(ctx context.Context) {
	r.phase.Store(PhaseReconciling)
	defer r.phase.Store(PhaseIdle)

	r.mu.Lock()
	hint := r.hint
	r.hint = model.ModeNone
	r.mu.Unlock()

	if hint != model.ModeNone && hint != "" {
		if active := r.Engine.State().Mode; hint != active {
			r.Logger.Info("Ignoring advisory mode hint", "hint", hint, "active_mode", active)
		}
	}

	start := time.Now()
	report, err := r.Engine.Reconcile(ctx)
	res := CycleResult{Hint: hint, Report: report, Err: err, Duration: time.Since(start)}
	if err != nil {
		r.Logger.Error("Reconciliation failed", "error", err, "duration", res.Duration)
	}
	if r.OnCycle != nil {
		r.OnCycle(res)
	}
}
