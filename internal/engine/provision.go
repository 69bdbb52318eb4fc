package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sdn-te/internal/model"
)

// Report summarizes one provisioning cycle.
type Report struct {
	Mode       model.Mode       `json:"mode"`
	Objectives int              `json:"objectives"`
	Installed  int              `json:"installed_rules"`
	Withdrawn  int              `json:"withdrawn_rules"`
	Skipped    []ObjectiveError `json:"skipped,omitempty"`
}

// ObjectiveError records an objective that was skipped during a cycle.
type ObjectiveError struct {
	Index     int    `json:"index"`
	Objective string `json:"objective"`
	Reason    string `json:"reason"`
	Message   string `json:"error"`
	Err       error  `json:"-"`
}

func (oe ObjectiveError) Error() string {
	return fmt.Sprintf("%s: %v", oe.Objective, oe.Err)
}

func (oe ObjectiveError) Unwrap() error { return oe.Err }

// ProvisionPassBy installs the rule set of all pass-by objectives.
func (e *Engine) ProvisionPassBy(ctx context.Context) (*Report, error) {
	return e.Provision(ctx, model.ModePassBy)
}

// ProvisionMinLatency installs the rule set of all min-latency objectives.
func (e *Engine) ProvisionMinLatency(ctx context.Context) (*Report, error) {
	return e.Provision(ctx, model.ModeMinLatency)
}

// ProvisionMaxBandwidth installs the rule set of all max-bandwidth objectives.
func (e *Engine) ProvisionMaxBandwidth(ctx context.Context) (*Report, error) {
	return e.Provision(ctx, model.ModeMaxBandwidth)
}

// Provision builds the rule set for every objective of mode in store order,
// pushes it in one call and records it as the installed set.
//
// Objectives that fail path selection, validation or port resolution are
// skipped and reported. A topology or push failure aborts the cycle and
// leaves the state as it was. Rules of the previous set that the new set no
// longer contains are withdrawn after the push; if that fails the error
// wraps ErrRuleWithdraw but the new set is still recorded.
func (e *Engine) Provision(ctx context.Context, mode model.Mode) (*Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	report, err := e.provisionLocked(ctx, mode)
	provisionCycles.WithLabelValues(string(mode), resultLabel(err)).Inc()
	return report, err
}

func (e *Engine) provisionLocked(ctx context.Context, mode model.Mode) (*Report, error) {
	if !isProvisionable(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	start := time.Now()
	logger := e.logger.With("mode", mode)
	logger.Info("Provisioning started")

	if e.topo == nil {
		if err := e.loadTopologyLocked(ctx); err != nil {
			logger.Error("Provisioning aborted", "error", err)
			return nil, err
		}
	}

	report := &Report{Mode: mode}
	var rules []model.Rule
	for i, obj := range e.store.Objectives(mode) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		built, err := e.buildRules(ctx, obj)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			oe := ObjectiveError{
				Index:     i,
				Objective: obj.String(),
				Reason:    SkipReason(err),
				Message:   err.Error(),
				Err:       err,
			}
			report.Skipped = append(report.Skipped, oe)
			objectivesSkipped.WithLabelValues(string(mode), oe.Reason).Inc()
			logger.Warn("Skipping objective", "index", i, "objective", oe.Objective, "error", err)
			continue
		}
		rules = append(rules, built...)
		report.Objectives++
	}

	if err := e.controller.Push(ctx, rules); err != nil {
		logger.Error("Rule push failed", "rules", len(rules), "error", err)
		if rbErr := e.rollbackLocked(ctx, rules); rbErr != nil {
			logger.Error("Rollback of failed push incomplete",
				"orphans", len(e.state.Orphans), "error", rbErr)
		}
		return report, fmt.Errorf("%w: %w", ErrRulePush, err)
	}
	report.Installed = len(rules)

	stale := staleRules(unionRules(e.state.Rules, e.state.Orphans), rules)
	e.state = State{Mode: mode, Rules: rules}
	installedRules.Set(float64(len(rules)))

	if len(stale) > 0 {
		if err := e.controller.Withdraw(ctx, stale); err != nil {
			e.state.Orphans = stale
			logger.Error("Stale rule withdraw failed", "rules", len(stale), "error", err)
			return report, fmt.Errorf("%w: %w", ErrRuleWithdraw, err)
		}
		report.Withdrawn = len(stale)
	}

	logger.Info("Provisioning finished",
		"objectives", report.Objectives,
		"skipped", len(report.Skipped),
		"rules", report.Installed,
		"withdrawn", report.Withdrawn,
		"duration", time.Since(start))
	return report, nil
}

// rollbackLocked undoes a push of attempted that may have been applied in
// part. Entries the installed set does not occupy are withdrawn and installed
// entries the attempt overwrote are pushed again. It runs detached from ctx
// cancellation since a cancelled push is the common cause. Entries that could
// not be withdrawn are recorded as orphans.
func (e *Engine) rollbackLocked(ctx context.Context, attempted []model.Rule) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	if extra := staleRules(attempted, e.state.Rules); len(extra) > 0 {
		if err := e.controller.Withdraw(ctx, extra); err != nil {
			e.state.Orphans = unionRules(e.state.Orphans, extra)
			errs = append(errs, fmt.Errorf("withdraw: %w", err))
		}
	}
	// A failed restore leaves entries with the wrong action under flow keys
	// the state still tracks, so the next cycle still removes them.
	if restore := overwrittenRules(e.state.Rules, attempted); len(restore) > 0 {
		if err := e.controller.Push(ctx, restore); err != nil {
			errs = append(errs, fmt.Errorf("restore: %w", err))
		}
	}
	return errors.Join(errs...)
}

// buildRules compiles the forward rules of obj followed by its reverse rules
// when obj is symmetric. A failure in either direction fails the objective.
func (e *Engine) buildRules(ctx context.Context, obj model.Objective) ([]model.Rule, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	fwdPath, err := e.selector.Select(ctx, obj, e.topo)
	if err != nil {
		return nil, err
	}
	rules, err := e.compiler.Compile(e.topo, fwdPath, obj.Pattern(), true)
	if err != nil {
		return nil, fmt.Errorf("forward %v: %w", fwdPath, err)
	}
	if !obj.IsSymmetric() {
		return rules, nil
	}

	revPattern, revObj, err := expandSymmetric(obj, fwdPath)
	if err != nil {
		return nil, err
	}
	revPath, err := e.selector.Select(ctx, revObj, e.topo)
	if err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}
	revRules, err := e.compiler.Compile(e.topo, revPath, revPattern, true)
	if err != nil {
		return nil, fmt.Errorf("reverse %v: %w", revPath, err)
	}
	return append(rules, revRules...), nil
}

func isProvisionable(mode model.Mode) bool {
	for _, m := range model.Modes {
		if m == mode {
			return true
		}
	}
	return false
}
