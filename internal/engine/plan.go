package engine

import (
	"context"
	"fmt"

	"sdn-te/internal/model"
)

// PathPlan is the computed path pair of one objective.
type PathPlan struct {
	Objective model.Objective
	Forward   []string
	Reverse   []string
	Err       error
}

// Plan computes the forward and reverse paths of every objective of mode
// without compiling or pushing anything. The topology is loaded if absent.
func (e *Engine) Plan(ctx context.Context, mode model.Mode) ([]PathPlan, error) {
	if !isProvisionable(mode) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.topo == nil {
		if err := e.loadTopologyLocked(ctx); err != nil {
			return nil, err
		}
	}

	var plans []PathPlan
	for _, obj := range e.store.Objectives(mode) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		plan := PathPlan{Objective: obj}
		plan.Forward, plan.Err = e.selector.Select(ctx, obj, e.topo)
		if plan.Err == nil && obj.IsSymmetric() {
			_, revObj, err := expandSymmetric(obj, plan.Forward)
			if err == nil {
				plan.Reverse, err = e.selector.Select(ctx, revObj, e.topo)
			}
			plan.Err = err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
