package controller

import (
	"context"
	"log/slog"
	"sync"

	"sdn-te/internal/model"
)

// DryRun logs rules instead of installing them and tracks what would be on
// the switches.
type DryRun struct {
	Logger *slog.Logger

	mu        sync.Mutex
	installed map[string]model.Rule
	order     []string
	pushes    int
	withdraws int
}

// NewDryRun returns a DryRun logging to logger.
func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{Logger: logger, installed: make(map[string]model.Rule)}
}

func (d *DryRun) Push(ctx context.Context, rules []model.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pushes++
	for _, r := range rules {
		key := r.FlowKey()
		if _, ok := d.installed[key]; !ok {
			d.order = append(d.order, key)
		}
		d.installed[key] = r
		d.Logger.Info("Would install rule", "switch", r.SwitchID, "match", r.Match.String(), "action", r.Action.String())
	}
	return nil
}

func (d *DryRun) Withdraw(ctx context.Context, rules []model.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.withdraws++
	for _, r := range rules {
		delete(d.installed, r.FlowKey())
		d.Logger.Info("Would remove rule", "switch", r.SwitchID, "match", r.Match.String())
	}
	kept := d.order[:0]
	for _, key := range d.order {
		if _, ok := d.installed[key]; ok {
			kept = append(kept, key)
		}
	}
	d.order = kept
	return nil
}

// Installed returns the rules currently on the simulated switches in first
// installation order.
func (d *DryRun) Installed() []model.Rule {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]model.Rule, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.installed[key])
	}
	return out
}

// Calls reports how many Push and Withdraw calls were made.
func (d *DryRun) Calls() (pushes, withdraws int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pushes, d.withdraws
}
