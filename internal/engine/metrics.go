package engine

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sdn-te/internal/compiler"
	"sdn-te/internal/model"
	"sdn-te/internal/pathsel"
)

// Metrics exported by the engine.
var (
	provisionCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "te_provision_cycles_total",
			Help: "Total number of provisioning cycles by mode and result.",
		},
		[]string{"mode", "result"},
	)
	objectivesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "te_objectives_skipped_total",
			Help: "Total number of objectives skipped during provisioning.",
		},
		[]string{"mode", "reason"},
	)
	reconcileCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "te_reconcile_cycles_total",
			Help: "Total number of reconciliation cycles by result.",
		},
		[]string{"result"},
	)
	installedRules = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "te_installed_rules",
			Help: "Number of rules in the installed rule set.",
		},
	)
)

// Result labels.
const (
	resultOK            = "ok"
	resultTopologyError = "topology_error"
	resultPushError     = "push_error"
	resultWithdrawError = "withdraw_error"
	resultCanceled      = "canceled"
	resultError         = "error"
)

func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, ErrTopologyLoad):
		return resultTopologyError
	case errors.Is(err, ErrRulePush):
		return resultPushError
	case errors.Is(err, ErrRuleWithdraw):
		return resultWithdrawError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resultCanceled
	default:
		return resultError
	}
}

// SkipReason classifies a per-objective failure.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, pathsel.ErrPathNotFound):
		return "path_not_found"
	case errors.Is(err, model.ErrValidation):
		return "validation"
	case errors.Is(err, compiler.ErrUnresolvedPort):
		return "unresolved_port"
	default:
		return "other"
	}
}
