package coordinator

import (
	"context"
	"log/slog"

	"github.com/quanb-duy/custom-ecommerce-website/internal/coordinator/flowlog"
)

// Step represents a single unit of work in the checkout pipeline.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator runs a collection of Steps sequentially and records every
// state transition in the durable flow log.
type Orchestrator struct {
	flowID  string
	steps   []Step
	logRepo flowlog.Repository // nil-safe: logging skipped if nil
	payload string
}

// NewOrchestrator builds an orchestrator for one pipeline run. flowID is the
// business identifier the log rows are joined on; payload is the JSON input
// recorded once on the STARTED row.
func NewOrchestrator(flowID string, steps []Step, logRepo flowlog.Repository, payload string) *Orchestrator {
	return &Orchestrator{
		flowID:  flowID,
		steps:   steps,
		logRepo: logRepo,
		payload: payload,
	}
}

// Start runs the steps in order. If a step fails, every previously
// successful step is compensated in LIFO order and the step's error is
// returned.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, flowlog.StatusStarted, "", nil)

	var done []Step
	for _, step := range o.steps {
		slog.InfoContext(ctx, "executing pipeline step", "flow_id", o.flowID, "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			slog.ErrorContext(ctx, "pipeline step failed, rolling back",
				"flow_id", o.flowID, "step", step.Name(), "error", err)
			errs := []string{step.Name() + ": " + err.Error()}
			o.record(ctx, flowlog.StatusCompensating, step.Name(), errs)
			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, flowlog.StatusFailed, step.Name(), errs)
			return err
		}
		done = append(done, step)
		o.record(ctx, flowlog.StatusStepDone, step.Name(), nil)
	}

	o.record(ctx, flowlog.StatusCompleted, "", nil)
	return nil
}

// rollback compensates completed steps newest-first and collects any
// compensation failures for the FAILED log row.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		slog.InfoContext(ctx, "compensating pipeline step", "flow_id", o.flowID, "step", step.Name())
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate pipeline step",
				"flow_id", o.flowID, "step", step.Name(), "error", err)
			errs = append(errs, "compensation of "+step.Name()+": "+err.Error())
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status flowlog.Status, step string, errs []string) {
	if o.logRepo == nil {
		return
	}
	payload := ""
	if status == flowlog.StatusStarted {
		payload = o.payload
	}
	entry := flowlog.NewEntry(ctx, o.flowID, status, step, payload, errs)
	if err := o.logRepo.Save(ctx, entry); err != nil {
		// The flow log is observability, not correctness; a write failure
		// must not abort the business operation.
		slog.ErrorContext(ctx, "failed to persist flow log entry",
			"flow_id", o.flowID, "status", string(status), "error", err)
	}
}
