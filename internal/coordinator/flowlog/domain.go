// Package flowlog defines the durable audit trail for checkout pipeline runs.
//
// Every state transition of an order-creation pipeline is appended as a row,
// so an operator can see exactly where a run is (or died) and jump from the
// row to the distributed trace via the trace_id field.
package flowlog

import "time"

// Status is the lifecycle state of a pipeline run.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the checkout_flow_logs table — a point-in-time
// snapshot of one pipeline run.
type Entry struct {
	// FlowID identifies the pipeline run. It is assigned before the order id
	// exists; the STARTED payload carries the business inputs for joining.
	FlowID string

	Status Status

	// CurrentStep is the step that just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised input, stored once on the STARTED row.
	Payload string

	// ErrorMessages is a JSON array of failure details, one per failed step
	// or failed compensation.
	ErrorMessages string

	// TraceID / SpanID are the W3C identifiers of the OpenTelemetry span
	// active when the row was written.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
