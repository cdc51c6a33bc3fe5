package logging

const (
	// FieldComponent names the emitting component.
	FieldComponent = "component"
	// FieldJobID identifies the active media job.
	FieldJobID = "job_id"
	// FieldStage names the pipeline stage.
	FieldStage = "stage"
	// FieldCorrelationID carries the upstream request id (FPT.AI request_id).
	FieldCorrelationID = "correlation_id"
	// FieldSessionID identifies one CLI invocation.
	FieldSessionID = "session_id"
	// FieldEventType classifies the log line (stage_start, tts_poll, ...).
	FieldEventType = "event_type"
	// FieldErrorKind is the short error class reported by services.Kind.
	FieldErrorKind = "error_kind"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
)
