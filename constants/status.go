package constants

// RunStatus is the canonical status reported for one extraction run.
type RunStatus string

// Stable values (callers may persist or display these exact strings).
const (
	RunStatusOK       RunStatus = "OK"        // every unit processed
	RunStatusDegraded RunStatus = "DEGRADED"  // completed with skipped units
	RunStatusFailed   RunStatus = "FAILED"    // fatal abort, partial telemetry only
)
