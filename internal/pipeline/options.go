package pipeline

import "time"

// Progress is invoked after each batch completes. It replaces shared
// mutable progress state: callers that want UI progress pass a callback.
type Progress func(done, total int)

// Options holds orchestration tunables. The low-yield thresholds are
// heuristics, not correctness contracts; keep them configurable.
type Options struct {
	Concurrency int           // units dispatched per batch
	MaxRetries  int           // rate-limit retries per unit
	BackoffBase time.Duration // wait is BackoffBase * attempt
	BatchDelay  time.Duration // pause between batches to smooth burst load
	CallTimeout time.Duration // per extraction call

	// Low-yield heuristic: a unit yielding fewer than MinCandidates rows
	// from at least SubstantialLen bytes of content gets one re-issue.
	MinCandidates  int
	SubstantialLen int

	MaxPages int // page-pipeline cap

	Progress Progress
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 2 * time.Second
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = 0
	} else if o.BatchDelay == 0 {
		o.BatchDelay = 500 * time.Millisecond
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 60 * time.Second
	}
	if o.MinCandidates <= 0 {
		o.MinCandidates = 3
	}
	if o.SubstantialLen <= 0 {
		o.SubstantialLen = 400
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 30
	}
	return o
}
