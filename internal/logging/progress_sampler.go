package logging

// ProgressSampler decides when a long-running loop should emit a progress
// line: every N completed items and on the final item. Callers feed it a
// monotonically increasing done counter, one call per value.
type ProgressSampler struct {
	every int
}

// NewProgressSampler constructs a sampler that emits every `every` items
// (default 100).
func NewProgressSampler(every int) *ProgressSampler {
	if every <= 0 {
		every = 100
	}
	return &ProgressSampler{every: every}
}

// ShouldLog reports whether progress at done of total items should be logged.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if done <= 0 {
		return false
	}
	return done%s.every == 0 || done == total
}
