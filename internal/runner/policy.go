package runner

import "time"

// FailurePolicy decides whether a step fails. attempt starts at 1 and step
// is the zero-based index into a workflow of total steps.
type FailurePolicy interface {
	ShouldFail(attempt, step, total int) bool
}

// NeverFail lets every step succeed.
type NeverFail struct{}

func (NeverFail) ShouldFail(int, int, int) bool { return false }

// FailOnce fails the first attempt at Step and lets every retry succeed.
// A negative Step means the last step.
type FailOnce struct {
	Step int
}

func (f FailOnce) ShouldFail(attempt, step, total int) bool {
	if attempt != 1 {
		return false
	}
	target := f.Step
	if target < 0 || target >= total {
		target = total - 1
	}
	return step == target
}

// PolicyFunc adapts a function to FailurePolicy.
type PolicyFunc func(attempt, step, total int) bool

func (f PolicyFunc) ShouldFail(attempt, step, total int) bool { return f(attempt, step, total) }

// PolicyFor returns FailOnce{step} when failFirst is set and NeverFail otherwise.
func PolicyFor(failFirst bool, step int) FailurePolicy {
	if failFirst {
		return FailOnce{Step: step}
	}
	return NeverFail{}
}

// Clock provides timers.
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

// RealClock uses the wall clock.
type RealClock struct{}

func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
