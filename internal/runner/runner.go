// Package runner drives simulated resource-creation workflows.
//
// An Orchestrator walks an ordered list of steps, marking one step in
// progress at a time and advancing on a timer. It owns a single goroutine per
// run, bound to the context passed to Start. Close cancels it and waits for it
// to exit, including an OnComplete or OnError callback already being
// delivered, so no state changes once the owning screen is gone.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

const (
	// DefaultStepDelay is how long each step stays in progress.
	DefaultStepDelay = 2 * time.Second
	// DefaultCompletionDelay separates the last success from OnComplete.
	DefaultCompletionDelay = 500 * time.Millisecond

	updatesBuffer = 8
)

// Request describes one creation workflow.
type Request struct {
	// Steps are the step labels in order. At least one is required.
	Steps []string
	// ResourceID is passed to OnComplete.
	ResourceID string
	// OnComplete runs once the workflow has completed.
	OnComplete func(resourceID string)
	// OnError runs when a step fails.
	OnError func(err error)
}

// Snapshot is the observable state of an orchestrator.
type Snapshot struct {
	RunID   string
	State   workflows.State
	Steps   []workflows.Step
	Attempt int
	Err     error
}

// Action is a form control offered to the user.
type Action int

const (
	ActionCancel Action = iota
	ActionSubmit
	ActionRetry
)

func (a Action) String() string {
	switch a {
	case ActionCancel:
		return "Cancel"
	case ActionSubmit:
		return "Submit"
	case ActionRetry:
		return "Retry"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Orchestrator runs at most one workflow at a time for a single form.
type Orchestrator struct {
	stepDelay       time.Duration
	completionDelay time.Duration
	policy          FailurePolicy
	clock           Clock
	logger          *slog.Logger

	mu      sync.Mutex
	state   workflows.State
	steps   []workflows.Step
	attempt int
	runID   string
	err     error
	req     Request
	parent  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	updates chan Snapshot
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStepDelay sets how long each step stays in progress.
func WithStepDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.stepDelay = d
		}
	}
}

// WithCompletionDelay sets the pause before OnComplete.
func WithCompletionDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.completionDelay = d
		}
	}
}

// WithFailurePolicy sets which steps fail.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithClock sets the timer source.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an idle orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stepDelay:       DefaultStepDelay,
		completionDelay: DefaultCompletionDelay,
		policy:          NeverFail{},
		clock:           RealClock{},
		logger:          slog.Default(),
		updates:         make(chan Snapshot, updatesBuffer),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins a workflow under ctx. The first step is in progress on return.
func (o *Orchestrator) Start(ctx context.Context, req Request) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case o.closed:
		return &errors.WorkflowError{Op: "start", Err: errors.ErrCanceled, Resource: req.ResourceID}
	case o.state == workflows.Running:
		return &errors.WorkflowError{Op: "start", Err: errors.ErrBusy, Resource: req.ResourceID}
	case o.state == workflows.Completed:
		return &errors.WorkflowError{Op: "start", Err: fmt.Errorf("%w: workflow already completed", errors.ErrInvalid), Resource: req.ResourceID}
	case o.state == workflows.Failed:
		return &errors.WorkflowError{Op: "start", Err: fmt.Errorf("%w: workflow failed, use retry", errors.ErrInvalid), Resource: req.ResourceID}
	case len(req.Steps) == 0:
		return &errors.WorkflowError{Op: "start", Err: fmt.Errorf("%w: no steps", errors.ErrInvalid), Resource: req.ResourceID}
	case ctx.Err() != nil:
		return &errors.WorkflowError{Op: "start", Err: errors.ErrCanceled, Resource: req.ResourceID}
	}

	req.Steps = slices.Clone(req.Steps)
	o.req = req
	o.parent = ctx
	o.attempt = 0
	o.launchLocked()
	return nil
}

// Retry restarts a failed workflow from its first step.
func (o *Orchestrator) Retry() error {
	return o.retry(nil)
}

// RetryWith restarts a failed workflow with req in place of the request it
// failed with. Forms are editable while failed, so the steps and resource
// may have changed since the last attempt.
func (o *Orchestrator) RetryWith(req Request) error {
	return o.retry(&req)
}

func (o *Orchestrator) retry(req *Request) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	resource := o.req.ResourceID
	if req != nil {
		resource = req.ResourceID
	}
	switch {
	case o.closed || (o.parent != nil && o.parent.Err() != nil):
		return &errors.WorkflowError{Op: "retry", Err: errors.ErrCanceled, Resource: resource}
	case o.state != workflows.Failed:
		return &errors.WorkflowError{Op: "retry", Err: fmt.Errorf("%w: workflow is %s", errors.ErrInvalid, o.state), Resource: resource}
	case req != nil && len(req.Steps) == 0:
		return &errors.WorkflowError{Op: "retry", Err: fmt.Errorf("%w: no steps", errors.ErrInvalid), Resource: resource}
	}
	if req != nil {
		req.Steps = slices.Clone(req.Steps)
		o.req = *req
	}
	o.launchLocked()
	return nil
}

func (o *Orchestrator) launchLocked() {
	o.attempt++
	o.runID = uuid.NewString()
	o.steps = workflows.Initial(o.req.Steps)
	o.state = workflows.Running
	o.err = nil

	ctx, cancel := context.WithCancel(o.parent)
	done := make(chan struct{})
	o.cancel = cancel
	o.done = done
	o.publishLocked()

	o.logger.Debug("workflow started", "resource", o.req.ResourceID, "run_id", o.runID, "attempt", o.attempt, "steps", len(o.steps))
	go o.run(ctx, cancel, done, o.attempt, o.req)
}

func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, attempt int, req Request) {
	defer cancel()
	var after func()
	defer func() {
		if after != nil && ctx.Err() == nil {
			after()
		}
		close(done)
	}()

	n := len(req.Steps)
	for i := range n {
		if !o.sleep(ctx, o.stepDelay) {
			return
		}

		o.mu.Lock()
		if ctx.Err() != nil {
			o.mu.Unlock()
			return
		}
		if o.policy.ShouldFail(attempt, i, n) {
			o.steps[i].Status = workflows.Error
			o.state = workflows.Failed
			o.err = &errors.WorkflowError{
				Op:       "step",
				Err:      fmt.Errorf("%w: %s", errors.ErrProvisioning, o.steps[i].Label),
				Resource: req.ResourceID,
			}
			o.publishLocked()
			o.logger.Warn("workflow step failed", "resource", req.ResourceID, "step", o.steps[i].Label, "attempt", attempt)
			if onError := req.OnError; onError != nil {
				err := o.err
				after = func() { onError(err) }
			}
			o.mu.Unlock()
			return
		}
		o.steps[i].Status = workflows.Success
		if i+1 < n {
			o.steps[i+1].Status = workflows.InProgress
		}
		o.publishLocked()
		o.mu.Unlock()
	}

	if !o.sleep(ctx, o.completionDelay) {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	o.state = workflows.Completed
	o.publishLocked()
	o.logger.Info("workflow completed", "resource", req.ResourceID, "attempt", attempt)
	if onComplete := req.OnComplete; onComplete != nil {
		id := req.ResourceID
		after = func() { onComplete(id) }
	}
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-o.clock.After(d):
		return true
	}
}

// publishLocked queues the current snapshot, discarding the oldest queued one
// when the buffer is full so the timer loop never blocks.
func (o *Orchestrator) publishLocked() {
	if o.closed {
		return
	}
	s := o.snapshotLocked()
	for {
		select {
		case o.updates <- s:
			return
		default:
		}
		select {
		case <-o.updates:
		default:
		}
	}
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	return Snapshot{
		RunID:   o.runID,
		State:   o.state,
		Steps:   slices.Clone(o.steps),
		Attempt: o.attempt,
		Err:     o.err,
	}
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Steps returns a copy of the current steps.
func (o *Orchestrator) Steps() []workflows.Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.steps)
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() workflows.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Updates delivers a snapshot after every transition. It is closed by Close.
func (o *Orchestrator) Updates() <-chan Snapshot {
	return o.updates
}

// Editable reports whether form fields accept input.
func (o *Orchestrator) Editable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == workflows.Idle || o.state == workflows.Failed
}

// Actions returns the form controls currently enabled.
func (o *Orchestrator) Actions() []Action {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case workflows.Idle:
		return []Action{ActionCancel, ActionSubmit}
	case workflows.Failed:
		return []Action{ActionCancel, ActionRetry}
	default:
		return []Action{}
	}
}

// Close cancels any pending timers and waits for the run goroutine to exit.
// A callback that is already running finishes before Close returns, so
// callbacks must not block on anything that waits for Close.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	if o.cancel != nil {
		o.cancel()
	}
	done := o.done
	o.mu.Unlock()

	if done != nil {
		<-done
	}
	close(o.updates)
}
