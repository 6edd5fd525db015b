package runner

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazuruo/aoss-console/internal/errors"
	"github.com/chazuruo/aoss-console/internal/workflows"
)

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu      sync.Mutex
	waiters []chan time.Time
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

// fire waits for the run goroutine to arm a timer and then fires it.
func (c *fakeClock) fire(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return c.pending() > 0 }, time.Second, time.Millisecond)
	c.mu.Lock()
	ch := c.waiters[0]
	c.waiters = c.waiters[1:]
	c.mu.Unlock()
	ch <- time.Now()
}

func next(t *testing.T, o *Orchestrator) Snapshot {
	t.Helper()
	select {
	case s, ok := <-o.Updates():
		require.True(t, ok, "updates closed")
		require.NoError(t, workflows.CheckInvariant(s.Steps))
		return s
	case <-time.After(time.Second):
		t.Fatal("no update")
		return Snapshot{}
	}
}

func statuses(steps []workflows.Step) []workflows.Status {
	out := make([]workflows.Status, len(steps))
	for i, s := range steps {
		out[i] = s.Status
	}
	return out
}

var labels = []string{"Creating collection group", "Creating data access policy", "Creating collection"}

const (
	P  = workflows.Pending
	IP = workflows.InProgress
	S  = workflows.Success
	E  = workflows.Error
)

func TestOrchestrator_CompletesInOrder(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock))
	defer o.Close()

	completed := make(chan string, 1)
	err := o.Start(context.Background(), Request{
		Steps:      labels,
		ResourceID: "new-collection",
		OnComplete: func(id string) { completed <- id },
		OnError:    func(err error) { t.Errorf("unexpected OnError(%v)", err) },
	})
	require.NoError(t, err)

	s := next(t, o)
	assert.Equal(t, workflows.Running, s.State)
	assert.Equal(t, []workflows.Status{IP, P, P}, statuses(s.Steps))
	assert.Equal(t, 1, s.Attempt)
	assert.NotEmpty(t, s.RunID)
	assert.False(t, o.Editable())
	assert.Empty(t, o.Actions())

	want := [][]workflows.Status{{S, IP, P}, {S, S, IP}, {S, S, S}}
	for _, w := range want {
		clock.fire(t)
		s = next(t, o)
		assert.Equal(t, w, statuses(s.Steps))
		assert.Equal(t, workflows.Running, s.State)
	}

	clock.fire(t)
	s = next(t, o)
	assert.Equal(t, workflows.Completed, s.State)

	select {
	case id := <-completed:
		assert.Equal(t, "new-collection", id)
	case <-time.After(time.Second):
		t.Fatal("OnComplete not called")
	}
}

func TestOrchestrator_FailThenRetry(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock), WithFailurePolicy(FailOnce{Step: -1}))
	defer o.Close()

	failed := make(chan error, 1)
	completed := make(chan string, 1)
	require.NoError(t, o.Start(context.Background(), Request{
		Steps:      labels,
		ResourceID: "new-collection",
		OnComplete: func(id string) { completed <- id },
		OnError:    func(err error) { failed <- err },
	}))
	first := next(t, o)

	for range labels {
		clock.fire(t)
		next(t, o)
	}

	s := o.Snapshot()
	assert.Equal(t, workflows.Failed, s.State)
	assert.Equal(t, []workflows.Status{S, S, E}, statuses(s.Steps))
	require.Error(t, s.Err)
	assert.True(t, errors.IsProvisioning(s.Err))
	assert.True(t, o.Editable())
	assert.Equal(t, []Action{ActionCancel, ActionRetry}, o.Actions())

	select {
	case err := <-failed:
		assert.True(t, errors.IsProvisioning(err))
	case <-time.After(time.Second):
		t.Fatal("OnError not called")
	}

	// Start is refused once a run has failed
	err := o.Start(context.Background(), Request{Steps: labels})
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, o.Retry())
	s = next(t, o)
	assert.Equal(t, []workflows.Status{IP, P, P}, statuses(s.Steps), "retry resets every step")
	assert.Equal(t, 2, s.Attempt)
	assert.NotEqual(t, first.RunID, s.RunID)
	assert.NoError(t, s.Err)

	for range labels {
		clock.fire(t)
		next(t, o)
	}
	clock.fire(t)
	assert.Equal(t, workflows.Completed, next(t, o).State)

	select {
	case id := <-completed:
		assert.Equal(t, "new-collection", id)
	case <-time.After(time.Second):
		t.Fatal("OnComplete not called after retry")
	}
}

func TestOrchestrator_RetryWithEditedRequest(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock), WithFailurePolicy(FailOnce{Step: 0}))
	defer o.Close()

	stale := make(chan string, 1)
	require.NoError(t, o.Start(context.Background(), Request{
		Steps:      labels,
		ResourceID: "fresh-one",
		OnComplete: func(id string) { stale <- id },
	}))
	next(t, o)
	clock.fire(t)
	require.Equal(t, workflows.Failed, next(t, o).State)

	err := o.RetryWith(Request{ResourceID: "renamed"})
	assert.True(t, errors.IsInvalid(err), "a retry needs steps")
	assert.Equal(t, workflows.Failed, o.State())

	completed := make(chan string, 1)
	require.NoError(t, o.RetryWith(Request{
		Steps:      []string{"Creating collection"},
		ResourceID: "renamed",
		OnComplete: func(id string) { completed <- id },
	}))
	s := next(t, o)
	require.Len(t, s.Steps, 1)
	assert.Equal(t, "Creating collection", s.Steps[0].Label)
	assert.Equal(t, 2, s.Attempt)

	clock.fire(t)
	next(t, o)
	clock.fire(t)
	assert.Equal(t, workflows.Completed, next(t, o).State)

	select {
	case id := <-completed:
		assert.Equal(t, "renamed", id)
	case <-time.After(time.Second):
		t.Fatal("OnComplete not called after retry")
	}
	assert.Empty(t, stale, "the failed request's callback is replaced")
}

func TestOrchestrator_CloseWaitsForCallback(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock))

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	finished := false
	require.NoError(t, o.Start(context.Background(), Request{
		Steps: labels[:1],
		OnComplete: func(string) {
			close(entered)
			<-release
			mu.Lock()
			finished = true
			mu.Unlock()
		},
	}))
	next(t, o)
	clock.fire(t)
	next(t, o)
	clock.fire(t)

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("OnComplete not called")
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	o.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, finished, "Close returned while OnComplete was running")
}

func TestOrchestrator_StartRejections(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock))
	defer o.Close()

	err := o.Start(context.Background(), Request{})
	assert.True(t, errors.IsInvalid(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = o.Start(ctx, Request{Steps: labels})
	assert.True(t, errors.IsCanceled(err))

	require.NoError(t, o.Start(context.Background(), Request{Steps: labels}))
	err = o.Start(context.Background(), Request{Steps: labels})
	assert.True(t, errors.IsBusy(err))

	we, ok := errors.AsWorkflowError(err)
	require.True(t, ok)
	assert.Equal(t, "start", we.Op)

	err = o.Retry()
	assert.True(t, errors.IsInvalid(err), "retry is only valid after a failure")
}

func TestOrchestrator_IdleActions(t *testing.T) {
	o := New()
	defer o.Close()

	assert.Equal(t, workflows.Idle, o.State())
	assert.True(t, o.Editable())
	assert.Equal(t, []Action{ActionCancel, ActionSubmit}, o.Actions())
	assert.Empty(t, o.Steps())
}

func TestOrchestrator_CloseStopsRun(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock))

	called := make(chan struct{}, 2)
	require.NoError(t, o.Start(context.Background(), Request{
		Steps:      labels,
		OnComplete: func(string) { called <- struct{}{} },
		OnError:    func(error) { called <- struct{}{} },
	}))
	next(t, o)
	clock.fire(t)
	before := next(t, o)

	o.Close()
	o.Close()

	// Nothing changes after Close, even if a timer fires late
	clock.mu.Lock()
	for _, ch := range clock.waiters {
		ch <- time.Now()
	}
	clock.mu.Unlock()

	assert.Equal(t, statuses(before.Steps), statuses(o.Steps()))
	assert.Equal(t, workflows.Running, o.State())
	_, ok := <-o.Updates()
	assert.False(t, ok, "updates closed")
	assert.Empty(t, called)

	err := o.Start(context.Background(), Request{Steps: labels})
	assert.True(t, errors.IsCanceled(err))
}

func TestOrchestrator_ParentContextCancel(t *testing.T) {
	clock := &fakeClock{}
	o := New(WithClock(clock))
	defer o.Close()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, o.Start(ctx, Request{Steps: labels}))
	next(t, o)
	cancel()

	clock.fire(t)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, []workflows.Status{IP, P, P}, statuses(o.Steps()))
}

func TestOrchestrator_RealClock(t *testing.T) {
	o := New(WithStepDelay(time.Millisecond), WithCompletionDelay(time.Millisecond))
	defer o.Close()

	done := make(chan struct{})
	require.NoError(t, o.Start(context.Background(), Request{
		Steps:      labels,
		OnComplete: func(string) { close(done) },
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workflow did not complete")
	}
	assert.Equal(t, workflows.Completed, o.State())
	assert.Equal(t, []workflows.Status{S, S, S}, statuses(o.Steps()))
	assert.Empty(t, o.Actions())
	assert.False(t, o.Editable())
}

func TestFailOnce(t *testing.T) {
	tests := []struct {
		name    string
		policy  FailOnce
		attempt int
		step    int
		want    bool
	}{
		{"last step first attempt", FailOnce{Step: -1}, 1, 2, true},
		{"earlier step first attempt", FailOnce{Step: -1}, 1, 1, false},
		{"last step retry", FailOnce{Step: -1}, 2, 2, false},
		{"explicit step", FailOnce{Step: 0}, 1, 0, true},
		{"out of range clamps to last", FailOnce{Step: 9}, 1, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.ShouldFail(tt.attempt, tt.step, 3); got != tt.want {
				t.Errorf("ShouldFail(%d, %d, 3) = %v, want %v", tt.attempt, tt.step, got, tt.want)
			}
		})
	}

	if (NeverFail{}).ShouldFail(1, 0, 1) {
		t.Error("NeverFail failed a step")
	}
	if _, ok := PolicyFor(false, -1).(NeverFail); !ok {
		t.Error("PolicyFor(false) is not NeverFail")
	}
	if p, ok := PolicyFor(true, 1).(FailOnce); !ok || p.Step != 1 {
		t.Errorf("PolicyFor(true, 1) = %#v", PolicyFor(true, 1))
	}
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	steps := workflows.Initial([]string{"Creating index"})
	require.NoError(t, r.Report(Snapshot{RunID: "a", Attempt: 1, Steps: steps}))
	require.NoError(t, r.Report(Snapshot{RunID: "a", Attempt: 1, Steps: steps}))

	steps[0].Status = workflows.Error
	require.NoError(t, r.Report(Snapshot{RunID: "a", Attempt: 1, Steps: steps}))

	steps = workflows.Initial([]string{"Creating index"})
	require.NoError(t, r.Report(Snapshot{RunID: "b", Attempt: 2, Steps: steps}))

	assert.Equal(t, "▶ Creating index\n✗ Creating index\nRetrying (attempt 2)\n▶ Creating index\n", buf.String())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "Cancel", ActionCancel.String())
	assert.Equal(t, "Submit", ActionSubmit.String())
	assert.Equal(t, "Retry", ActionRetry.String())
	assert.Equal(t, "Action(7)", Action(7).String())
}
