// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/agentic/errors"
)

// planningSkill contributes a route, an action, a mounted state entry and a
// supervised child to its host.
type planningSkill struct {
	BaseSkill
}

func (planningSkill) Name() string { return "planner" }

func (planningSkill) Mount(_ context.Context, state map[string]any, _ map[string]any) (map[string]any, error) {
	if state == nil {
		state = map[string]any{}
	}
	state["mounted"] = "planner"
	return state, nil
}

func (planningSkill) Router(map[string]any) []Route {
	return []Route{
		{Pattern: "plan.*", Instruction: Instruction{Action: "plan.do"}},
	}
}

func (planningSkill) Actions(map[string]any) []Action {
	return []Action{staticAction("plan.do", map[string]any{"planned": true})}
}

func (planningSkill) ChildSpecs(map[string]any) []ChildSpec {
	return []ChildSpec{
		{
			Name:    "sidecar",
			Restart: Temporary,
			Run: func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			},
		},
	}
}

// blockingAction parks in its run until released, so the tests can observe an
// agent mid-processing.
func blockingAction(id string, proceed chan struct{}) Action {
	return NewActionFunc(id, func(ctx context.Context, params map[string]any, _ map[string]any) (map[string]any, []Directive, error) {
		select {
		case <-proceed:
			return params, nil, nil
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	})
}

func TestSend(t *testing.T) {
	t.Run("With automatic processing", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "worker", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}),
			WithActions(echoAction("echo")))
		require.NoError(t, err)
		require.NotNil(t, pid)
		require.True(t, pid.IsStarted())
		assert.Equal(t, Idle, pid.Status())

		id, err := pid.Send(ctx, NewSignal("task.create", WithData(map[string]any{"key": "value"})))
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		require.Eventually(t, func() bool {
			return pid.ProcessedCount() == 1
		}, waitTimeout, tick)
		require.Eventually(t, func() bool {
			return pid.Status() == Idle
		}, waitTimeout, tick)
		assert.Zero(t, pid.MailboxSize())
		assert.Zero(t, pid.FailureCount())
	})
	t.Run("With a stopped agent", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid := spawnManual(t, system, "stopper")
		require.NoError(t, pid.Shutdown(ctx))

		id, err := pid.Send(ctx, NewSignal("task.create"))
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDead)
		assert.Empty(t, id)
	})
	t.Run("With a full mailbox", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)
		subscriber, err := system.Subscribe()
		require.NoError(t, err)

		pid := spawnManual(t, system, "bounded", WithMaxQueueSize(2))
		_, err = pid.Send(ctx, NewSignal("task.one"))
		require.NoError(t, err)
		_, err = pid.Send(ctx, NewSignal("task.two"))
		require.NoError(t, err)

		rejected := NewSignal("task.three")
		_, err = pid.Send(ctx, rejected)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrQueueOverflow)
		assert.EqualValues(t, 2, pid.MailboxSize())

		time.Sleep(500 * time.Millisecond)
		var overflow *QueueOverflow
		for message := range subscriber.Iterator() {
			if event, ok := message.Payload().(*QueueOverflow); ok {
				overflow = event
			}
		}
		require.NotNil(t, overflow)
		assert.Equal(t, "bounded", overflow.Name())
		assert.Equal(t, rejected.ID(), overflow.SignalID())
		assert.Equal(t, "task.three", overflow.SignalType())
		assert.EqualValues(t, 2, overflow.Capacity())
	})
}

func TestCall(t *testing.T) {
	t.Run("With a successful reply", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "responder", &testAgent{},
			WithRoutes(Route{Pattern: "task.run", Instruction: Instruction{Action: "static"}}),
			WithActions(staticAction("static", map[string]any{"ok": true})))
		require.NoError(t, err)

		signal := NewSignal("task.run")
		reply, err := pid.Call(ctx, signal, replyTimeout)
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, signal.ID(), reply.SignalID)
		assert.Equal(t, map[string]any{"ok": true}, reply.Output)
	})
	t.Run("With a reply keyed to the inbound signal after a rewrite", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "rewriter", &retypingAgent{signalType: "task.handled"},
			WithRoutes(Route{Pattern: "task.handled", Instruction: Instruction{Action: "static"}}),
			WithActions(staticAction("static", map[string]any{"ok": true})))
		require.NoError(t, err)

		signal := NewSignal("ingest.raw")
		reply, err := pid.Call(ctx, signal, replyTimeout)
		require.NoError(t, err)
		require.NotNil(t, reply)
		assert.Equal(t, signal.ID(), reply.SignalID)
		assert.Equal(t, map[string]any{"ok": true}, reply.Output)
	})
	t.Run("With a timeout", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		slow := NewActionFunc("slow", func(context.Context, map[string]any, map[string]any) (map[string]any, []Directive, error) {
			time.Sleep(400 * time.Millisecond)
			return map[string]any{"done": true}, nil, nil
		})
		pid, err := system.Spawn(ctx, "sluggish", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "slow"}}),
			WithActions(slow))
		require.NoError(t, err)

		reply, err := pid.Call(ctx, NewSignal("task.run"), 50*time.Millisecond)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrRequestTimeout)
		assert.Nil(t, reply)

		// the run is not canceled by the caller giving up
		require.Eventually(t, func() bool {
			return pid.ProcessedCount() == 1
		}, waitTimeout, tick)
	})
	t.Run("With an invalid timeout", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid := spawnManual(t, system, "impatient")
		reply, err := pid.Call(ctx, NewSignal("task.run"), 0)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTimeout)
		assert.Nil(t, reply)
	})
	t.Run("With no matching route", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)
		subscriber, err := system.Subscribe()
		require.NoError(t, err)

		pid, err := system.Spawn(ctx, "routeless", &testAgent{})
		require.NoError(t, err)

		reply, err := pid.Call(ctx, NewSignal("task.unknown"), replyTimeout)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExecution)
		assert.ErrorIs(t, err, gerrors.ErrNoMatchingRoute)
		assert.Nil(t, reply)
		assert.EqualValues(t, 1, pid.FailureCount())
		assert.Zero(t, pid.ProcessedCount())

		time.Sleep(500 * time.Millisecond)
		var failed *ExecutionFailed
		for message := range subscriber.Iterator() {
			if event, ok := message.Payload().(*ExecutionFailed); ok {
				failed = event
			}
		}
		require.NotNil(t, failed)
		assert.Equal(t, "routeless", failed.Name())
	})
	t.Run("With a failing action", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "failing", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "boom"}}),
			WithActions(failingAction("boom", assert.AnError)))
		require.NoError(t, err)

		reply, err := pid.Call(ctx, NewSignal("task.run"), replyTimeout)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrExecution)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, reply)
	})
}

func TestStep(t *testing.T) {
	t.Run("With manual stepping", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid := spawnManual(t, system, "stepper",
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}),
			WithActions(echoAction("echo")))

		_, err := pid.Send(ctx, NewSignal("task.one"))
		require.NoError(t, err)
		_, err = pid.Send(ctx, NewSignal("task.two"))
		require.NoError(t, err)
		assert.EqualValues(t, 2, pid.MailboxSize())
		assert.Zero(t, pid.ProcessedCount())

		require.NoError(t, pid.Step(ctx))
		assert.EqualValues(t, 1, pid.ProcessedCount())
		assert.EqualValues(t, 1, pid.MailboxSize())
		assert.Equal(t, Running, pid.Status())

		require.NoError(t, pid.Step(ctx))
		assert.EqualValues(t, 2, pid.ProcessedCount())
		assert.Zero(t, pid.MailboxSize())

		// stepping an empty mailbox is a no-op
		require.NoError(t, pid.Step(ctx))
		assert.EqualValues(t, 2, pid.ProcessedCount())
	})
	t.Run("With a stopped agent", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid := spawnManual(t, system, "steppered")
		require.NoError(t, pid.Shutdown(ctx))
		err := pid.Step(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDead)
	})
	t.Run("With a paused agent", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid := spawnManual(t, system, "steppaused",
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}),
			WithActions(echoAction("echo")))

		_, err := pid.Send(ctx, NewSignal("task.one"))
		require.NoError(t, err)
		require.NoError(t, pid.Step(ctx))
		require.Equal(t, Running, pid.Status())
		require.NoError(t, pid.Transition(Paused))

		// accepted while paused, but not processed
		_, err = pid.Send(ctx, NewSignal("task.two"))
		require.NoError(t, err)
		require.NoError(t, pid.Step(ctx))
		assert.EqualValues(t, 1, pid.ProcessedCount())
		assert.EqualValues(t, 1, pid.MailboxSize())

		require.NoError(t, pid.Transition(Running))
		require.NoError(t, pid.Step(ctx))
		assert.EqualValues(t, 2, pid.ProcessedCount())
		assert.Zero(t, pid.MailboxSize())
	})
}

func TestTransition(t *testing.T) {
	t.Run("With a pause and a resume", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		proceed := make(chan struct{})
		pid, err := system.Spawn(ctx, "pausable", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "block"}}),
			WithActions(blockingAction("block", proceed)))
		require.NoError(t, err)

		_, err = pid.Send(ctx, NewSignal("task.one"))
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return pid.Status() == Running
		}, waitTimeout, tick)

		require.NoError(t, pid.Transition(Paused))
		_, err = pid.Send(ctx, NewSignal("task.two"))
		require.NoError(t, err)

		proceed <- struct{}{}
		require.Eventually(t, func() bool {
			return pid.ProcessedCount() == 1
		}, waitTimeout, tick)
		assert.Equal(t, Paused, pid.Status())
		assert.EqualValues(t, 1, pid.MailboxSize())

		// resuming kicks the drain loop back on
		require.NoError(t, pid.Transition(Running))
		proceed <- struct{}{}
		require.Eventually(t, func() bool {
			return pid.ProcessedCount() == 2
		}, waitTimeout, tick)
		require.Eventually(t, func() bool {
			return pid.Status() == Idle
		}, waitTimeout, tick)
	})
	t.Run("With an invalid target", func(t *testing.T) {
		system := newTestSystem(t)
		subscriber, err := system.Subscribe()
		require.NoError(t, err)

		pid := spawnManual(t, system, "stuck")
		require.Equal(t, Idle, pid.Status())

		err = pid.Transition(Paused)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTransition)
		assert.Equal(t, Idle, pid.Status())

		// Stopped is only reachable through Shutdown
		err = pid.Transition(Stopped)
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrInvalidTransition)

		time.Sleep(500 * time.Millisecond)
		var failures []*TransitionFailed
		for message := range subscriber.Iterator() {
			if event, ok := message.Payload().(*TransitionFailed); ok {
				failures = append(failures, event)
			}
		}
		require.Len(t, failures, 2)
		assert.Equal(t, Idle, failures[0].From())
		assert.Equal(t, Paused, failures[0].To())
		require.Error(t, failures[0].Reason())
	})
	t.Run("With the current status as target", func(t *testing.T) {
		system := newTestSystem(t)
		pid := spawnManual(t, system, "settled")
		require.NoError(t, pid.Transition(Idle))
		assert.Equal(t, Idle, pid.Status())
	})
}

func TestClear(t *testing.T) {
	t.Run("With queued signals", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)
		subscriber, err := system.Subscribe()
		require.NoError(t, err)

		pid := spawnManual(t, system, "cleared")
		for i := 0; i < 3; i++ {
			_, err = pid.Send(ctx, NewSignal("task.pending"))
			require.NoError(t, err)
		}
		require.EqualValues(t, 3, pid.MailboxSize())

		assert.Equal(t, 3, pid.Clear())
		assert.Zero(t, pid.MailboxSize())

		time.Sleep(500 * time.Millisecond)
		var cleared *QueueCleared
		for message := range subscriber.Iterator() {
			if event, ok := message.Payload().(*QueueCleared); ok {
				cleared = event
			}
		}
		require.NotNil(t, cleared)
		assert.Equal(t, "cleared", cleared.Name())
		assert.Equal(t, 3, cleared.Dropped())
	})
	t.Run("With an empty mailbox", func(t *testing.T) {
		system := newTestSystem(t)
		pid := spawnManual(t, system, "empty")
		assert.Zero(t, pid.Clear())
	})
}

func TestBoot(t *testing.T) {
	t.Run("With seeded state", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "seeded", &seedAgent{seed: map[string]any{"who": "me"}},
			WithInitialState(map[string]any{"base": 1}))
		require.NoError(t, err)

		state := pid.State()
		assert.Equal(t, 1, state["base"])
		assert.Equal(t, "me", state["who"])

		// the snapshot is a copy
		state["base"] = 99
		assert.Equal(t, 1, pid.State()["base"])
	})
	t.Run("With skills wired in", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "skilled", &testAgent{}, WithSkills(planningSkill{}))
		require.NoError(t, err)
		assert.Equal(t, 1, pid.ChildrenCount())
		assert.Equal(t, "planner", pid.State()["mounted"])
		assert.Contains(t, pid.Capabilities(), "plan.do")

		reply, err := pid.Call(ctx, NewSignal("plan.next"), replyTimeout)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"planned": true}, reply.Output)
	})
	t.Run("With init retries succeeding", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "flaky", &flakyBootAgent{failures: 2}, WithInitMaxRetries(5))
		require.NoError(t, err)
		require.True(t, pid.IsStarted())
	})
	t.Run("With init retries exhausted", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "doomed", &flakyBootAgent{failures: 100})
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrBootFailure)
		assert.Nil(t, pid)
		assert.Zero(t, system.AgentsCount())
	})
}

func TestShutdown(t *testing.T) {
	t.Run("With queued signals and registered callers", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)
		subscriber, err := system.Subscribe()
		require.NoError(t, err)

		pid := spawnManual(t, system, "retiree",
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}),
			WithActions(echoAction("echo")))

		_, err = pid.Send(ctx, NewSignal("task.pending"))
		require.NoError(t, err)

		callErr := make(chan error, 1)
		go func() {
			_, err := pid.Call(ctx, NewSignal("task.waiting"), 2*time.Second)
			callErr <- err
		}()
		require.Eventually(t, func() bool {
			return pid.MailboxSize() == 2
		}, waitTimeout, tick)

		require.NoError(t, pid.Shutdown(ctx))
		assert.False(t, pid.IsStarted())
		assert.Equal(t, Stopped, pid.Status())
		assert.Zero(t, pid.MailboxSize())

		// the sync caller is failed rather than left hanging
		err = <-callErr
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrDead)

		// the agent is gone from the system registry
		_, err = system.Agent("retiree")
		require.Error(t, err)
		assert.ErrorIs(t, err, gerrors.ErrAgentNotFound)

		// shutting down twice is a no-op
		require.NoError(t, pid.Shutdown(ctx))

		time.Sleep(500 * time.Millisecond)
		var stopped *AgentStopped
		var cleared *QueueCleared
		for message := range subscriber.Iterator() {
			switch event := message.Payload().(type) {
			case *AgentStopped:
				stopped = event
			case *QueueCleared:
				cleared = event
			}
		}
		require.NotNil(t, stopped)
		assert.Equal(t, "retiree", stopped.Name())
		require.NotNil(t, cleared)
		assert.Equal(t, 2, cleared.Dropped())
	})
	t.Run("With a failing stop hook", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "grumpy", &postStopAgent{})
		require.NoError(t, err)

		err = pid.Shutdown(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "stop failed")
		assert.Equal(t, Stopped, pid.Status())
	})
}

func TestPIDMetric(t *testing.T) {
	t.Run("With a running agent", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		pid, err := system.Spawn(ctx, "measured", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "echo"}}),
			WithActions(echoAction("echo")))
		require.NoError(t, err)

		_, err = pid.Send(ctx, NewSignal("task.run"))
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			return pid.ProcessedCount() == 1
		}, waitTimeout, tick)

		metric := pid.Metric()
		require.NotNil(t, metric)
		assert.EqualValues(t, 1, metric.ProcessedCount())
		assert.Zero(t, metric.FailureCount())
		assert.Zero(t, metric.MailboxSize())
		assert.Zero(t, metric.ChildrenCount())
		assert.GreaterOrEqual(t, metric.Uptime(), int64(0))

		require.NoError(t, pid.Shutdown(ctx))
		assert.Nil(t, pid.Metric())
	})
}

func TestCurrentSignal(t *testing.T) {
	t.Run("With a signal in flight", func(t *testing.T) {
		ctx := context.TODO()
		system := newTestSystem(t)

		proceed := make(chan struct{})
		pid, err := system.Spawn(ctx, "observed", &testAgent{},
			WithRoutes(Route{Pattern: "task.*", Instruction: Instruction{Action: "block"}}),
			WithActions(blockingAction("block", proceed)))
		require.NoError(t, err)
		assert.Nil(t, pid.CurrentSignal())

		_, err = pid.Send(ctx, NewSignal("task.inflight"))
		require.NoError(t, err)
		require.Eventually(t, func() bool {
			current := pid.CurrentSignal()
			return current != nil && current.Type() == "task.inflight"
		}, waitTimeout, tick)

		proceed <- struct{}{}
		require.Eventually(t, func() bool {
			return pid.CurrentSignal() == nil
		}, waitTimeout, tick)
		assert.Positive(t, pid.LatestProcessedDuration())
		assert.GreaterOrEqual(t, pid.Uptime(), int64(0))
	})
}
