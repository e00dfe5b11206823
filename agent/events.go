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

import "time"

const (
	// agentsTopic carries the runtime lifecycle events.
	agentsTopic = "agentic.agents"
	// signalsTopic carries the signals dispatched by the stream dispatcher.
	signalsTopic = "agentic.signals"
)

// AgentStarted defines the agent started event
type AgentStarted struct {
	name      string
	startedAt time.Time
}

// NewAgentStarted creates a new AgentStarted event stamped with the current UTC time.
func NewAgentStarted(name string) *AgentStarted {
	return &AgentStarted{name: name, startedAt: time.Now().UTC()}
}

// Name returns the agent's name.
func (a *AgentStarted) Name() string { return a.name }

// StartedAt returns the time the agent started.
func (a *AgentStarted) StartedAt() time.Time { return a.startedAt }

// AgentStopped defines the agent stopped event
type AgentStopped struct {
	name      string
	stoppedAt time.Time
}

// NewAgentStopped creates a new AgentStopped event stamped with the current UTC time.
func NewAgentStopped(name string) *AgentStopped {
	return &AgentStopped{name: name, stoppedAt: time.Now().UTC()}
}

// Name returns the agent's name.
func (a *AgentStopped) Name() string { return a.name }

// StoppedAt returns the time the agent stopped.
func (a *AgentStopped) StoppedAt() time.Time { return a.stoppedAt }

// TransitionSucceeded defines the status transition succeeded event
type TransitionSucceeded struct {
	name string
	from Status
	to   Status
	at   time.Time
}

// NewTransitionSucceeded creates a new TransitionSucceeded event stamped with the current UTC time.
func NewTransitionSucceeded(name string, from, to Status) *TransitionSucceeded {
	return &TransitionSucceeded{name: name, from: from, to: to, at: time.Now().UTC()}
}

// Name returns the agent's name.
func (t *TransitionSucceeded) Name() string { return t.name }

// From returns the status the agent left.
func (t *TransitionSucceeded) From() Status { return t.from }

// To returns the status the agent entered.
func (t *TransitionSucceeded) To() Status { return t.to }

// At returns the time the transition happened.
func (t *TransitionSucceeded) At() time.Time { return t.at }

// TransitionFailed defines the status transition failed event
type TransitionFailed struct {
	name   string
	from   Status
	to     Status
	reason error
	at     time.Time
}

// NewTransitionFailed creates a new TransitionFailed event stamped with the current UTC time.
func NewTransitionFailed(name string, from, to Status, reason error) *TransitionFailed {
	return &TransitionFailed{name: name, from: from, to: to, reason: reason, at: time.Now().UTC()}
}

// Name returns the agent's name.
func (t *TransitionFailed) Name() string { return t.name }

// From returns the status the agent was in.
func (t *TransitionFailed) From() Status { return t.from }

// To returns the rejected target status.
func (t *TransitionFailed) To() Status { return t.to }

// Reason returns why the transition was rejected.
func (t *TransitionFailed) Reason() error { return t.reason }

// At returns the time the transition was attempted.
func (t *TransitionFailed) At() time.Time { return t.at }

// QueueOverflow defines the mailbox overflow event
type QueueOverflow struct {
	name       string
	signalID   string
	signalType string
	capacity   int64
	at         time.Time
}

// NewQueueOverflow creates a new QueueOverflow event stamped with the current UTC time.
func NewQueueOverflow(name string, signal *Signal, capacity int64) *QueueOverflow {
	return &QueueOverflow{
		name:       name,
		signalID:   signal.ID(),
		signalType: signal.Type(),
		capacity:   capacity,
		at:         time.Now().UTC(),
	}
}

// Name returns the agent's name.
func (q *QueueOverflow) Name() string { return q.name }

// SignalID returns the id of the rejected signal.
func (q *QueueOverflow) SignalID() string { return q.signalID }

// SignalType returns the type of the rejected signal.
func (q *QueueOverflow) SignalType() string { return q.signalType }

// Capacity returns the mailbox capacity at rejection time.
func (q *QueueOverflow) Capacity() int64 { return q.capacity }

// At returns the time the signal was rejected.
func (q *QueueOverflow) At() time.Time { return q.at }

// QueueCleared defines the mailbox cleared event
type QueueCleared struct {
	name    string
	dropped int
	at      time.Time
}

// NewQueueCleared creates a new QueueCleared event stamped with the current UTC time.
func NewQueueCleared(name string, dropped int) *QueueCleared {
	return &QueueCleared{name: name, dropped: dropped, at: time.Now().UTC()}
}

// Name returns the agent's name.
func (q *QueueCleared) Name() string { return q.name }

// Dropped returns how many pending signals were discarded.
func (q *QueueCleared) Dropped() int { return q.dropped }

// At returns the time the mailbox was cleared.
func (q *QueueCleared) At() time.Time { return q.at }

// ExecutionFailed defines the signal processing failed event
type ExecutionFailed struct {
	name       string
	signalID   string
	signalType string
	reason     error
	at         time.Time
}

// NewExecutionFailed creates a new ExecutionFailed event stamped with the current UTC time.
func NewExecutionFailed(name string, signal *Signal, reason error) *ExecutionFailed {
	return &ExecutionFailed{
		name:       name,
		signalID:   signal.ID(),
		signalType: signal.Type(),
		reason:     reason,
		at:         time.Now().UTC(),
	}
}

// Name returns the agent's name.
func (e *ExecutionFailed) Name() string { return e.name }

// SignalID returns the id of the failed signal.
func (e *ExecutionFailed) SignalID() string { return e.signalID }

// SignalType returns the type of the failed signal.
func (e *ExecutionFailed) SignalType() string { return e.signalType }

// Reason returns the failure.
func (e *ExecutionFailed) Reason() error { return e.reason }

// At returns the time processing failed.
func (e *ExecutionFailed) At() time.Time { return e.at }

// ChildSpawned defines the child spawned event
type ChildSpawned struct {
	parent    string
	handle    string
	childName string
	at        time.Time
}

// NewChildSpawned creates a new ChildSpawned event stamped with the current UTC time.
func NewChildSpawned(parent string, ref ChildRef) *ChildSpawned {
	return &ChildSpawned{parent: parent, handle: ref.Handle, childName: ref.Name, at: time.Now().UTC()}
}

// Parent returns the owning agent's name.
func (c *ChildSpawned) Parent() string { return c.parent }

// Handle returns the child's handle.
func (c *ChildSpawned) Handle() string { return c.handle }

// ChildName returns the child's spec name.
func (c *ChildSpawned) ChildName() string { return c.childName }

// At returns the time the child was spawned.
func (c *ChildSpawned) At() time.Time { return c.at }

// ChildTerminated defines the child terminated event
type ChildTerminated struct {
	parent    string
	handle    string
	childName string
	reason    error
	at        time.Time
}

// NewChildTerminated creates a new ChildTerminated event stamped with the current UTC time.
// A nil reason means the child stopped deliberately.
func NewChildTerminated(parent string, ref ChildRef, reason error) *ChildTerminated {
	return &ChildTerminated{parent: parent, handle: ref.Handle, childName: ref.Name, reason: reason, at: time.Now().UTC()}
}

// Parent returns the owning agent's name.
func (c *ChildTerminated) Parent() string { return c.parent }

// Handle returns the child's handle.
func (c *ChildTerminated) Handle() string { return c.handle }

// ChildName returns the child's spec name.
func (c *ChildTerminated) ChildName() string { return c.childName }

// Reason returns why the child exited, nil for a deliberate stop.
func (c *ChildTerminated) Reason() error { return c.reason }

// At returns the time the child terminated.
func (c *ChildTerminated) At() time.Time { return c.at }
