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

// Metric defines the agent system metric
type Metric struct {
	// agentsCount returns the total number of agents in the system
	agentsCount int64
	// uptime returns the number of seconds since the system started
	uptime int64
}

// AgentsCount returns the total number of agents in the system
func (m Metric) AgentsCount() int64 {
	return m.agentsCount
}

// Uptime returns the number of seconds since the system started
func (m Metric) Uptime() int64 {
	return m.uptime
}

// AgentMetric defines agent specific metrics
type AgentMetric struct {
	// processedCount returns the total number of signals processed at a given time
	processedCount int64
	// failureCount returns the total number of signals whose processing failed
	failureCount int64
	// childrenCount returns the total number of children of a given PID
	childrenCount int64
	// mailboxSize returns the mailbox size at a given time
	mailboxSize int64
	// uptime returns the number of seconds since the agent started
	uptime int64
	// latestProcessedDuration returns the duration of the latest signal processed
	latestProcessedDuration time.Duration
	// status returns the lifecycle status at a given time
	status Status
}

// ProcessedCount returns the total number of signals processed at a given time
func (x AgentMetric) ProcessedCount() int64 {
	return x.processedCount
}

// FailureCount returns the total number of signals whose processing failed
func (x AgentMetric) FailureCount() int64 {
	return x.failureCount
}

// ChildrenCount returns the total number of children of a given PID
func (x AgentMetric) ChildrenCount() int64 {
	return x.childrenCount
}

// MailboxSize returns the mailbox size at a given time
func (x AgentMetric) MailboxSize() int64 {
	return x.mailboxSize
}

// Uptime returns the number of seconds since the agent started
func (x AgentMetric) Uptime() int64 {
	return x.uptime
}

// LatestProcessedDuration returns the duration of the latest signal processed
func (x AgentMetric) LatestProcessedDuration() time.Duration {
	return x.latestProcessedDuration
}

// Status returns the lifecycle status at a given time
func (x AgentMetric) Status() Status {
	return x.status
}
