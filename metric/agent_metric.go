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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// AgentMetric defines the agent instrumentation
type AgentMetric struct {
	// Specifies the total number of signals processed
	processedCount metric.Int64ObservableCounter
	// Specifies the total number of signals whose processing failed
	failureCount metric.Int64ObservableCounter
	// Specifies the total number of children
	childrenCount metric.Int64ObservableCounter
	// Specifies the number of signals queued at a point in time
	mailboxSize metric.Int64ObservableGauge
	// Specifies the number of seconds since the agent started
	uptime metric.Int64ObservableCounter
}

// NewAgentMetric creates an instance of AgentMetric
func NewAgentMetric(meter metric.Meter) (*AgentMetric, error) {
	agentMetric := new(AgentMetric)
	var err error
	// set the processed count instrument
	if agentMetric.processedCount, err = meter.Int64ObservableCounter(
		"agent_processed_count",
		metric.WithDescription("Total number of signals processed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processedCount instrument, %w", err)
	}
	// set the failure count instrument
	if agentMetric.failureCount, err = meter.Int64ObservableCounter(
		"agent_failure_count",
		metric.WithDescription("Total number of signals whose processing failed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}
	// set the children count instrument
	if agentMetric.childrenCount, err = meter.Int64ObservableCounter(
		"agent_child_count",
		metric.WithDescription("Total number of children"),
	); err != nil {
		return nil, fmt.Errorf("failed to create childrenCount instrument, %w", err)
	}
	// set the mailbox size instrument
	if agentMetric.mailboxSize, err = meter.Int64ObservableGauge(
		"agent_mailbox_size",
		metric.WithDescription("Number of signals queued in the mailbox"),
	); err != nil {
		return nil, fmt.Errorf("failed to create mailboxSize instrument, %w", err)
	}
	// set the uptime instrument
	if agentMetric.uptime, err = meter.Int64ObservableCounter(
		"agent_uptime",
		metric.WithDescription("Number of seconds since the agent started"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create uptime instrument, %w", err)
	}
	return agentMetric, nil
}

// ProcessedCount returns the total number of signals processed
func (x *AgentMetric) ProcessedCount() metric.Int64ObservableCounter {
	return x.processedCount
}

// FailureCount returns the total number of signals whose processing failed
func (x *AgentMetric) FailureCount() metric.Int64ObservableCounter {
	return x.failureCount
}

// ChildrenCount returns the total number of children
func (x *AgentMetric) ChildrenCount() metric.Int64ObservableCounter {
	return x.childrenCount
}

// MailboxSize returns the number of signals queued in the mailbox
func (x *AgentMetric) MailboxSize() metric.Int64ObservableGauge {
	return x.mailboxSize
}

// Uptime returns the number of seconds since the agent started
func (x *AgentMetric) Uptime() metric.Int64ObservableCounter {
	return x.uptime
}
