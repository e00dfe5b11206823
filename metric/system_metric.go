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

// SystemMetric defines the agent system instrumentation
type SystemMetric struct {
	// Specifies the total number of agents in the system
	agentsCount metric.Int64ObservableCounter
	// Specifies the number of seconds since the system started
	uptime metric.Int64ObservableCounter
}

// NewSystemMetric creates an instance of SystemMetric
func NewSystemMetric(meter metric.Meter) (*SystemMetric, error) {
	systemMetric := new(SystemMetric)
	var err error
	// set the agents count instrument
	if systemMetric.agentsCount, err = meter.Int64ObservableCounter(
		"agents_count",
		metric.WithDescription("Total number of agents"),
	); err != nil {
		return nil, fmt.Errorf("failed to create agentsCount instrument, %w", err)
	}
	// set the uptime instrument
	if systemMetric.uptime, err = meter.Int64ObservableCounter(
		"agent_system_uptime",
		metric.WithDescription("Number of seconds since the system started"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create uptime instrument, %w", err)
	}
	return systemMetric, nil
}

// AgentsCount returns the total number of agents
func (x *SystemMetric) AgentsCount() metric.Int64ObservableCounter {
	return x.agentsCount
}

// Uptime returns the number of seconds since the system started
func (x *SystemMetric) Uptime() metric.Int64ObservableCounter {
	return x.uptime
}
